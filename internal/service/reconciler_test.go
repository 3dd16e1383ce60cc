package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/rendezvous/internal/calendar"
	"basegraph.app/rendezvous/internal/domain"
	"basegraph.app/rendezvous/internal/model"
	"basegraph.app/rendezvous/internal/queue"
	"basegraph.app/rendezvous/internal/realtime"
	"basegraph.app/rendezvous/internal/service"
)

var _ = Describe("ParseEventID", func() {
	DescribeTable("extracts the event id from a resource uri",
		func(uri, want string) {
			Expect(service.ParseEventID(uri)).To(Equal(want))
		},
		Entry("event resource", "https://www.googleapis.com/calendar/v3/calendars/primary/events/abc123?alt=json", "abc123"),
		Entry("no query", "https://www.googleapis.com/calendar/v3/calendars/primary/events/evt_9", "evt_9"),
		Entry("collection", "https://www.googleapis.com/calendar/v3/calendars/primary/events?alt=json", ""),
		Entry("watch endpoint", "https://www.googleapis.com/calendar/v3/calendars/primary/events/watch", ""),
		Entry("empty", "", ""),
	)
})

var _ = Describe("Reconciler", func() {
	var (
		ctx     context.Context
		db      *memDB
		tx      *memTxRunner
		cal     *mockCalendar
		emitter *recordingEmitter
		rec     service.Reconciler

		host    *model.User
		alice   *model.User
		meeting model.Meeting
		inv     model.Invitation

		remoteStatus calendar.ResponseStatus
	)

	const eventID = "evt-1"
	uri := "https://www.googleapis.com/calendar/v3/calendars/primary/events/" + eventID + "?alt=json"
	notification := queue.CalendarNotification{
		ChannelID:     "chan-1",
		ResourceState: queue.ResourceStateExists,
		ResourceID:    "res-1",
		ResourceURI:   uri,
	}

	BeforeEach(func() {
		ctx = context.Background()
		db = newMemDB()
		tx = &memTxRunner{db: db}
		emitter = &recordingEmitter{}
		remoteStatus = calendar.ResponseAccepted

		host = db.addUser(model.User{ID: 1, Email: "host@x.com", ProviderRefreshToken: ptr("refresh")})
		alice = db.addUser(model.User{ID: 2, Email: "a@x.com", Name: "Alice"})

		start := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
		meeting = model.Meeting{ID: 10, HostID: host.ID, Summary: "Sprint Review", Start: start, End: start.Add(time.Hour), ExternalEventID: ptr(eventID)}
		Expect(db.Meetings().Create(ctx, &meeting)).To(Succeed())
		inv = model.Invitation{ID: 20, MeetingID: meeting.ID, InviteeID: alice.ID, Status: model.InvitationStatusPending}
		Expect(db.Invitations().Create(ctx, &inv)).To(Succeed())

		cal = &mockCalendar{
			fetchEventFn: func(_ context.Context, user *model.User, id string) (*calendar.RemoteEvent, error) {
				Expect(user.ID).To(Equal(host.ID))
				return &calendar.RemoteEvent{
					ID: id,
					Attendees: []calendar.Attendee{
						{Email: "host@x.com", ResponseStatus: calendar.ResponseAccepted},
						{Email: "a@x.com", ResponseStatus: remoteStatus},
						{Email: "stranger@nowhere", ResponseStatus: calendar.ResponseAccepted},
					},
				}, nil
			},
		}
		rec = service.NewReconciler(db.Users(), db.Meetings(), db.WatchChannels(), tx, cal, emitter)
	})

	It("moves a pending invitation to accepted and notifies the invitee and the host", func() {
		result, err := rec.Reconcile(ctx, notification)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.MeetingID).To(Equal(meeting.ID))
		Expect(result.Applied).To(Equal([]service.AppliedTransition{{InvitationID: inv.ID, Status: model.InvitationStatusAccepted}}))
		Expect(db.invitation(inv.ID).Status).To(Equal(model.InvitationStatusAccepted))

		inviteeNotes := db.notificationsFor(alice.ID)
		Expect(inviteeNotes).To(HaveLen(1))
		Expect(inviteeNotes[0].Message).To(Equal("Your invitation to Sprint Review is now accepted"))
		Expect(inviteeNotes[0].InvitationID).To(Equal(ptr(inv.ID)))
		Expect(inviteeNotes[0].IsRead).To(BeFalse())

		hostNotes := db.notificationsFor(host.ID)
		Expect(hostNotes).To(HaveLen(1))
		Expect(hostNotes[0].Message).To(Equal("a@x.com accepted your invitation to Sprint Review"))

		for _, recipient := range []int64{alice.ID, host.ID} {
			events := emitter.For(recipient)
			Expect(events).To(HaveLen(1))
			Expect(events[0].Event).To(Equal(realtime.EventInviteStatusChanged))
			payload := events[0].Payload.(service.InviteStatusChangedPayload)
			Expect(payload.Status).To(Equal(model.InvitationStatusAccepted))
			Expect(payload.Origin).To(Equal(domain.OriginRemoteReconciliation))
		}
	})

	It("is idempotent for the same notification delivered twice", func() {
		_, err := rec.Reconcile(ctx, notification)
		Expect(err).NotTo(HaveOccurred())

		result, err := rec.Reconcile(ctx, notification)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Applied).To(BeEmpty())

		Expect(db.invitation(inv.ID).Status).To(Equal(model.InvitationStatusAccepted))
		Expect(db.notificationsFor(alice.ID)).To(HaveLen(1))
		Expect(db.notificationsFor(host.ID)).To(HaveLen(1))
		Expect(emitter.For(alice.ID)).To(HaveLen(1))
	})

	It("keeps a direct accept when a stale needsAction arrives", func() {
		responder := service.NewInvitationService(db.Users(), tx, nil, emitter)
		_, err := responder.Respond(ctx, alice, inv.ID, model.InvitationStatusAccepted)
		Expect(err).NotTo(HaveOccurred())

		remoteStatus = calendar.ResponseNeedsAction
		result, err := rec.Reconcile(ctx, notification)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Applied).To(BeEmpty())
		Expect(db.invitation(inv.ID).Status).To(Equal(model.InvitationStatusAccepted))
	})

	It("never downgrades a declined invitation", func() {
		responder := service.NewInvitationService(db.Users(), tx, nil, emitter)
		_, err := responder.Respond(ctx, alice, inv.ID, model.InvitationStatusDeclined)
		Expect(err).NotTo(HaveOccurred())

		_, err = rec.Reconcile(ctx, notification)
		Expect(err).NotTo(HaveOccurred())
		Expect(db.invitation(inv.ID).Status).To(Equal(model.InvitationStatusDeclined))
	})

	DescribeTable("leaves pending invitations alone for non-accepting responses",
		func(status calendar.ResponseStatus) {
			remoteStatus = status

			result, err := rec.Reconcile(ctx, notification)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Applied).To(BeEmpty())
			Expect(db.invitation(inv.ID).Status).To(Equal(model.InvitationStatusPending))
			Expect(db.notificationsFor(alice.ID)).To(BeEmpty())
			Expect(db.notificationsFor(host.ID)).To(BeEmpty())
		},
		Entry("declined", calendar.ResponseDeclined),
		Entry("tentative", calendar.ResponseTentative),
		Entry("needsAction", calendar.ResponseNeedsAction),
	)

	It("ends with exactly one accepted transition when a direct accept races the webhook", func() {
		responder := service.NewInvitationService(db.Users(), tx, nil, emitter)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			_, err := responder.Respond(ctx, alice, inv.ID, model.InvitationStatusAccepted)
			Expect(err).To(Or(Not(HaveOccurred()), MatchError(domain.ErrInvalidTransition)))
		}()
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			_, err := rec.Reconcile(ctx, notification)
			Expect(err).NotTo(HaveOccurred())
		}()
		wg.Wait()

		Expect(db.invitation(inv.ID).Status).To(Equal(model.InvitationStatusAccepted))
		Expect(db.notificationsFor(host.ID)).To(HaveLen(1))
		Expect(len(db.notificationsFor(alice.ID))).To(BeNumerically("<=", 1))
	})

	It("ignores sync notifications", func() {
		n := notification
		n.ResourceState = queue.ResourceStateSync

		result, err := rec.Reconcile(ctx, n)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(BeNil())
		Expect(cal.fetchCalls).To(BeZero())
	})

	It("ignores notifications without an event id", func() {
		n := notification
		n.ResourceURI = "https://www.googleapis.com/calendar/v3/calendars/primary/events?alt=json"

		result, err := rec.Reconcile(ctx, n)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(BeNil())
	})

	It("ignores events that belong to no meeting", func() {
		n := notification
		n.ChannelID = ""
		n.ResourceURI = "https://www.googleapis.com/calendar/v3/calendars/primary/events/unknown"

		result, err := rec.Reconcile(ctx, n)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(BeNil())
		Expect(cal.fetchCalls).To(BeZero())
	})

	It("does nothing when the host has revoked calendar access", func() {
		db.addUser(model.User{ID: host.ID, Email: host.Email})

		result, err := rec.Reconcile(ctx, notification)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(BeNil())
		Expect(cal.fetchCalls).To(BeZero())
		Expect(db.invitation(inv.ID).Status).To(Equal(model.InvitationStatusPending))
	})

	It("returns provider errors so the delivery can be retried", func() {
		providerErr := &calendar.ProviderError{Op: "events.get", StatusCode: 503, Retryable: true, Err: errors.New("backend error")}
		cal.fetchEventFn = func(_ context.Context, _ *model.User, _ string) (*calendar.RemoteEvent, error) {
			return nil, providerErr
		}

		_, err := rec.Reconcile(ctx, notification)
		Expect(err).To(MatchError(providerErr))
		Expect(calendar.IsRetryable(err)).To(BeTrue())
		Expect(db.invitation(inv.ID).Status).To(Equal(model.InvitationStatusPending))
	})

	It("counts attendees whose update failed", func() {
		db.createNotificationErr = errors.New("disk full")

		result, err := rec.Reconcile(ctx, notification)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Failed).To(Equal(1))
		Expect(result.Applied).To(BeEmpty())
		Expect(db.invitation(inv.ID).Status).To(Equal(model.InvitationStatusPending))
		Expect(db.notificationsFor(alice.ID)).To(BeEmpty())
		Expect(emitter.All()).To(BeEmpty())
	})

	It("is a no-op with the calendar disabled", func() {
		rec = service.NewReconciler(db.Users(), db.Meetings(), db.WatchChannels(), tx, nil, emitter)

		result, err := rec.Reconcile(ctx, notification)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(BeNil())
	})

	Describe("events not yet attached to a meeting", func() {
		var pending model.Meeting

		BeforeEach(func() {
			pending = model.Meeting{ID: 11, HostID: host.ID, Summary: "Retro", Start: meeting.Start, End: meeting.End}
			Expect(db.Meetings().Create(ctx, &pending)).To(Succeed())
			pinv := model.Invitation{ID: 21, MeetingID: pending.ID, InviteeID: alice.ID, Status: model.InvitationStatusPending}
			Expect(db.Invitations().Create(ctx, &pinv)).To(Succeed())
			Expect(db.WatchChannels().Create(ctx, &model.WatchChannel{ID: 30, ChannelID: "chan-1", UserID: host.ID})).To(Succeed())
		})

		fetchMarked := func(meetingID *int64) {
			cal.fetchEventFn = func(_ context.Context, _ *model.User, id string) (*calendar.RemoteEvent, error) {
				return &calendar.RemoteEvent{
					ID:        id,
					MeetingID: meetingID,
					Attendees: []calendar.Attendee{{Email: "a@x.com", ResponseStatus: calendar.ResponseAccepted}},
				}, nil
			}
		}
		freshURI := "https://www.googleapis.com/calendar/v3/calendars/primary/events/evt-new"

		It("attaches the event through the watch channel marker and reconciles it", func() {
			fetchMarked(ptr(pending.ID))
			n := notification
			n.ResourceURI = freshURI

			result, err := rec.Reconcile(ctx, n)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.MeetingID).To(Equal(pending.ID))
			Expect(result.Applied).To(HaveLen(1))
			Expect(cal.fetchCalls).To(Equal(1))

			attached, _ := db.meeting(pending.ID)
			Expect(attached.ExternalEventID).To(Equal(ptr("evt-new")))
			Expect(db.invitation(21).Status).To(Equal(model.InvitationStatusAccepted))
		})

		It("discards events without the marker", func() {
			fetchMarked(nil)
			n := notification
			n.ResourceURI = freshURI

			result, err := rec.Reconcile(ctx, n)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeNil())
			Expect(db.invitation(21).Status).To(Equal(model.InvitationStatusPending))
		})

		It("discards events marked for another host's meeting", func() {
			other := db.addUser(model.User{ID: 5, Email: "other@x.com"})
			foreign := model.Meeting{ID: 12, HostID: other.ID, Summary: "Foreign", Start: meeting.Start, End: meeting.End}
			Expect(db.Meetings().Create(ctx, &foreign)).To(Succeed())
			fetchMarked(ptr(foreign.ID))
			n := notification
			n.ResourceURI = freshURI

			result, err := rec.Reconcile(ctx, n)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeNil())
			stored, _ := db.meeting(foreign.ID)
			Expect(stored.ExternalEventID).To(BeNil())
		})

		It("ignores unknown channels", func() {
			fetchMarked(ptr(pending.ID))
			n := notification
			n.ChannelID = "chan-unknown"
			n.ResourceURI = freshURI

			result, err := rec.Reconcile(ctx, n)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeNil())
			Expect(cal.fetchCalls).To(BeZero())
		})
	})
})
