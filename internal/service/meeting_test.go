package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/rendezvous/internal/calendar"
	"basegraph.app/rendezvous/internal/model"
	"basegraph.app/rendezvous/internal/realtime"
	"basegraph.app/rendezvous/internal/service"
)

var _ = Describe("MeetingService", func() {
	var (
		ctx     context.Context
		db      *memDB
		tx      *memTxRunner
		cal     *mockCalendar
		emitter *recordingEmitter
		svc     service.MeetingService

		host  *model.User
		alice *model.User
		bob   *model.User
		start time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = newMemDB()
		tx = &memTxRunner{db: db}
		cal = &mockCalendar{
			createEventFn: func(_ context.Context, _ *model.User, _ calendar.EventPayload) (string, error) {
				return "evt-1", nil
			},
		}
		emitter = &recordingEmitter{}
		svc = service.NewMeetingService(db.Users(), db.Meetings(), tx, cal, emitter, "https://app.example.com/")

		host = db.addUser(model.User{ID: 1, Email: "host@x.com", Name: "Hana", ProviderRefreshToken: ptr("refresh")})
		alice = db.addUser(model.User{ID: 2, Email: "a@x.com", Username: ptr("alice")})
		bob = db.addUser(model.User{ID: 3, Email: "b@x.com", Username: ptr("bob")})
		start = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	})

	params := func(invitees ...string) service.CreateMeetingParams {
		return service.CreateMeetingParams{
			Summary:     "Sprint Review",
			Description: "Demo the sprint",
			Start:       start,
			End:         start.Add(time.Hour),
			Invitees:    invitees,
		}
	}

	Describe("CreateMeeting", func() {
		It("creates one pending invitation and one notification per registered invitee", func() {
			result, err := svc.CreateMeeting(ctx, host, params("a@x.com", "bogus@nowhere"))
			Expect(err).NotTo(HaveOccurred())

			Expect(result.UnresolvedInvitees).To(Equal([]string{"bogus@nowhere"}))
			Expect(result.ExternalEventID).To(Equal(ptr("evt-1")))

			invitations := db.invitationsForMeeting(result.MeetingID)
			Expect(invitations).To(HaveLen(1))
			Expect(invitations[0].InviteeID).To(Equal(alice.ID))
			Expect(invitations[0].Status).To(Equal(model.InvitationStatusPending))

			notifications := db.notificationsFor(alice.ID)
			Expect(notifications).To(HaveLen(1))
			Expect(notifications[0].Message).To(Equal("You were invited to Sprint Review"))
			Expect(notifications[0].InvitationID).To(Equal(&invitations[0].ID))
			Expect(notifications[0].IsRead).To(BeFalse())

			meeting, ok := db.meeting(result.MeetingID)
			Expect(ok).To(BeTrue())
			Expect(meeting.HostID).To(Equal(host.ID))
			Expect(meeting.ExternalEventID).To(Equal(ptr("evt-1")))
		})

		It("emits meeting-invited only to invitees", func() {
			result, err := svc.CreateMeeting(ctx, host, params("a@x.com", "bob"))
			Expect(err).NotTo(HaveOccurred())

			Expect(emitter.For(host.ID)).To(BeEmpty())
			for _, u := range []*model.User{alice, bob} {
				events := emitter.For(u.ID)
				Expect(events).To(HaveLen(1))
				Expect(events[0].Event).To(Equal(realtime.EventMeetingInvited))
				payload, ok := events[0].Payload.(service.MeetingInvitedPayload)
				Expect(ok).To(BeTrue())
				Expect(payload.MeetingID).To(Equal(result.MeetingID))
				Expect(payload.HostID).To(Equal(host.ID))
				Expect(payload.Summary).To(Equal("Sprint Review"))
			}
		})

		It("sends every email invitee to the calendar, registered or not, and never the host", func() {
			var got calendar.EventPayload
			cal.createEventFn = func(_ context.Context, _ *model.User, payload calendar.EventPayload) (string, error) {
				got = payload
				return "evt-2", nil
			}

			result, err := svc.CreateMeeting(ctx, host, params("a@x.com", "bogus@nowhere", "bob", "host@x.com"))
			Expect(err).NotTo(HaveOccurred())

			Expect(got.MeetingID).To(Equal(result.MeetingID))
			Expect(got.AttendeeEmails).To(ConsistOf("a@x.com", "bogus@nowhere", "b@x.com"))
			Expect(got.Description).To(HavePrefix("Demo the sprint\n\n"))
			Expect(got.Description).To(HaveSuffix("sign up here: https://app.example.com/signup"))
		})

		It("normalizes, dedupes and resolves by username", func() {
			result, err := svc.CreateMeeting(ctx, host, params(" A@X.com ", "a@x.com", "", "alice", "BOB"))
			Expect(err).NotTo(HaveOccurred())

			invitations := db.invitationsForMeeting(result.MeetingID)
			Expect(invitations).To(HaveLen(2))
			ids := []int64{invitations[0].InviteeID, invitations[1].InviteeID}
			Expect(ids).To(ConsistOf(alice.ID, bob.ID))
			Expect(result.UnresolvedInvitees).To(BeEmpty())
		})

		It("never invites the host", func() {
			result, err := svc.CreateMeeting(ctx, host, params("host@x.com", "a@x.com"))
			Expect(err).NotTo(HaveOccurred())

			invitations := db.invitationsForMeeting(result.MeetingID)
			Expect(invitations).To(HaveLen(1))
			Expect(invitations[0].InviteeID).To(Equal(alice.ID))
			Expect(db.notificationsFor(host.ID)).To(BeEmpty())
		})

		It("creates the meeting without invitations when nobody resolves", func() {
			result, err := svc.CreateMeeting(ctx, host, params("ghost@nowhere"))
			Expect(err).NotTo(HaveOccurred())

			Expect(db.invitationsForMeeting(result.MeetingID)).To(BeEmpty())
			Expect(result.UnresolvedInvitees).To(Equal([]string{"ghost@nowhere"}))
		})

		It("skips the calendar when the host has no authorization", func() {
			db.addUser(model.User{ID: host.ID, Email: host.Email})

			result, err := svc.CreateMeeting(ctx, host, params("a@x.com"))
			Expect(err).NotTo(HaveOccurred())

			Expect(result.ExternalEventID).To(BeNil())
			Expect(cal.createEventCalls).To(BeZero())
			Expect(db.invitationsForMeeting(result.MeetingID)).To(HaveLen(1))
		})

		It("keeps the meeting when the provider fails", func() {
			cal.createEventFn = func(_ context.Context, _ *model.User, _ calendar.EventPayload) (string, error) {
				return "", &calendar.ProviderError{Op: "events.insert", StatusCode: 503, Retryable: true, Err: errors.New("unavailable")}
			}

			result, err := svc.CreateMeeting(ctx, host, params("a@x.com"))
			Expect(err).NotTo(HaveOccurred())

			Expect(result.ExternalEventID).To(BeNil())
			meeting, ok := db.meeting(result.MeetingID)
			Expect(ok).To(BeTrue())
			Expect(meeting.ExternalEventID).To(BeNil())
			Expect(db.invitationsForMeeting(result.MeetingID)).To(HaveLen(1))
		})

		It("works with the calendar disabled", func() {
			svc = service.NewMeetingService(db.Users(), db.Meetings(), tx, nil, emitter, "https://app.example.com")

			result, err := svc.CreateMeeting(ctx, host, params("a@x.com"))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.ExternalEventID).To(BeNil())
		})

		It("rolls back everything when a write fails", func() {
			db.createNotificationErr = errors.New("disk full")

			_, err := svc.CreateMeeting(ctx, host, params("a@x.com", "bob"))
			Expect(err).To(MatchError(ContainSubstring("disk full")))

			Expect(db.meetingCount()).To(BeZero())
			Expect(emitter.All()).To(BeEmpty())
			Expect(cal.createEventCalls).To(BeZero())
		})

		It("returns ErrHostNotFound for an unknown host", func() {
			_, err := svc.CreateMeeting(ctx, &model.User{ID: 99}, params("a@x.com"))
			Expect(err).To(MatchError(service.ErrHostNotFound))
		})

		DescribeTable("rejects invalid input",
			func(mutate func(*service.CreateMeetingParams), field string) {
				p := params("a@x.com")
				mutate(&p)

				_, err := svc.CreateMeeting(ctx, host, p)
				Expect(err).To(MatchError(service.ErrValidation))

				var verr *service.ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Field).To(Equal(field))
				Expect(db.meetingCount()).To(BeZero())
			},
			Entry("blank summary", func(p *service.CreateMeetingParams) { p.Summary = "  " }, "summary"),
			Entry("missing start", func(p *service.CreateMeetingParams) { p.Start = time.Time{} }, "start_ts"),
			Entry("end before start", func(p *service.CreateMeetingParams) { p.End = p.Start.Add(-time.Minute) }, "end_ts"),
			Entry("end equal to start", func(p *service.CreateMeetingParams) { p.End = p.Start }, "end_ts"),
			Entry("no invitees", func(p *service.CreateMeetingParams) { p.Invitees = []string{" ", ""} }, "invitees"),
		)
	})
})
