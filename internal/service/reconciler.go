package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"basegraph.app/rendezvous/common/id"
	"basegraph.app/rendezvous/common/logger"
	"basegraph.app/rendezvous/internal/calendar"
	"basegraph.app/rendezvous/internal/domain"
	"basegraph.app/rendezvous/internal/model"
	"basegraph.app/rendezvous/internal/queue"
	"basegraph.app/rendezvous/internal/realtime"
	"basegraph.app/rendezvous/internal/store"
)

var eventIDPattern = regexp.MustCompile(`events/([^/?]+)`)

// ParseEventID extracts the event id from a provider resource URI, or "".
func ParseEventID(resourceURI string) string {
	m := eventIDPattern.FindStringSubmatch(resourceURI)
	if len(m) < 2 || m[1] == "watch" {
		return ""
	}
	return m[1]
}

type AppliedTransition struct {
	InvitationID int64
	Status       model.InvitationStatus
}

type ReconcileResult struct {
	MeetingID int64
	EventID   string
	Applied   []AppliedTransition
	Skipped   int
	Failed    int
}

// Reconciler folds remote attendee responses into local invitation state.
// Running it twice for the same notification is a no-op the second time.
type Reconciler interface {
	Reconcile(ctx context.Context, n queue.CalendarNotification) (*ReconcileResult, error)
}

type reconciler struct {
	users    store.UserStore
	meetings store.MeetingStore
	channels store.WatchChannelStore
	txRunner TxRunner
	calendar calendar.Adapter
	emitter  realtime.Emitter
}

func NewReconciler(users store.UserStore, meetings store.MeetingStore, channels store.WatchChannelStore, txRunner TxRunner, cal calendar.Adapter, emitter realtime.Emitter) Reconciler {
	return &reconciler{
		users:    users,
		meetings: meetings,
		channels: channels,
		txRunner: txRunner,
		calendar: cal,
		emitter:  emitter,
	}
}

func (r *reconciler) Reconcile(ctx context.Context, n queue.CalendarNotification) (*ReconcileResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ChannelID: &n.ChannelID,
		Component: "rendezvous.service.reconciler",
	})

	if n.ResourceState == queue.ResourceStateSync {
		return nil, nil
	}

	eventID := ParseEventID(n.ResourceURI)
	if eventID == "" {
		slog.DebugContext(ctx, "notification carries no event id, ignoring", "resource_uri", n.ResourceURI)
		return nil, nil
	}
	if r.calendar == nil {
		return nil, nil
	}

	meeting, event, err := r.resolveMeeting(ctx, n.ChannelID, eventID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		slog.DebugContext(ctx, "event does not belong to a known meeting, ignoring", "event_id", eventID)
		return nil, nil
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{MeetingID: &meeting.ID})

	if event == nil {
		host, err := r.users.GetByID(ctx, meeting.HostID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("loading host: %w", err)
		}
		if !host.HasProviderAuthorization() {
			slog.InfoContext(ctx, "host has no calendar authorization, skipping reconciliation")
			return nil, nil
		}

		event, err = r.calendar.FetchEvent(ctx, host, eventID)
		if err != nil {
			return nil, fmt.Errorf("fetching event %s: %w", eventID, err)
		}
	}

	result := &ReconcileResult{MeetingID: meeting.ID, EventID: eventID}
	for _, att := range event.Attendees {
		inv, err := r.applyAttendee(ctx, meeting, att)
		switch {
		case err != nil:
			result.Failed++
			slog.ErrorContext(ctx, "reconciling attendee failed", "attendee", att.Email, "error", err)
		case inv == nil:
			result.Skipped++
		default:
			result.Applied = append(result.Applied, AppliedTransition{InvitationID: inv.ID, Status: inv.Status})
			emitStatusChanged(ctx, r.emitter, inv, meeting.HostID, domain.OriginRemoteReconciliation)
		}
	}

	slog.InfoContext(ctx, "event reconciled",
		"event_id", eventID,
		"applied", len(result.Applied),
		"skipped", result.Skipped,
		"failed", result.Failed)

	return result, nil
}

// resolveMeeting finds the meeting for eventID. When no meeting carries the id
// yet, an event created by this service on a watched calendar is attached to
// its meeting; the fetched event is returned so it is not fetched twice.
func (r *reconciler) resolveMeeting(ctx context.Context, channelID, eventID string) (*model.Meeting, *calendar.RemoteEvent, error) {
	meeting, err := r.meetings.GetByExternalEventID(ctx, eventID)
	if err == nil {
		return meeting, nil, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, nil, fmt.Errorf("looking up meeting by event: %w", err)
	}

	if channelID == "" {
		return nil, nil, nil
	}
	ch, err := r.channels.GetByChannelID(ctx, channelID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("looking up watch channel: %w", err)
	}

	owner, err := r.users.GetByID(ctx, ch.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("loading channel owner: %w", err)
	}
	if !owner.HasProviderAuthorization() {
		return nil, nil, nil
	}

	event, err := r.calendar.FetchEvent(ctx, owner, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching event %s: %w", eventID, err)
	}
	if event.MeetingID == nil {
		return nil, nil, nil
	}

	meeting, err = r.meetings.GetByID(ctx, *event.MeetingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("loading marked meeting: %w", err)
	}
	if meeting.HostID != owner.ID {
		return nil, nil, nil
	}
	if meeting.ExternalEventID != nil {
		if *meeting.ExternalEventID != eventID {
			return nil, nil, nil
		}
		return meeting, event, nil
	}

	attached, err := r.meetings.SetExternalEventID(ctx, meeting.ID, eventID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("attaching event to meeting: %w", err)
		}
		// attached concurrently; only continue if it was this event
		attached, err = r.meetings.GetByExternalEventID(ctx, eventID)
		if err != nil {
			return nil, nil, nil
		}
	}

	slog.InfoContext(ctx, "external event attached to meeting",
		"meeting_id", attached.ID,
		"event_id", eventID)
	return attached, event, nil
}

// applyAttendee returns the updated invitation, or nil when nothing changed.
func (r *reconciler) applyAttendee(ctx context.Context, meeting *model.Meeting, att calendar.Attendee) (*model.Invitation, error) {
	requested, ok := domain.MapRemoteResponse(string(att.ResponseStatus))
	if !ok {
		return nil, nil
	}

	var updated *model.Invitation
	err := r.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		inv, err := sp.Invitations().GetByMeetingAndEmail(ctx, meeting.ID, att.Email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("resolving invitation: %w", err)
		}

		locked, err := sp.Invitations().GetForUpdate(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("locking invitation: %w", err)
		}

		next, err := domain.Transition(locked.Status, requested, domain.OriginRemoteReconciliation)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidTransition) {
				return nil
			}
			return err
		}

		inv, err = sp.Invitations().UpdateStatus(ctx, locked.ID, locked.Status, next)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("updating invitation status: %w", err)
		}

		invitationID := inv.ID
		invitee := model.Notification{
			ID:           id.New(),
			InvitationID: &invitationID,
			RecipientID:  inv.InviteeID,
			Message:      fmt.Sprintf("Your invitation to %s is now %s", meeting.Summary, next),
		}
		if err := sp.Notifications().Create(ctx, &invitee); err != nil {
			return fmt.Errorf("creating invitee notification: %w", err)
		}

		host := model.Notification{
			ID:           id.New(),
			InvitationID: &invitationID,
			RecipientID:  meeting.HostID,
			Message:      fmt.Sprintf("%s %s your invitation to %s", att.Email, next, meeting.Summary),
		}
		if err := sp.Notifications().Create(ctx, &host); err != nil {
			return fmt.Errorf("creating host notification: %w", err)
		}

		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
