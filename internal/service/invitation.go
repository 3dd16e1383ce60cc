package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"basegraph.app/rendezvous/common/id"
	"basegraph.app/rendezvous/common/logger"
	"basegraph.app/rendezvous/internal/calendar"
	"basegraph.app/rendezvous/internal/domain"
	"basegraph.app/rendezvous/internal/model"
	"basegraph.app/rendezvous/internal/realtime"
	"basegraph.app/rendezvous/internal/store"
)

// InvitationService applies an invitee's own response to an invitation.
type InvitationService interface {
	Respond(ctx context.Context, user *model.User, invitationID int64, status model.InvitationStatus) (*model.Invitation, error)
}

type invitationService struct {
	users    store.UserStore
	txRunner TxRunner
	calendar calendar.Adapter
	emitter  realtime.Emitter
}

func NewInvitationService(users store.UserStore, txRunner TxRunner, cal calendar.Adapter, emitter realtime.Emitter) InvitationService {
	return &invitationService{
		users:    users,
		txRunner: txRunner,
		calendar: cal,
		emitter:  emitter,
	}
}

func (s *invitationService) Respond(ctx context.Context, user *model.User, invitationID int64, status model.InvitationStatus) (*model.Invitation, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	if status != model.InvitationStatusAccepted && status != model.InvitationStatusDeclined {
		return nil, invalid("status", "must be accepted or declined")
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:       &user.ID,
		InvitationID: &invitationID,
		Component:    "rendezvous.service.invitation",
	})

	var (
		updated *model.Invitation
		meeting *model.Meeting
	)
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		inv, err := sp.Invitations().GetForUpdate(ctx, invitationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvitationNotFound
			}
			return fmt.Errorf("locking invitation: %w", err)
		}
		if inv.InviteeID != user.ID {
			return ErrNotInvitee
		}

		next, err := domain.Transition(inv.Status, status, domain.OriginUserAction)
		if err != nil {
			return err
		}

		updated, err = sp.Invitations().UpdateStatus(ctx, inv.ID, inv.Status, next)
		if err != nil {
			return fmt.Errorf("updating invitation status: %w", err)
		}

		meeting, err = sp.Meetings().GetByID(ctx, inv.MeetingID)
		if err != nil {
			return fmt.Errorf("loading meeting: %w", err)
		}

		n := model.Notification{
			ID:           id.New(),
			InvitationID: &updated.ID,
			RecipientID:  meeting.HostID,
			Message:      fmt.Sprintf("%s %s your invitation to %s", displayName(user), next, meeting.Summary),
		}
		if err := sp.Notifications().Create(ctx, &n); err != nil {
			return fmt.Errorf("creating host notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "invitation response recorded", "status", updated.Status)

	emitStatusChanged(ctx, s.emitter, updated, meeting.HostID, domain.OriginUserAction)
	s.mirrorResponse(ctx, user, meeting, updated.Status)

	return updated, nil
}

// mirrorResponse pushes the response to the provider event using the host's
// authorization. Best effort.
func (s *invitationService) mirrorResponse(ctx context.Context, invitee *model.User, meeting *model.Meeting, status model.InvitationStatus) {
	if s.calendar == nil || meeting.ExternalEventID == nil {
		return
	}

	host, err := s.users.GetByID(ctx, meeting.HostID)
	if err != nil {
		slog.WarnContext(ctx, "loading host for response mirroring failed", "error", err)
		return
	}
	if !host.HasProviderAuthorization() {
		return
	}

	err = s.calendar.UpdateAttendeeResponse(ctx, host, *meeting.ExternalEventID, invitee.Email, calendar.ResponseFromStatus(status))
	if err != nil {
		slog.WarnContext(ctx, "mirroring response to calendar failed",
			"event_id", *meeting.ExternalEventID,
			"error", err,
			"retryable", calendar.IsRetryable(err))
	}
}

func emitStatusChanged(ctx context.Context, emitter realtime.Emitter, inv *model.Invitation, hostID int64, origin domain.Origin) {
	payload := InviteStatusChangedPayload{
		InvitationID: inv.ID,
		MeetingID:    inv.MeetingID,
		InviteeID:    inv.InviteeID,
		Status:       inv.Status,
		Origin:       origin,
	}
	for _, recipient := range []int64{inv.InviteeID, hostID} {
		if err := emitter.Emit(ctx, recipient, realtime.EventInviteStatusChanged, payload); err != nil {
			slog.WarnContext(ctx, "emitting invite-status-changed failed", "recipient_id", recipient, "error", err)
		}
	}
}

func displayName(u *model.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
