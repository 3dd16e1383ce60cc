package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/rendezvous/common/id"
	"basegraph.app/rendezvous/common/logger"
	"basegraph.app/rendezvous/internal/calendar"
	"basegraph.app/rendezvous/internal/model"
	"basegraph.app/rendezvous/internal/realtime"
	"basegraph.app/rendezvous/internal/store"
)

const maxInvitees = 100

type CreateMeetingParams struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	// Invitees are emails or usernames.
	Invitees []string
}

type CreateMeetingResult struct {
	MeetingID          int64    `json:"meeting_id"`
	ExternalEventID    *string  `json:"external_event_id"`
	UnresolvedInvitees []string `json:"unresolved_invitees"`
}

type MeetingService interface {
	CreateMeeting(ctx context.Context, host *model.User, params CreateMeetingParams) (*CreateMeetingResult, error)
}

type meetingService struct {
	users       store.UserStore
	meetings    store.MeetingStore
	txRunner    TxRunner
	calendar    calendar.Adapter
	emitter     realtime.Emitter
	frontendURL string
}

func NewMeetingService(users store.UserStore, meetings store.MeetingStore, txRunner TxRunner, cal calendar.Adapter, emitter realtime.Emitter, frontendURL string) MeetingService {
	return &meetingService{
		users:       users,
		meetings:    meetings,
		txRunner:    txRunner,
		calendar:    cal,
		emitter:     emitter,
		frontendURL: frontendURL,
	}
}

type invitedUser struct {
	user         model.User
	invitation   model.Invitation
	notification model.Notification
}

func (s *meetingService) CreateMeeting(ctx context.Context, host *model.User, params CreateMeetingParams) (*CreateMeetingResult, error) {
	if host == nil {
		return nil, ErrHostNotFound
	}
	params, err := normalizeMeetingParams(params)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    &host.ID,
		Component: "rendezvous.service.meeting",
	})

	// reload for a fresh provider token
	host, err = s.users.GetByID(ctx, host.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrHostNotFound
		}
		return nil, fmt.Errorf("loading host: %w", err)
	}

	resolved, unresolved, err := s.resolveInvitees(ctx, host, params.Invitees)
	if err != nil {
		return nil, err
	}

	meeting := model.Meeting{
		ID:          id.New(),
		HostID:      host.ID,
		Summary:     params.Summary,
		Description: params.Description,
		Start:       params.Start,
		End:         params.End,
	}
	message := "You were invited to " + params.Summary
	var invited []invitedUser

	err = s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		if err := sp.Meetings().Create(ctx, &meeting); err != nil {
			return fmt.Errorf("creating meeting: %w", err)
		}

		invited = invited[:0]
		for _, u := range resolved {
			inv := model.Invitation{
				ID:        id.New(),
				MeetingID: meeting.ID,
				InviteeID: u.ID,
				Status:    model.InvitationStatusPending,
			}
			if err := sp.Invitations().Create(ctx, &inv); err != nil {
				return fmt.Errorf("creating invitation for user %d: %w", u.ID, err)
			}

			invitationID := inv.ID
			n := model.Notification{
				ID:           id.New(),
				InvitationID: &invitationID,
				RecipientID:  u.ID,
				Message:      message,
			}
			if err := sp.Notifications().Create(ctx, &n); err != nil {
				return fmt.Errorf("creating notification for user %d: %w", u.ID, err)
			}

			invited = append(invited, invitedUser{user: u, invitation: inv, notification: n})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{MeetingID: &meeting.ID})
	slog.InfoContext(ctx, "meeting created",
		"invited", len(invited),
		"unresolved", len(unresolved))

	for _, iu := range invited {
		payload := MeetingInvitedPayload{
			MeetingID:      meeting.ID,
			InvitationID:   iu.invitation.ID,
			NotificationID: iu.notification.ID,
			HostID:         host.ID,
			Summary:        meeting.Summary,
			Start:          meeting.Start,
			End:            meeting.End,
			Message:        message,
		}
		if err := s.emitter.Emit(ctx, iu.user.ID, realtime.EventMeetingInvited, payload); err != nil {
			slog.WarnContext(ctx, "emitting meeting-invited failed", "invitee_id", iu.user.ID, "error", err)
		}
	}

	result := &CreateMeetingResult{
		MeetingID:          meeting.ID,
		UnresolvedInvitees: unresolved,
	}

	if eventID, ok := s.createExternalEvent(ctx, host, &meeting, params.Invitees, invited); ok {
		result.ExternalEventID = &eventID
	}

	return result, nil
}

// createExternalEvent mirrors the meeting to the host's calendar. Failures are
// logged; the local meeting stands either way.
func (s *meetingService) createExternalEvent(ctx context.Context, host *model.User, meeting *model.Meeting, identifiers []string, invited []invitedUser) (string, bool) {
	if s.calendar == nil || !host.HasProviderAuthorization() {
		slog.InfoContext(ctx, "host has no calendar authorization, skipping external event")
		return "", false
	}

	payload := calendar.EventPayload{
		MeetingID:      meeting.ID,
		Summary:        meeting.Summary,
		Description:    eventDescription(meeting.Description, s.frontendURL),
		Start:          meeting.Start,
		End:            meeting.End,
		AttendeeEmails: attendeeEmails(host, identifiers, invited),
	}

	eventID, err := s.calendar.CreateEvent(ctx, host, payload)
	if err != nil {
		slog.WarnContext(ctx, "creating external event failed, meeting kept without it",
			"error", err,
			"retryable", calendar.IsRetryable(err))
		return "", false
	}

	if _, err := s.meetings.SetExternalEventID(ctx, meeting.ID, eventID); err != nil {
		slog.ErrorContext(ctx, "persisting external event id failed",
			"event_id", eventID,
			"error", err)
		return "", false
	}

	meeting.ExternalEventID = &eventID
	slog.InfoContext(ctx, "external event created", "event_id", eventID)
	return eventID, true
}

func (s *meetingService) resolveInvitees(ctx context.Context, host *model.User, identifiers []string) ([]model.User, []string, error) {
	var emails, usernames []string
	for _, ident := range identifiers {
		if strings.Contains(ident, "@") {
			emails = append(emails, ident)
		} else {
			usernames = append(usernames, ident)
		}
	}

	byEmail := make(map[string]model.User)
	users, err := s.users.ListByEmails(ctx, emails)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving invitee emails: %w", err)
	}
	for _, u := range users {
		byEmail[strings.ToLower(u.Email)] = u
	}

	byUsername := make(map[string]model.User)
	users, err = s.users.ListByUsernames(ctx, usernames)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving invitee usernames: %w", err)
	}
	for _, u := range users {
		if u.Username != nil {
			byUsername[strings.ToLower(*u.Username)] = u
		}
	}

	var (
		resolved   []model.User
		unresolved = []string{}
		seen       = make(map[int64]struct{})
	)
	for _, ident := range identifiers {
		u, ok := byEmail[ident]
		if !ok {
			u, ok = byUsername[ident]
		}
		if !ok {
			unresolved = append(unresolved, ident)
			continue
		}
		if u.ID == host.ID {
			continue
		}
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		resolved = append(resolved, u)
	}

	return resolved, unresolved, nil
}

func normalizeMeetingParams(p CreateMeetingParams) (CreateMeetingParams, error) {
	p.Summary = strings.TrimSpace(p.Summary)
	if p.Summary == "" {
		return p, invalid("summary", "is required")
	}
	if p.Start.IsZero() || p.End.IsZero() {
		return p, invalid("start_ts", "start and end are required")
	}
	if !p.End.After(p.Start) {
		return p, invalid("end_ts", "must be after start")
	}

	seen := make(map[string]struct{}, len(p.Invitees))
	invitees := make([]string, 0, len(p.Invitees))
	for _, raw := range p.Invitees {
		ident := strings.ToLower(strings.TrimSpace(raw))
		if ident == "" {
			continue
		}
		if _, dup := seen[ident]; dup {
			continue
		}
		seen[ident] = struct{}{}
		invitees = append(invitees, ident)
	}
	if len(invitees) == 0 {
		return p, invalid("invitees", "at least one invitee is required")
	}
	if len(invitees) > maxInvitees {
		return p, invalid("invitees", fmt.Sprintf("at most %d invitees", maxInvitees))
	}
	p.Invitees = invitees
	return p, nil
}

func attendeeEmails(host *model.User, identifiers []string, invited []invitedUser) []string {
	seen := map[string]struct{}{strings.ToLower(host.Email): {}}
	var out []string
	add := func(email string) {
		email = strings.ToLower(email)
		if _, ok := seen[email]; ok {
			return
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}

	for _, ident := range identifiers {
		if strings.Contains(ident, "@") {
			add(ident)
		}
	}
	for _, iu := range invited {
		add(iu.user.Email)
	}
	return out
}

func eventDescription(description, frontendURL string) string {
	footer := "To join and manage your meetings, sign up here: " + strings.TrimRight(frontendURL, "/") + "/signup"
	if strings.TrimSpace(description) == "" {
		return footer
	}
	return description + "\n\n" + footer
}
