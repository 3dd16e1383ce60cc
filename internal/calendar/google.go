package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"basegraph.app/rendezvous/core/config"
	"basegraph.app/rendezvous/internal/model"
)

type serviceFactory func(ctx context.Context, ts oauth2.TokenSource) (*gcal.Service, error)

// TokenSaver persists a refresh token the provider rotated during a refresh.
type TokenSaver interface {
	UpdateProviderToken(ctx context.Context, userID int64, refreshToken *string) error
}

// GoogleAdapter talks to Google Calendar using each user's stored refresh token.
type GoogleAdapter struct {
	oauth      *oauth2.Config
	calendarID string
	timeout    time.Duration
	newService serviceFactory
	tokens     TokenSaver
}

func NewGoogleAdapter(cfg config.GoogleConfig) *GoogleAdapter {
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &GoogleAdapter{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gcal.CalendarEventsScope},
		},
		calendarID: calendarID,
		timeout:    timeout,
		newService: func(ctx context.Context, ts oauth2.TokenSource) (*gcal.Service, error) {
			return gcal.NewService(ctx, option.WithTokenSource(ts))
		},
	}
}

// WithTokenSaver stores refresh tokens that Google rotates on refresh.
func (a *GoogleAdapter) WithTokenSaver(tokens TokenSaver) *GoogleAdapter {
	a.tokens = tokens
	return a
}

func (a *GoogleAdapter) service(ctx context.Context, user *model.User) (*gcal.Service, error) {
	if !user.HasProviderAuthorization() {
		return nil, ErrMissingAuthorization
	}
	stored := *user.ProviderRefreshToken
	var ts oauth2.TokenSource = a.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: stored})
	if a.tokens != nil {
		ts = &rotationWatcher{ctx: ctx, src: ts, userID: user.ID, known: stored, tokens: a.tokens}
	}
	svc, err := a.newService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("building calendar client: %w", err)
	}
	return svc, nil
}

// rotationWatcher saves the refresh token whenever a refresh hands back a new one.
type rotationWatcher struct {
	ctx    context.Context
	src    oauth2.TokenSource
	userID int64
	tokens TokenSaver

	mu    sync.Mutex
	known string
}

func (w *rotationWatcher) Token() (*oauth2.Token, error) {
	tok, err := w.src.Token()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if tok.RefreshToken == "" || tok.RefreshToken == w.known {
		return tok, nil
	}
	w.known = tok.RefreshToken

	rotated := tok.RefreshToken
	if err := w.tokens.UpdateProviderToken(w.ctx, w.userID, &rotated); err != nil {
		slog.WarnContext(w.ctx, "failed to persist rotated refresh token",
			"user_id", w.userID,
			"error", err)
	} else {
		slog.InfoContext(w.ctx, "refresh token rotated", "user_id", w.userID)
	}
	return tok, nil
}

func (a *GoogleAdapter) CreateEvent(ctx context.Context, user *model.User, payload EventPayload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	svc, err := a.service(ctx, user)
	if err != nil {
		return "", err
	}

	attendees := make([]*gcal.EventAttendee, 0, len(payload.AttendeeEmails))
	for _, email := range payload.AttendeeEmails {
		attendees = append(attendees, &gcal.EventAttendee{Email: email})
	}

	event := &gcal.Event{
		Summary:     payload.Summary,
		Description: payload.Description,
		Start:       &gcal.EventDateTime{DateTime: payload.Start.UTC().Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: payload.End.UTC().Format(time.RFC3339)},
		Attendees:   attendees,
		ConferenceData: &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{MeetingMarkerKey: strconv.FormatInt(payload.MeetingID, 10)},
		},
	}

	created, err := svc.Events.Insert(a.calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return "", classify("create_event", err)
	}

	slog.DebugContext(ctx, "calendar event created",
		"user_id", user.ID,
		"meeting_id", payload.MeetingID,
		"event_id", created.Id)

	return created.Id, nil
}

func (a *GoogleAdapter) FetchEvent(ctx context.Context, user *model.User, eventID string) (*RemoteEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	svc, err := a.service(ctx, user)
	if err != nil {
		return nil, err
	}

	event, err := svc.Events.Get(a.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, classify("fetch_event", err)
	}

	return toRemoteEvent(event), nil
}

func (a *GoogleAdapter) UpdateAttendeeResponse(ctx context.Context, user *model.User, eventID, attendeeEmail string, status ResponseStatus) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	svc, err := a.service(ctx, user)
	if err != nil {
		return err
	}

	event, err := svc.Events.Get(a.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return classify("update_attendee_response", err)
	}

	found := false
	for _, att := range event.Attendees {
		if strings.EqualFold(att.Email, attendeeEmail) {
			att.ResponseStatus = string(status)
			found = true
		}
	}
	if !found {
		event.Attendees = append(event.Attendees, &gcal.EventAttendee{
			Email:          attendeeEmail,
			ResponseStatus: string(status),
		})
	}

	_, err = svc.Events.Patch(a.calendarID, eventID, &gcal.Event{Attendees: event.Attendees}).
		SendUpdates("none").
		Context(ctx).
		Do()
	if err != nil {
		return classify("update_attendee_response", err)
	}
	return nil
}

func (a *GoogleAdapter) RegisterChangeWatch(ctx context.Context, user *model.User, channelID, callbackURL string) (*WatchHandle, error) {
	if channelID == "" || callbackURL == "" {
		return nil, errors.New("channel id and callback url are required")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	svc, err := a.service(ctx, user)
	if err != nil {
		return nil, err
	}

	ch, err := svc.Events.Watch(a.calendarID, &gcal.Channel{
		Id:      channelID,
		Type:    "web_hook",
		Address: callbackURL,
	}).Context(ctx).Do()
	if err != nil {
		return nil, classify("register_change_watch", err)
	}

	handle := &WatchHandle{ChannelID: ch.Id, ResourceID: ch.ResourceId}
	if ch.Expiration > 0 {
		handle.Expiration = time.UnixMilli(ch.Expiration).UTC()
	}
	return handle, nil
}

func toRemoteEvent(event *gcal.Event) *RemoteEvent {
	out := &RemoteEvent{ID: event.Id}
	for _, att := range event.Attendees {
		if att == nil || att.Email == "" {
			continue
		}
		out.Attendees = append(out.Attendees, Attendee{
			Email:          strings.ToLower(att.Email),
			ResponseStatus: ResponseStatus(att.ResponseStatus),
		})
	}
	if event.ExtendedProperties != nil {
		if raw, ok := event.ExtendedProperties.Private[MeetingMarkerKey]; ok {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				out.MeetingID = &id
			}
		}
	}
	return out
}

// classify turns a client error into a ProviderError. Rate limits, server
// errors, timeouts and transport failures are retryable; other 4xx and
// rejected refresh tokens are not.
func classify(op string, err error) error {
	pe := &ProviderError{Op: op, Err: err, Retryable: true}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		pe.StatusCode = gerr.Code
		pe.Retryable = gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError
		return pe
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		if rerr.Response != nil {
			pe.StatusCode = rerr.Response.StatusCode
		}
		pe.Retryable = pe.StatusCode == http.StatusTooManyRequests || pe.StatusCode >= http.StatusInternalServerError
		return pe
	}

	if errors.Is(err, context.Canceled) {
		pe.Retryable = false
	}
	return pe
}
