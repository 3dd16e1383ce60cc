package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"basegraph.app/rendezvous/internal/model"
)

// ErrMissingAuthorization is returned before any network call when the acting
// user has no stored provider authorization.
var ErrMissingAuthorization = errors.New("user has no calendar authorization")

// MeetingMarkerKey is the private extended property carrying the local meeting id.
const MeetingMarkerKey = "rendezvous_meeting_id"

// ResponseStatus is the provider's attendee response vocabulary.
type ResponseStatus string

const (
	ResponseAccepted    ResponseStatus = "accepted"
	ResponseDeclined    ResponseStatus = "declined"
	ResponseTentative   ResponseStatus = "tentative"
	ResponseNeedsAction ResponseStatus = "needsAction"
)

// ResponseFromStatus maps a local invitation status onto the provider vocabulary.
func ResponseFromStatus(s model.InvitationStatus) ResponseStatus {
	switch s {
	case model.InvitationStatusAccepted:
		return ResponseAccepted
	case model.InvitationStatusDeclined:
		return ResponseDeclined
	default:
		return ResponseNeedsAction
	}
}

type EventPayload struct {
	MeetingID      int64
	Summary        string
	Description    string
	Start          time.Time
	End            time.Time
	AttendeeEmails []string
}

type Attendee struct {
	Email          string
	ResponseStatus ResponseStatus
}

type RemoteEvent struct {
	ID        string
	Attendees []Attendee
	// MeetingID is set when the event carries this service's meeting marker.
	MeetingID *int64
}

type WatchHandle struct {
	ChannelID  string
	ResourceID string
	Expiration time.Time
}

// Adapter is the outbound boundary to the external calendar. Every call acts on
// behalf of the given user and fails with ErrMissingAuthorization or a
// *ProviderError.
type Adapter interface {
	CreateEvent(ctx context.Context, user *model.User, payload EventPayload) (string, error)
	UpdateAttendeeResponse(ctx context.Context, user *model.User, eventID, attendeeEmail string, status ResponseStatus) error
	RegisterChangeWatch(ctx context.Context, user *model.User, channelID, callbackURL string) (*WatchHandle, error)
	FetchEvent(ctx context.Context, user *model.User, eventID string) (*RemoteEvent, error)
}

// ProviderError wraps a failed upstream call.
type ProviderError struct {
	Op         string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("calendar %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("calendar %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a ProviderError worth trying again.
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable
}
