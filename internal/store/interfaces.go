package store

import (
	"context"
	"errors"

	"basegraph.app/rendezvous/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// UserStore defines the contract for user data access
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	ListByEmails(ctx context.Context, emails []string) ([]model.User, error)
	ListByUsernames(ctx context.Context, usernames []string) ([]model.User, error)
	UpdateProviderToken(ctx context.Context, id int64, refreshToken *string) error
}

// MeetingStore defines the contract for meeting data access
type MeetingStore interface {
	Create(ctx context.Context, meeting *model.Meeting) error
	GetByID(ctx context.Context, id int64) (*model.Meeting, error)
	GetByExternalEventID(ctx context.Context, externalEventID string) (*model.Meeting, error)
	// SetExternalEventID only succeeds while the meeting has no external id;
	// otherwise ErrNotFound.
	SetExternalEventID(ctx context.Context, id int64, externalEventID string) (*model.Meeting, error)
}

// InvitationStore defines the contract for invitation data access
type InvitationStore interface {
	Create(ctx context.Context, inv *model.Invitation) error
	GetForUpdate(ctx context.Context, id int64) (*model.Invitation, error) // row lock, tx only
	GetByMeetingAndEmail(ctx context.Context, meetingID int64, email string) (*model.Invitation, error)
	// UpdateStatus is a compare-and-set on the expected status; ErrNotFound when it lost.
	UpdateStatus(ctx context.Context, id int64, expected, next model.InvitationStatus) (*model.Invitation, error)
}

// NotificationStore defines the contract for notification data access
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListRecent(ctx context.Context, recipientID int64, limit int32) ([]model.NotificationView, error)
	MarkRead(ctx context.Context, id, recipientID int64) (*model.Notification, error)
}

// WatchChannelStore defines the contract for provider watch channel data access
type WatchChannelStore interface {
	Create(ctx context.Context, ch *model.WatchChannel) error
	GetByChannelID(ctx context.Context, channelID string) (*model.WatchChannel, error)
}
