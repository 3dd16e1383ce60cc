package model

import "time"

type Notification struct {
	ID           int64     `json:"id"`
	InvitationID *int64    `json:"invitation_id,omitempty"`
	RecipientID  int64     `json:"recipient_id"`
	Message      string    `json:"message"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

// NotificationView is a notification joined with the current status of its invitation.
type NotificationView struct {
	Notification
	InvitationStatus *InvitationStatus `json:"invitation_status,omitempty"`
}
