package model

import "time"

// WatchChannel is a provider push-notification channel registered on behalf of a user.
type WatchChannel struct {
	ID         int64     `json:"id"`
	ChannelID  string    `json:"channel_id"`
	UserID     int64     `json:"user_id"`
	ResourceID string    `json:"resource_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}
