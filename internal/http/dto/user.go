package dto

import (
	"time"

	"basegraph.app/rendezvous/internal/model"
)

type UserResponse struct {
	ID                 int64     `json:"id,string"`
	Email              string    `json:"email"`
	Username           *string   `json:"username,omitempty"`
	Name               string    `json:"name"`
	CalendarAuthorized bool      `json:"calendar_authorized"`
	CreatedAt          time.Time `json:"created_at"`
}

func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Username:           u.Username,
		Name:               u.Name,
		CalendarAuthorized: u.HasProviderAuthorization(),
		CreatedAt:          u.CreatedAt,
	}
}

type WatchChannelResponse struct {
	ChannelID  string    `json:"channel_id"`
	ResourceID string    `json:"resource_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func ToWatchChannelResponse(ch *model.WatchChannel) WatchChannelResponse {
	return WatchChannelResponse{
		ChannelID:  ch.ChannelID,
		ResourceID: ch.ResourceID,
		ExpiresAt:  ch.ExpiresAt,
	}
}
