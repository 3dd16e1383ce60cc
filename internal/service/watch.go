package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"basegraph.app/rendezvous/common/id"
	"basegraph.app/rendezvous/internal/calendar"
	"basegraph.app/rendezvous/internal/model"
	"basegraph.app/rendezvous/internal/store"
)

// WatchService registers provider push channels so inbound notifications can
// be attributed to the user who authorized them.
type WatchService interface {
	Register(ctx context.Context, user *model.User) (*model.WatchChannel, error)
}

type watchService struct {
	channels    store.WatchChannelStore
	calendar    calendar.Adapter
	callbackURL string
}

func NewWatchService(channels store.WatchChannelStore, cal calendar.Adapter, callbackURL string) WatchService {
	return &watchService{
		channels:    channels,
		calendar:    cal,
		callbackURL: callbackURL,
	}
}

func (s *watchService) Register(ctx context.Context, user *model.User) (*model.WatchChannel, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	if s.calendar == nil || !user.HasProviderAuthorization() {
		return nil, calendar.ErrMissingAuthorization
	}

	channelID := uuid.NewString()
	handle, err := s.calendar.RegisterChangeWatch(ctx, user, channelID, s.callbackURL)
	if err != nil {
		return nil, fmt.Errorf("registering change watch: %w", err)
	}

	ch := &model.WatchChannel{
		ID:         id.New(),
		ChannelID:  channelID,
		UserID:     user.ID,
		ResourceID: handle.ResourceID,
		ExpiresAt:  handle.Expiration,
	}
	if err := s.channels.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("storing watch channel: %w", err)
	}

	slog.InfoContext(ctx, "calendar watch registered",
		"user_id", user.ID,
		"channel_id", channelID,
		"expires_at", handle.Expiration)
	return ch, nil
}
