package service

import (
	"context"
	"errors"
	"fmt"

	"basegraph.app/rendezvous/internal/model"
	"basegraph.app/rendezvous/internal/store"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// NotificationService is the durable catch-up path for clients that missed live events.
type NotificationService interface {
	ListRecent(ctx context.Context, user *model.User, limit int) ([]model.NotificationView, error)
	MarkRead(ctx context.Context, user *model.User, notificationID int64) (*model.Notification, error)
}

type notificationService struct {
	notifications store.NotificationStore
}

func NewNotificationService(notifications store.NotificationStore) NotificationService {
	return &notificationService{notifications: notifications}
}

func (s *notificationService) ListRecent(ctx context.Context, user *model.User, limit int) ([]model.NotificationView, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	views, err := s.notifications.ListRecent(ctx, user.ID, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return views, nil
}

// MarkRead only succeeds for the recipient; anyone else sees ErrNotificationNotFound.
func (s *notificationService) MarkRead(ctx context.Context, user *model.User, notificationID int64) (*model.Notification, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}

	n, err := s.notifications.MarkRead(ctx, notificationID, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("marking notification read: %w", err)
	}
	return n, nil
}
