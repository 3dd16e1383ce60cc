package store

import (
	"context"
	"errors"

	"basegraph.app/rendezvous/core/db/sqlc"
	"basegraph.app/rendezvous/internal/model"
	"github.com/jackc/pgx/v5"
)

type notificationStore struct {
	queries *sqlc.Queries
}

func newNotificationStore(queries *sqlc.Queries) NotificationStore {
	return &notificationStore{queries: queries}
}

func (s *notificationStore) Create(ctx context.Context, n *model.Notification) error {
	row, err := s.queries.CreateNotification(ctx, sqlc.CreateNotificationParams{
		ID:           n.ID,
		InvitationID: n.InvitationID,
		RecipientID:  n.RecipientID,
		Message:      n.Message,
	})
	if err != nil {
		return err
	}
	*n = *toNotificationModel(row)
	return nil
}

func (s *notificationStore) ListRecent(ctx context.Context, recipientID int64, limit int32) ([]model.NotificationView, error) {
	rows, err := s.queries.ListRecentNotifications(ctx, sqlc.ListRecentNotificationsParams{
		RecipientID: recipientID,
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}

	result := make([]model.NotificationView, len(rows))
	for i, row := range rows {
		result[i] = model.NotificationView{
			Notification: model.Notification{
				ID:           row.ID,
				InvitationID: row.InvitationID,
				RecipientID:  row.RecipientID,
				Message:      row.Message,
				IsRead:       row.IsRead,
				CreatedAt:    row.CreatedAt.Time,
			},
		}
		if row.InvitationStatus != nil {
			status := model.InvitationStatus(*row.InvitationStatus)
			result[i].InvitationStatus = &status
		}
	}
	return result, nil
}

func (s *notificationStore) MarkRead(ctx context.Context, id, recipientID int64) (*model.Notification, error) {
	row, err := s.queries.MarkNotificationRead(ctx, sqlc.MarkNotificationReadParams{
		ID:          id,
		RecipientID: recipientID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toNotificationModel(row), nil
}

func toNotificationModel(row sqlc.Notification) *model.Notification {
	return &model.Notification{
		ID:           row.ID,
		InvitationID: row.InvitationID,
		RecipientID:  row.RecipientID,
		Message:      row.Message,
		IsRead:       row.IsRead,
		CreatedAt:    row.CreatedAt.Time,
	}
}
