package store

import (
	"context"
	"errors"

	"basegraph.app/rendezvous/core/db/sqlc"
	"basegraph.app/rendezvous/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type watchChannelStore struct {
	queries *sqlc.Queries
}

func newWatchChannelStore(queries *sqlc.Queries) WatchChannelStore {
	return &watchChannelStore{queries: queries}
}

func (s *watchChannelStore) Create(ctx context.Context, ch *model.WatchChannel) error {
	row, err := s.queries.CreateWatchChannel(ctx, sqlc.CreateWatchChannelParams{
		ID:         ch.ID,
		ChannelID:  ch.ChannelID,
		UserID:     ch.UserID,
		ResourceID: ch.ResourceID,
		ExpiresAt:  pgtype.Timestamptz{Time: ch.ExpiresAt, Valid: !ch.ExpiresAt.IsZero()},
	})
	if err != nil {
		return err
	}
	*ch = *toWatchChannelModel(row)
	return nil
}

func (s *watchChannelStore) GetByChannelID(ctx context.Context, channelID string) (*model.WatchChannel, error) {
	row, err := s.queries.GetWatchChannelByChannelID(ctx, channelID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toWatchChannelModel(row), nil
}

func toWatchChannelModel(row sqlc.CalendarWatchChannel) *model.WatchChannel {
	return &model.WatchChannel{
		ID:         row.ID,
		ChannelID:  row.ChannelID,
		UserID:     row.UserID,
		ResourceID: row.ResourceID,
		ExpiresAt:  row.ExpiresAt.Time,
		CreatedAt:  row.CreatedAt.Time,
	}
}
