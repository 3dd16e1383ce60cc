package store

import (
	"context"
	"errors"

	"basegraph.app/rendezvous/core/db/sqlc"
	"basegraph.app/rendezvous/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type meetingStore struct {
	queries *sqlc.Queries
}

func newMeetingStore(queries *sqlc.Queries) MeetingStore {
	return &meetingStore{queries: queries}
}

func (s *meetingStore) Create(ctx context.Context, m *model.Meeting) error {
	row, err := s.queries.CreateMeeting(ctx, sqlc.CreateMeetingParams{
		ID:          m.ID,
		HostID:      m.HostID,
		Summary:     m.Summary,
		Description: m.Description,
		StartTs:     pgtype.Timestamptz{Time: m.Start, Valid: true},
		EndTs:       pgtype.Timestamptz{Time: m.End, Valid: true},
	})
	if err != nil {
		return err
	}
	*m = *toMeetingModel(row)
	return nil
}

func (s *meetingStore) GetByID(ctx context.Context, id int64) (*model.Meeting, error) {
	row, err := s.queries.GetMeetingByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toMeetingModel(row), nil
}

func (s *meetingStore) GetByExternalEventID(ctx context.Context, externalEventID string) (*model.Meeting, error) {
	row, err := s.queries.GetMeetingByExternalEventID(ctx, &externalEventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toMeetingModel(row), nil
}

func (s *meetingStore) SetExternalEventID(ctx context.Context, id int64, externalEventID string) (*model.Meeting, error) {
	row, err := s.queries.SetMeetingExternalEventID(ctx, sqlc.SetMeetingExternalEventIDParams{
		ID:              id,
		ExternalEventID: &externalEventID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toMeetingModel(row), nil
}

func toMeetingModel(row sqlc.Meeting) *model.Meeting {
	return &model.Meeting{
		ID:              row.ID,
		HostID:          row.HostID,
		Summary:         row.Summary,
		Description:     row.Description,
		Start:           row.StartTs.Time,
		End:             row.EndTs.Time,
		ExternalEventID: row.ExternalEventID,
		CreatedAt:       row.CreatedAt.Time,
	}
}
