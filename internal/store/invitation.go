package store

import (
	"context"
	"errors"

	"basegraph.app/rendezvous/core/db/sqlc"
	"basegraph.app/rendezvous/internal/model"
	"github.com/jackc/pgx/v5"
)

type invitationStore struct {
	queries *sqlc.Queries
}

func newInvitationStore(queries *sqlc.Queries) InvitationStore {
	return &invitationStore{queries: queries}
}

func (s *invitationStore) Create(ctx context.Context, inv *model.Invitation) error {
	row, err := s.queries.CreateInvitation(ctx, sqlc.CreateInvitationParams{
		ID:        inv.ID,
		MeetingID: inv.MeetingID,
		InviteeID: inv.InviteeID,
	})
	if err != nil {
		return err
	}
	*inv = *toInvitationModel(row)
	return nil
}

func (s *invitationStore) GetForUpdate(ctx context.Context, id int64) (*model.Invitation, error) {
	row, err := s.queries.GetInvitationForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toInvitationModel(row), nil
}

func (s *invitationStore) GetByMeetingAndEmail(ctx context.Context, meetingID int64, email string) (*model.Invitation, error) {
	row, err := s.queries.GetInvitationByMeetingAndEmail(ctx, sqlc.GetInvitationByMeetingAndEmailParams{
		MeetingID: meetingID,
		Email:     email,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toInvitationModel(row), nil
}

func (s *invitationStore) UpdateStatus(ctx context.Context, id int64, expected, next model.InvitationStatus) (*model.Invitation, error) {
	row, err := s.queries.UpdateInvitationStatus(ctx, sqlc.UpdateInvitationStatusParams{
		Status:         string(next),
		ID:             id,
		ExpectedStatus: string(expected),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toInvitationModel(row), nil
}

func toInvitationModel(row sqlc.Invitation) *model.Invitation {
	return &model.Invitation{
		ID:        row.ID,
		MeetingID: row.MeetingID,
		InviteeID: row.InviteeID,
		Status:    model.InvitationStatus(row.Status),
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
