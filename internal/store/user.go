package store

import (
	"context"
	"errors"

	"basegraph.app/rendezvous/core/db/sqlc"
	"basegraph.app/rendezvous/internal/model"
	"github.com/jackc/pgx/v5"
)

type userStore struct {
	queries *sqlc.Queries
}

func newUserStore(queries *sqlc.Queries) UserStore {
	return &userStore{queries: queries}
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toUserModel(row), nil
}

func (s *userStore) ListByEmails(ctx context.Context, emails []string) ([]model.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	rows, err := s.queries.ListUsersByEmails(ctx, emails)
	if err != nil {
		return nil, err
	}
	return toUserModels(rows), nil
}

func (s *userStore) ListByUsernames(ctx context.Context, usernames []string) ([]model.User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	rows, err := s.queries.ListUsersByUsernames(ctx, usernames)
	if err != nil {
		return nil, err
	}
	return toUserModels(rows), nil
}

func (s *userStore) UpdateProviderToken(ctx context.Context, id int64, refreshToken *string) error {
	return s.queries.UpdateUserProviderToken(ctx, sqlc.UpdateUserProviderTokenParams{
		ID:                   id,
		ProviderRefreshToken: refreshToken,
	})
}

func toUserModel(row sqlc.User) *model.User {
	return &model.User{
		ID:                   row.ID,
		Email:                row.Email,
		Username:             row.Username,
		Name:                 row.Name,
		ProviderRefreshToken: row.ProviderRefreshToken,
		CreatedAt:            row.CreatedAt.Time,
		UpdatedAt:            row.UpdatedAt.Time,
	}
}

func toUserModels(rows []sqlc.User) []model.User {
	result := make([]model.User, len(rows))
	for i, row := range rows {
		result[i] = *toUserModel(row)
	}
	return result
}
