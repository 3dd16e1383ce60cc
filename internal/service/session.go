package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"basegraph.app/rendezvous/internal/model"
	"basegraph.app/rendezvous/internal/store"
)

const (
	sessionIssuer = "rendezvous"
	sessionTTL    = 24 * time.Hour
)

// SessionService verifies the bearer tokens issued to signed-in users.
type SessionService interface {
	Issue(user *model.User) (string, error)
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type sessionService struct {
	users  store.UserStore
	secret []byte
	now    func() time.Time
}

func NewSessionService(users store.UserStore, secret string) SessionService {
	return &sessionService{
		users:  users,
		secret: []byte(secret),
		now:    time.Now,
	}
}

func (s *sessionService) Issue(user *model.User) (string, error) {
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
		Email: user.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

func (s *sessionService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("loading session user: %w", err)
	}
	return user, nil
}
