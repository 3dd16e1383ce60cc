package service

import (
	"errors"
	"fmt"

	"basegraph.app/rendezvous/internal/calendar"
	"basegraph.app/rendezvous/internal/domain"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrHostNotFound         = errors.New("host not found")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrNotInvitee           = errors.New("only the invitee can respond to this invitation")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUnauthorized         = errors.New("unauthorized")
)

// ValidationError names the offending field. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ErrorCode maps a service error to the code and message sent to realtime clients.
func ErrorCode(err error) (string, string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return "INVALID_ARGUMENT", verr.Error()
	case errors.Is(err, domain.ErrInvalidTransition):
		return "FAILED_PRECONDITION", "invitation cannot move to the requested status"
	case errors.Is(err, ErrInvitationNotFound):
		return "NOT_FOUND", ErrInvitationNotFound.Error()
	case errors.Is(err, ErrNotInvitee):
		return "PERMISSION_DENIED", ErrNotInvitee.Error()
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHENTICATED", ErrUnauthorized.Error()
	case errors.Is(err, calendar.ErrMissingAuthorization):
		return "FAILED_PRECONDITION", calendar.ErrMissingAuthorization.Error()
	default:
		return "INTERNAL", "request failed"
	}
}
