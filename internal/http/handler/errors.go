package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/rendezvous/internal/calendar"
	"basegraph.app/rendezvous/internal/domain"
	"basegraph.app/rendezvous/internal/service"
)

// respondError maps service sentinels to HTTP statuses. Anything unmapped is
// logged and reported as a 500 with the given fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()

	var (
		verr *service.ValidationError
		perr *calendar.ProviderError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	case errors.Is(err, service.ErrHostNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "host not found"})
	case errors.Is(err, service.ErrInvitationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "invitation not found"})
	case errors.Is(err, service.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
	case errors.Is(err, service.ErrNotInvitee):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the invitee can respond to this invitation"})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "invitation cannot move to the requested status"})
	case errors.Is(err, calendar.ErrMissingAuthorization):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": "calendar access has not been granted"})
	case errors.As(err, &perr):
		slog.WarnContext(ctx, fallback, "error", err, "retryable", perr.Retryable)
		c.JSON(http.StatusBadGateway, gin.H{"error": "calendar provider request failed"})
	default:
		slog.ErrorContext(ctx, fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
