package webhook

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/rendezvous/common/logger"
	"basegraph.app/rendezvous/internal/queue"
)

// Enqueuer hands a notification to the background reconciler.
type Enqueuer interface {
	Enqueue(ctx context.Context, n queue.CalendarNotification) error
}

type GoogleCalendarWebhookHandler struct {
	secret   string
	enqueuer Enqueuer
}

func NewGoogleCalendarWebhookHandler(secret string, enqueuer Enqueuer) *GoogleCalendarWebhookHandler {
	return &GoogleCalendarWebhookHandler{
		secret:   secret,
		enqueuer: enqueuer,
	}
}

// HandleNotification acknowledges provider push notifications. Reconciliation
// happens on the worker so the provider never waits on it.
func (h *GoogleCalendarWebhookHandler) HandleNotification(c *gin.Context) {
	ctx := c.Request.Context()

	if h.secret == "" {
		slog.ErrorContext(ctx, "webhook secret is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		return
	}

	token := c.Query("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
		slog.WarnContext(ctx, "calendar webhook rejected: bad token", "client_ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	n := queue.CalendarNotification{
		ChannelID:     c.GetHeader("X-Goog-Channel-ID"),
		ResourceState: c.GetHeader("X-Goog-Resource-State"),
		ResourceID:    c.GetHeader("X-Goog-Resource-ID"),
		ResourceURI:   c.GetHeader("X-Goog-Resource-URI"),
		MessageNumber: c.GetHeader("X-Goog-Message-Number"),
		TraceID:       logger.TraceID(ctx),
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{ChannelID: &n.ChannelID})

	switch {
	case n.ResourceState == queue.ResourceStateSync:
		slog.InfoContext(ctx, "calendar watch sync acknowledged", "resource_id", n.ResourceID)
	case n.ChannelID == "" || n.ResourceState == "":
		slog.WarnContext(ctx, "calendar webhook missing channel headers, dropping")
	default:
		if err := h.enqueuer.Enqueue(ctx, n); err != nil {
			slog.ErrorContext(ctx, "failed to enqueue calendar notification",
				"error", err,
				"resource_state", n.ResourceState,
				"message_number", n.MessageNumber)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
