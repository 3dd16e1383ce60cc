package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/rendezvous/internal/http/handler/webhook"
)

func WebhookRouter(rg *gin.RouterGroup, h *webhook.GoogleCalendarWebhookHandler) {
	rg.POST("/google-calendar", h.HandleNotification)
}
