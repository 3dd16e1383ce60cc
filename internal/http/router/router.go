package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/rendezvous/internal/http/handler"
	"basegraph.app/rendezvous/internal/http/handler/webhook"
	"basegraph.app/rendezvous/internal/http/middleware"
	"basegraph.app/rendezvous/internal/service"
)

type RouterConfig struct {
	WebhookSecret string
	Enqueuer      webhook.Enqueuer
	// Realtime serves the WebSocket endpoint; nil leaves /ws unrouted.
	Realtime http.Handler
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	webhookHandler := webhook.NewGoogleCalendarWebhookHandler(cfg.WebhookSecret, cfg.Enqueuer)
	WebhookRouter(router.Group("/webhooks"), webhookHandler)

	if cfg.Realtime != nil {
		router.GET("/ws", gin.WrapH(cfg.Realtime))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireAuth(services.Sessions()))
	{
		MeetingRouter(v1.Group("/meetings"), handler.NewMeetingHandler(services.Meetings()))
		InvitationRouter(v1.Group("/invitations"), handler.NewInvitationHandler(services.Invitations()))
		NotificationRouter(v1.Group("/notifications"), handler.NewNotificationHandler(services.Notifications()))
		UserRouter(v1, handler.NewUserHandler(services.Watches()))
	}
}
