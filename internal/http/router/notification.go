package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/rendezvous/internal/http/handler"
)

func NotificationRouter(rg *gin.RouterGroup, h *handler.NotificationHandler) {
	rg.GET("", h.List)
	rg.PUT("/:id/read", h.MarkRead)
}
