package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/rendezvous/internal/http/handler"
)

func UserRouter(rg *gin.RouterGroup, h *handler.UserHandler) {
	rg.GET("/me", h.Me)
	rg.POST("/calendar/watch", h.WatchCalendar)
}
