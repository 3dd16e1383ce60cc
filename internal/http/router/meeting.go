package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/rendezvous/internal/http/handler"
)

func MeetingRouter(rg *gin.RouterGroup, h *handler.MeetingHandler) {
	rg.POST("", h.Create)
}

func InvitationRouter(rg *gin.RouterGroup, h *handler.InvitationHandler) {
	rg.POST("/:id/respond", h.Respond)
}
