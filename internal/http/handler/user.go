package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/rendezvous/internal/http/dto"
	"basegraph.app/rendezvous/internal/http/middleware"
	"basegraph.app/rendezvous/internal/service"
)

type UserHandler struct {
	watchService service.WatchService
}

func NewUserHandler(watchService service.WatchService) *UserHandler {
	return &UserHandler{watchService: watchService}
}

func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.GetUser(c.Request.Context())
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// WatchCalendar subscribes to change notifications for the caller's calendar.
func (h *UserHandler) WatchCalendar(c *gin.Context) {
	ctx := c.Request.Context()

	ch, err := h.watchService.Register(ctx, middleware.GetUser(ctx))
	if err != nil {
		respondError(c, err, "failed to register calendar watch")
		return
	}

	c.JSON(http.StatusCreated, dto.ToWatchChannelResponse(ch))
}
