package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"basegraph.app/rendezvous/internal/http/dto"
	"basegraph.app/rendezvous/internal/http/middleware"
	"basegraph.app/rendezvous/internal/service"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.ListNotificationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	views, err := h.notificationService.ListRecent(ctx, middleware.GetUser(ctx), q.Limit)
	if err != nil {
		respondError(c, err, "failed to list notifications")
		return
	}

	c.JSON(http.StatusOK, dto.ToListNotificationsResponse(views))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()

	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if _, err := h.notificationService.MarkRead(ctx, middleware.GetUser(ctx), notificationID); err != nil {
		respondError(c, err, "failed to mark notification read")
		return
	}

	c.Status(http.StatusNoContent)
}
