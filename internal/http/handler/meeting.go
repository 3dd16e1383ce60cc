package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/rendezvous/internal/http/dto"
	"basegraph.app/rendezvous/internal/http/middleware"
	"basegraph.app/rendezvous/internal/service"
)

type MeetingHandler struct {
	meetingService service.MeetingService
}

func NewMeetingHandler(meetingService service.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetingService: meetingService}
}

func (h *MeetingHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.meetingService.CreateMeeting(ctx, middleware.GetUser(ctx), req.ToParams())
	if err != nil {
		respondError(c, err, "failed to create meeting")
		return
	}

	c.JSON(http.StatusCreated, dto.ToCreateMeetingResponse(result))
}
