package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"basegraph.app/rendezvous/internal/http/dto"
	"basegraph.app/rendezvous/internal/http/middleware"
	"basegraph.app/rendezvous/internal/service"
)

type InvitationHandler struct {
	invitationService service.InvitationService
}

func NewInvitationHandler(invitationService service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// Respond records the caller's accept/decline on an invitation addressed to them.
func (h *InvitationHandler) Respond(c *gin.Context) {
	ctx := c.Request.Context()

	invitationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invitation id"})
		return
	}

	var req dto.RespondInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be accepted or declined"})
		return
	}

	inv, err := h.invitationService.Respond(ctx, middleware.GetUser(ctx), invitationID, req.Status)
	if err != nil {
		respondError(c, err, "failed to respond to invitation")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationResponse(inv))
}
