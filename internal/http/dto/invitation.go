package dto

import (
	"time"

	"basegraph.app/rendezvous/internal/model"
)

type RespondInvitationRequest struct {
	Status model.InvitationStatus `json:"status" binding:"required,oneof=accepted declined"`
}

type InvitationResponse struct {
	ID        int64                  `json:"id,string"`
	MeetingID int64                  `json:"meeting_id,string"`
	InviteeID int64                  `json:"invitee_id,string"`
	Status    model.InvitationStatus `json:"status"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func ToInvitationResponse(inv *model.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:        inv.ID,
		MeetingID: inv.MeetingID,
		InviteeID: inv.InviteeID,
		Status:    inv.Status,
		UpdatedAt: inv.UpdatedAt,
	}
}
