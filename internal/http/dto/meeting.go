package dto

import (
	"time"

	"basegraph.app/rendezvous/internal/service"
)

type CreateMeetingRequest struct {
	Summary     string    `json:"summary" binding:"required,max=1024"`
	Description string    `json:"description" binding:"max=8192"`
	StartTs     time.Time `json:"start_ts" binding:"required"`
	EndTs       time.Time `json:"end_ts" binding:"required"`
	// Invitees are emails or usernames.
	Invitees []string `json:"invitees" binding:"required,min=1,dive,max=320"`
}

func (r CreateMeetingRequest) ToParams() service.CreateMeetingParams {
	return service.CreateMeetingParams{
		Summary:     r.Summary,
		Description: r.Description,
		Start:       r.StartTs,
		End:         r.EndTs,
		Invitees:    r.Invitees,
	}
}

type CreateMeetingResponse struct {
	MeetingID          int64    `json:"meeting_id,string"`
	ExternalEventID    *string  `json:"external_event_id"`
	UnresolvedInvitees []string `json:"unresolved_invitees"`
}

func ToCreateMeetingResponse(r *service.CreateMeetingResult) CreateMeetingResponse {
	unresolved := r.UnresolvedInvitees
	if unresolved == nil {
		unresolved = []string{}
	}
	return CreateMeetingResponse{
		MeetingID:          r.MeetingID,
		ExternalEventID:    r.ExternalEventID,
		UnresolvedInvitees: unresolved,
	}
}
