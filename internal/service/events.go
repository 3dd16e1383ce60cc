package service

import (
	"time"

	"basegraph.app/rendezvous/internal/domain"
	"basegraph.app/rendezvous/internal/model"
)

// Ids are encoded as JSON strings; snowflake ids overflow a JS number.

// MeetingInvitedPayload is sent to each invitee once the meeting is committed.
type MeetingInvitedPayload struct {
	MeetingID      int64     `json:"meeting_id,string"`
	InvitationID   int64     `json:"invitation_id,string"`
	NotificationID int64     `json:"notification_id,string"`
	HostID         int64     `json:"host_id,string"`
	Summary        string    `json:"summary"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Message        string    `json:"message"`
}

// InviteStatusChangedPayload is sent to the invitee and the host after a transition.
type InviteStatusChangedPayload struct {
	InvitationID int64                  `json:"invitation_id,string"`
	MeetingID    int64                  `json:"meeting_id,string"`
	InviteeID    int64                  `json:"invitee_id,string"`
	Status       model.InvitationStatus `json:"status"`
	Origin       domain.Origin          `json:"origin"`
}
