package dto

import (
	"strconv"
	"time"

	"basegraph.app/rendezvous/internal/model"
)

type ListNotificationsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type NotificationResponse struct {
	ID               int64                   `json:"id,string"`
	InvitationID     *string                 `json:"invitation_id"`
	Message          string                  `json:"message"`
	IsRead           bool                    `json:"is_read"`
	InvitationStatus *model.InvitationStatus `json:"invitation_status"`
	CreatedAt        time.Time               `json:"created_at"`
}

type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

func ToNotificationResponse(v model.NotificationView) NotificationResponse {
	resp := NotificationResponse{
		ID:               v.ID,
		Message:          v.Message,
		IsRead:           v.IsRead,
		InvitationStatus: v.InvitationStatus,
		CreatedAt:        v.CreatedAt,
	}
	if v.InvitationID != nil {
		s := strconv.FormatInt(*v.InvitationID, 10)
		resp.InvitationID = &s
	}
	return resp
}

func ToListNotificationsResponse(views []model.NotificationView) ListNotificationsResponse {
	resp := ListNotificationsResponse{Notifications: make([]NotificationResponse, len(views))}
	for i, v := range views {
		resp.Notifications[i] = ToNotificationResponse(v)
	}
	return resp
}
