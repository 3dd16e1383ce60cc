package model

import "time"

type Meeting struct {
	ID              int64     `json:"id"`
	HostID          int64     `json:"host_id"`
	Summary         string    `json:"summary"`
	Description     string    `json:"description"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	ExternalEventID *string   `json:"external_event_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
