package model

import "time"

type User struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	Username *string `json:"username,omitempty"`
	Name     string  `json:"name"`
	// ProviderRefreshToken is the long-lived calendar authorization. Never serialized.
	ProviderRefreshToken *string   `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// HasProviderAuthorization reports whether the user can act on the external calendar.
func (u *User) HasProviderAuthorization() bool {
	return u != nil && u.ProviderRefreshToken != nil && *u.ProviderRefreshToken != ""
}
