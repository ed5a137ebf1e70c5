package models

import "time"

// Session is the token bundle returned by the auth endpoints. In no-backend
// mode every field is empty and Configured is false.
type Session struct {
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	Email        string    `json:"email,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	Configured   bool      `json:"configured"`
}
