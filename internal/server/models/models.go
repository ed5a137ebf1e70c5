// Package models holds server-side row types for the auth and profile
// tables. The card wire type lives in internal/models because the client
// shares it.
package models

import "time"

// User is an account row of the auth backend.
type User struct {
	ID           string
	Email        string
	Phone        string // optional, used for SMS recovery codes
	PasswordHash []byte
	CreatedAt    time.Time
}

// Profile is the bookkeeping row upserted on sign-in/sign-up.
type Profile struct {
	ID        string
	Email     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// RefreshToken is a server-stored long-lived session token.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}

// RecoveryCode is a one-time password-recovery credential, either a short
// SMS code or a long email-link token.
type RecoveryCode struct {
	UserID  string
	Code    string
	Expires time.Time
}
