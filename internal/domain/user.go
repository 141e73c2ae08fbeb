package domain

import (
	"time"
)

// User is the application profile of a registered account.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	AvatarURL    *string    `json:"avatar_url"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// Identity is the caller resolved from a session token.
type Identity struct {
	UserID string
	Email  string
	// TokenID is the session token's unique id, used for revocation.
	TokenID   string
	ExpiresAt time.Time
}
