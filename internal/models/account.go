package models

import "time"

const (
	RoleParent = "parent"
	RoleTutor  = "tutor"
	RoleAdmin  = "admin"
)

const (
	AccountStatusPending  = "pending"
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
)

type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AuthToken struct {
	ID        int64      `json:"id"`
	AccountID int64      `json:"account_id"`
	TokenID   string     `json:"token_id"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
