package models

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin          UserRole = "admin"
	UserRoleProjectManager UserRole = "project_manager"
	UserRoleTeamMember     UserRole = "team_member"
)

type User struct {
	UserID     string    `json:"user_id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"not null"`
	Email      string    `json:"email" gorm:"unique;not null"`
	Password   string    `json:"-"` // empty for identity-provider accounts
	Role       UserRole  `json:"role" gorm:"default:'team_member'"`
	Picture    string    `json:"picture"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}

// Session binds an opaque token from the identity-provider flow to a user.
// A session is valid iff it exists and ExpiresAt is in the future at check
// time; expiry is never extended.
type Session struct {
	SessionToken string    `json:"session_token" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"not null;index"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
