package models

import (
	"strings"
	"time"
)

// Role represents a user's role in the host LMS.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// User is the projection of a host-LMS user that the bridge needs: identity
// fields for deriving deterministic Connect credentials plus the role used
// by the initiate-capability check.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	UUID      string    `json:"uuid"`
	SISUserID string    `json:"sis_user_id,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns the display name used for guest join URLs.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
