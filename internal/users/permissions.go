package users

import (
	"context"

	"github.com/campusbridge/connect/internal/models"
)

// RolePermissions answers capability checks from the LMS role projection:
// admins and teachers may initiate any conference, everyone else only the
// conferences they created.
type RolePermissions struct{}

// NewRolePermissions creates the default capability checker.
func NewRolePermissions() *RolePermissions {
	return &RolePermissions{}
}

// CanInitiate reports whether the user may start and host the conference.
func (p *RolePermissions) CanInitiate(_ context.Context, user *models.User, conf *models.Conference) (bool, error) {
	if user.Role == models.RoleAdmin || user.Role == models.RoleTeacher {
		return true, nil
	}
	return conf.CreatedBy == user.ID, nil
}
