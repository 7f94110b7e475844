package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbridge/connect/internal/models"
)

func TestCanInitiate(t *testing.T) {
	perms := NewRolePermissions()
	conf := &models.Conference{ID: 1, CreatedBy: 10}

	cases := []struct {
		name string
		user models.User
		want bool
	}{
		{"admin", models.User{ID: 99, Role: models.RoleAdmin}, true},
		{"teacher", models.User{ID: 99, Role: models.RoleTeacher}, true},
		{"student owner", models.User{ID: 10, Role: models.RoleStudent}, true},
		{"student non-owner", models.User{ID: 11, Role: models.RoleStudent}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := perms.CanInitiate(context.Background(), &tc.user, conf)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
