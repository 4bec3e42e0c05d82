package membership_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/modules/core/domain/entities/membership"
)

func TestRoleSatisfies(t *testing.T) {
	cases := []struct {
		role membership.Role
		need membership.Role
		want bool
	}{
		{membership.RoleViewer, membership.RoleViewer, true},
		{membership.RoleViewer, membership.RoleAdmin, false},
		{membership.RoleViewer, membership.RoleOwner, false},
		{membership.RoleAdmin, membership.RoleViewer, true},
		{membership.RoleAdmin, membership.RoleAdmin, true},
		{membership.RoleAdmin, membership.RoleOwner, false},
		{membership.RoleOwner, membership.RoleViewer, true},
		{membership.RoleOwner, membership.RoleAdmin, true},
		{membership.RoleOwner, membership.RoleOwner, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.role.Satisfies(tc.need), "%s satisfies %s", tc.role, tc.need)
	}
}

func TestNewRole(t *testing.T) {
	role, err := membership.NewRole("admin")
	require.NoError(t, err)
	assert.Equal(t, membership.RoleAdmin, role)

	_, err = membership.NewRole("superuser")
	require.Error(t, err)
}
