package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission_SameRole(t *testing.T) {
	for _, role := range []Role{RoleOrganizer, RoleAdmin, RoleUser} {
		assert.True(t, HasPermission(role, role), "role %s should satisfy itself", role.Label())
	}
}

func TestHasPermission_Hierarchy(t *testing.T) {
	tests := []struct {
		name     string
		actual   Role
		required Role
		want     bool
	}{
		{"organizer satisfies admin", RoleOrganizer, RoleAdmin, true},
		{"organizer satisfies user", RoleOrganizer, RoleUser, true},
		{"admin satisfies user", RoleAdmin, RoleUser, true},
		{"admin does not satisfy organizer", RoleAdmin, RoleOrganizer, false},
		{"user does not satisfy admin", RoleUser, RoleAdmin, false},
		{"user does not satisfy organizer", RoleUser, RoleOrganizer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.actual, tt.required))
		})
	}
}

func TestRoleFromLevel(t *testing.T) {
	assert.Equal(t, RoleOrganizer, RoleFromLevel(1))
	assert.Equal(t, RoleAdmin, RoleFromLevel(2))
	assert.Equal(t, RoleUser, RoleFromLevel(3))

	// Unknown levels default to the least privileged role
	assert.Equal(t, RoleUser, RoleFromLevel(0))
	assert.Equal(t, RoleUser, RoleFromLevel(-1))
	assert.Equal(t, RoleUser, RoleFromLevel(99))
}

func TestRoleLabels(t *testing.T) {
	assert.Equal(t, "ORGANIZER", RoleOrganizer.Label())
	assert.Equal(t, "ADMIN", RoleAdmin.Label())
	assert.Equal(t, "USER", RoleUser.Label())
}

func TestAccountStatus_IsActive(t *testing.T) {
	assert.True(t, StatusActive.IsActive())
	assert.False(t, StatusUnactivated.IsActive())
	assert.False(t, StatusDisabled.IsActive())
}
