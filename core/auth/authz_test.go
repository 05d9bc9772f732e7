package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/courseware/core/user"
)

func TestCanAct(t *testing.T) {
	tests := []struct {
		name                    string
		role, callerID, ownerID string
		want                    bool
	}{
		{name: "admin on anything", role: user.RoleAdmin, callerID: "A1", ownerID: "U1", want: true},
		{name: "admin without owner", role: user.RoleAdmin, callerID: "A1", want: true},
		{name: "owning instructor", role: user.RoleInstructor, callerID: "U1", ownerID: "U1", want: true},
		{name: "other instructor", role: user.RoleInstructor, callerID: "U2", ownerID: "U1"},
		{name: "student self", role: user.RoleStudent, callerID: "S1", ownerID: "S1", want: true},
		{name: "student other", role: user.RoleStudent, callerID: "S1", ownerID: "U1"},
		{name: "anonymous", ownerID: "U1"},
		{name: "anonymous without owner"},
		{name: "unknown role", role: "root", callerID: "X", ownerID: "U1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAct(tt.role, tt.callerID, tt.ownerID))
		})
	}
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin(user.RoleAdmin))
	assert.False(t, IsAdmin(user.RoleInstructor))
	assert.False(t, IsAdmin(user.RoleStudent))
	assert.False(t, IsAdmin(""))
}

func TestCanGrantRole(t *testing.T) {
	assert.True(t, CanGrantRole("", user.RoleStudent))
	assert.False(t, CanGrantRole("", user.RoleInstructor))
	assert.False(t, CanGrantRole(user.RoleInstructor, user.RoleAdmin))
	assert.False(t, CanGrantRole(user.RoleStudent, user.RoleInstructor))
	assert.True(t, CanGrantRole(user.RoleAdmin, user.RoleAdmin))
	assert.True(t, CanGrantRole(user.RoleAdmin, user.RoleInstructor))
}
