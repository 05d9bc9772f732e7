package auth

import "github.com/trezcool/courseware/core/user"

// CanAct reports whether a caller may act on a resource owned by ownerID:
// admins may act on anything, everyone else only on what they own.
func CanAct(callerRole, callerID, ownerID string) bool {
	if IsAdmin(callerRole) {
		return true
	}
	return callerID != "" && callerID == ownerID
}

// IsAdmin is the stricter variant of CanAct for admin-only actions.
func IsAdmin(callerRole string) bool {
	return callerRole == user.RoleAdmin
}

// CanGrantRole reports whether a caller may create a user with role.
// Anonymous callers (empty role) may only create students.
func CanGrantRole(callerRole, role string) bool {
	if user.IsPrivilegedRole(role) {
		return IsAdmin(callerRole)
	}
	return true
}
