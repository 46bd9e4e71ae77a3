package auth

import "strings"

// Permission represents a named capability in the platform.
//
// A permission containing the ":own" suffix is scoped to resources the
// acting user owns: it only grants access when the resource ID under
// check equals the session user's ID.
type Permission string

// Permission constants.
const (
	PermUsersRead          Permission = "users:read"
	PermUsersWrite         Permission = "users:write"
	PermReservationsRead   Permission = "reservations:read"
	PermReservationsWrite  Permission = "reservations:write"
	PermReservationsCreate Permission = "reservations:create"
	PermDriversRead        Permission = "drivers:read"
	PermDriversWrite       Permission = "drivers:write"
	PermVehiclesRead       Permission = "vehicles:read"
	PermVehiclesWrite      Permission = "vehicles:write"
	PermReportsRead        Permission = "reports:read"
	PermSettingsWrite      Permission = "settings:write"
	PermAuditRead          Permission = "audit:read"
	PermRoutesRead         Permission = "routes:read"

	PermReservationsReadOwn   Permission = "reservations:read:own"
	PermReservationsUpdateOwn Permission = "reservations:update:own"
	PermReservationsCancelOwn Permission = "reservations:cancel:own"
	PermProfileReadOwn        Permission = "profile:read:own"
	PermProfileWriteOwn       Permission = "profile:write:own"
)

// ownSuffix marks a permission as scoped to owned resources.
const ownSuffix = ":own"

// rolePermissions maps each role to its granted permissions.
// This is the single source of truth for the authorisation model.
// Accounts snapshot their role's entry at creation time.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermUsersRead,
		PermUsersWrite,
		PermReservationsRead,
		PermReservationsWrite,
		PermDriversRead,
		PermDriversWrite,
		PermVehiclesRead,
		PermVehiclesWrite,
		PermReportsRead,
		PermSettingsWrite,
		PermAuditRead,
	},
	RoleDriver: {
		PermReservationsReadOwn,
		PermReservationsUpdateOwn,
		PermProfileReadOwn,
		PermProfileWriteOwn,
		PermRoutesRead,
	},
	RoleCustomer: {
		PermReservationsReadOwn,
		PermReservationsCreate,
		PermReservationsCancelOwn,
		PermProfileReadOwn,
		PermProfileWriteOwn,
	},
}

// IsOwnScoped returns true if the permission is restricted to resources
// the acting user owns.
func (p Permission) IsOwnScoped() bool {
	return strings.Contains(string(p), ownSuffix)
}

// PermissionsForRole returns all permissions granted to a role.
// The returned slice is a copy. Returns nil for unknown roles.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	result := make([]Permission, len(perms))
	copy(result, perms)
	return result
}

// permissionSetContains reports whether the exact permission string is in
// the given snapshot set.
func permissionSetContains(set []Permission, perm Permission) bool {
	for _, p := range set {
		if p == perm {
			return true
		}
	}
	return false
}
