package users

// RoleName identifies a role in the store.
type RoleName = string

const (
	// RoleUser is the default role attached on registration.
	RoleUser RoleName = "USER"
	// RoleModerator can manage content but not accounts.
	RoleModerator RoleName = "MODERATOR"
	// RoleAdmin can manage accounts.
	RoleAdmin RoleName = "ADMIN"
)

// DefaultRoleName is attached to newly registered users.
const DefaultRoleName = RoleUser

// AllRoleNames returns the predefined roles in hierarchical order.
func AllRoleNames() []RoleName {
	return []RoleName{RoleUser, RoleModerator, RoleAdmin}
}

// IsValidRoleName checks the name against the predefined roles.
func IsValidRoleName(name string) bool {
	switch name {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

var roleHierarchy = map[RoleName]int{
	RoleUser:      0,
	RoleModerator: 1,
	RoleAdmin:     2,
}

// RoleIsAtLeast reports whether role meets the minimum required level.
// Unknown roles never qualify.
func RoleIsAtLeast(role, minRole RoleName) bool {
	current, ok := roleHierarchy[role]
	if !ok {
		return false
	}
	min, ok := roleHierarchy[minRole]
	if !ok {
		return false
	}
	return current >= min
}
