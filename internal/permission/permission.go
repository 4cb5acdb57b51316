package permission

import "github.com/commercemobile/storefront-admin/internal/adminuser"

// Wildcard grants every permission; only the super_admin role carries it.
const Wildcard = "*"

// rolePermissions is the static role table. Group membership can extend
// these sets, never shrink them.
var rolePermissions = map[adminuser.Role][]string{
	adminuser.RoleSuperAdmin: {Wildcard},
	adminuser.RoleAdmin: {
		"view:dashboard",
		"view:products",
		"edit:products",
		"delete:products",
		"create:products",
		"view:orders",
		"edit:orders",
		"view:customers",
		"edit:customers",
		"view:analytics",
		"view:settings",
		"edit:settings",
		"view:admin_users",
		"create:admin_users",
		"edit:admin_users",
		"delete:admin_users",
		"view:sessions",
		"terminate:sessions",
		"view:activity_logs",
		"manage:security",
	},
	adminuser.RoleEditor: {
		"view:dashboard",
		"view:products",
		"edit:products",
		"create:products",
		"view:orders",
		"edit:orders",
		"view:customers",
		"view:analytics",
	},
	adminuser.RoleViewer: {
		"view:dashboard",
		"view:products",
		"view:orders",
		"view:customers",
		"view:analytics",
	},
}

// RolePermissions returns a copy of the role's permission list.
func RolePermissions(role adminuser.Role) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// RoleHasPermission checks the static role table. The wildcard matches any
// permission string.
func RoleHasPermission(role adminuser.Role, permission string) bool {
	for _, p := range rolePermissions[role] {
		if p == Wildcard || p == permission {
			return true
		}
	}
	return false
}
