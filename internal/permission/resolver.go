package permission

import (
	"fmt"
	"sort"

	"github.com/commercemobile/storefront-admin/internal/adminuser"
)

// GroupPermissionSource yields the union of permissions granted through
// group membership.
type GroupPermissionSource interface {
	PermissionsForUser(userID string) ([]string, error)
}

// Resolver answers "can this user do X" by combining the static role table
// with dynamic group grants. Composition is a logical OR: a group can add
// capabilities but can never revoke one the role already grants.
type Resolver struct {
	groups GroupPermissionSource
}

func NewResolver(groups GroupPermissionSource) *Resolver {
	return &Resolver{groups: groups}
}

func (r *Resolver) HasPermission(user *adminuser.AdminUser, permission string) (bool, error) {
	if user == nil {
		return false, nil
	}
	if RoleHasPermission(user.Role, permission) {
		return true, nil
	}
	if r.groups == nil {
		return false, nil
	}

	groupPerms, err := r.groups.PermissionsForUser(user.ID)
	if err != nil {
		return false, fmt.Errorf("resolve group permissions: %w", err)
	}
	for _, p := range groupPerms {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

// EffectivePermissions returns the sorted union of role and group
// permissions. A wildcard-holding role yields just the wildcard entry.
func (r *Resolver) EffectivePermissions(user *adminuser.AdminUser) ([]string, error) {
	if user == nil {
		return nil, nil
	}

	rolePerms := RolePermissions(user.Role)
	for _, p := range rolePerms {
		if p == Wildcard {
			return []string{Wildcard}, nil
		}
	}

	set := make(map[string]struct{}, len(rolePerms))
	for _, p := range rolePerms {
		set[p] = struct{}{}
	}

	if r.groups != nil {
		groupPerms, err := r.groups.PermissionsForUser(user.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve group permissions: %w", err)
		}
		for _, p := range groupPerms {
			set[p] = struct{}{}
		}
	}

	perms := make([]string, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms, nil
}
