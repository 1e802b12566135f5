// Package authz implements role-based access control over a static
// role-to-permission table built once at startup.
package authz

import "github.com/moling/userservice/types"

// Permission is an atomic capability a protected operation requires.
type Permission string

const (
	PermUserReadSelf  Permission = "user:read:self"
	PermUserManageAny Permission = "user:manage:any"
	PermAvatarUpload  Permission = "avatar:upload"
	PermAvatarRead    Permission = "avatar:read"
)

// Table maps roles to their permission sets. It is read-only after
// construction and safe for unsynchronized concurrent reads.
type Table map[string]map[Permission]struct{}

// DefaultTable builds the deploy-time role table.
func DefaultTable() Table {
	return build(map[string][]Permission{
		types.RoleAdmin: {
			PermUserReadSelf,
			PermUserManageAny,
			PermAvatarUpload,
			PermAvatarRead,
		},
		types.RoleUser: {
			PermUserReadSelf,
			PermAvatarUpload,
			PermAvatarRead,
		},
		types.RoleGuest: {
			PermAvatarRead,
		},
	})
}

func build(grants map[string][]Permission) Table {
	t := make(Table, len(grants))
	for role, perms := range grants {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		t[role] = set
	}
	return t
}

// Authorize reports whether the role holds the required permission. Unknown
// roles and unknown permissions always deny.
func (t Table) Authorize(role string, required Permission) bool {
	perms, ok := t[role]
	if !ok {
		return false
	}
	_, ok = perms[required]
	return ok
}
