// Package authz gates mutating operations on the caller's role.
package authz

import (
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
)

// Require fails with user.ErrAccessDenied unless actual satisfies required.
// ADMIN satisfies every role.
func Require(actual, required domuser.Role) error {
	if actual == required || actual == domuser.RoleAdmin {
		return nil
	}
	return domuser.ErrAccessDenied
}

// RequireUser is Require for a loaded user.
func RequireUser(u *domuser.User, required domuser.Role) error {
	if u == nil {
		return domuser.ErrAccessDenied
	}
	return Require(u.Role, required)
}
