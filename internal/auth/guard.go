package auth

import (
	"errors"

	"web-store/internal/domain"
)

var (
	// ErrForbidden indicates the principal lacks the role an operation requires.
	ErrForbidden = errors.New("insufficient role")
	// ErrOwnershipMismatch indicates the principal is not the owner of the
	// resource it tries to act on.
	ErrOwnershipMismatch = errors.New("resource owned by another user")
)

// RequireRole checks the principal against the required role. Administrators
// satisfy every role.
func RequireRole(p domain.Principal, required domain.Role) error {
	if p.Role == required || p.Role == domain.RoleAdmin {
		return nil
	}
	return ErrForbidden
}

// RequireOwner checks that the principal is the owner of a resource. The
// owner id must come from the server side; a client-declared owner is only
// ever compared against this, never trusted.
func RequireOwner(p domain.Principal, ownerID int64) error {
	if p.UserID == ownerID {
		return nil
	}
	return ErrOwnershipMismatch
}
