package domain

import "time"

// Role is the closed set of access levels a user can hold.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

// String returns the wire form of the role as embedded in token claims.
func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "user"
}

// ParseRole maps a claim value back onto a Role. Unknown values are rejected
// so a mistyped or forged claim never grants access by accident.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "user":
		return RoleUser, true
	case "admin":
		return RoleAdmin, true
	default:
		return RoleUser, false
	}
}

// User represents a registered customer (or administrator) of the store.
type User struct {
	ID           int64
	Login        string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role derives the access level from the persisted admin flag.
func (u *User) Role() Role {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Principal is the authenticated identity for one request, rebuilt from a
// validated token. It is never persisted.
type Principal struct {
	UserID int64
	Login  string
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
