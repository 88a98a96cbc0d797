package user

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned by ParseRole for a name that is not a Role.
var ErrUnknownRole = errors.New("unknown role")

// Role is the authorization level of a user.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleViewer Role = "VIEWER"
)

// ParseRole converts a stored role name into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleViewer:
		return r, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownRole, s)
}

// User represents an account that can log into the catalog.
// Password is an opaque credential compared by exact value.
type User struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	Password string `json:"-"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether u is non-nil and holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasRole reports whether u is non-nil and holds one of roles.
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// DefaultUsers are the accounts every fresh store starts with.
func DefaultUsers() []User {
	return []User{
		{Login: "admin", Password: "admin", Role: RoleAdmin},
		{Login: "user", Password: "user", Role: RoleViewer},
	}
}
