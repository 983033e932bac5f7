package user

import (
	"context"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin" // Views statistics, manages personnel and accounts
	RoleRater Role = "rater" // Evaluates colleagues of their department
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleRater
}

type User struct {
	ID              string
	Username        string
	Name            string
	PasswordHash    *string
	Role            Role
	Department      string
	PersonnelID     *string
	OAuthProvider   *string
	OAuthProviderID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Principal is the authenticated caller, taken from the access token.
type Principal struct {
	UserID     string
	Role       Role
	Department string
}

// IsAdmin checks if the caller is an administrator
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type principalKey struct{}

// WithPrincipal stores the authenticated caller on ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated caller stored on ctx.
func PrincipalFromContext(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, ErrUnauthenticated
	}
	return p, nil
}
