package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/georgemunganga/catalog-service/internal/modules/audit"
	"github.com/georgemunganga/catalog-service/internal/modules/user"
)

// ErrAuthenticationFailed is returned when the login is unknown or the password does not match.
var ErrAuthenticationFailed = errors.New("invalid credentials")

// Session tracks the authenticated principal of one client. The zero principal
// means the session is anonymous.
type Session struct {
	users  user.Repository
	audits audit.Service

	mu        sync.RWMutex
	principal *user.User
}

// NewSession creates an anonymous session.
func NewSession(users user.Repository, audits audit.Service) *Session {
	return &Session{users: users, audits: audits}
}

// Login checks the credentials and, on success, makes the user the session
// principal (replacing any previous one) and writes a LOGIN audit record.
// A failed attempt leaves the session untouched and writes nothing.
func (s *Session) Login(ctx context.Context, login, password string) (*user.User, error) {
	u, err := s.users.FindByLogin(ctx, login)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrAuthenticationFailed
	}
	if err != nil {
		return nil, err
	}
	if u.Password != password {
		return nil, ErrAuthenticationFailed
	}

	if err := s.audits.Record(ctx, u.Login, audit.ActionLogin, "User logged in"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.principal = u
	s.mu.Unlock()
	return clone(u), nil
}

// Logout clears the principal, auditing the LOGOUT when one was set.
// Calling it on an anonymous session is a no-op.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	prev := s.principal
	s.principal = nil
	s.mu.Unlock()

	if prev == nil {
		return nil
	}
	return s.audits.Record(ctx, prev.Login, audit.ActionLogout, "User logged out")
}

// IsAdmin reports whether the principal is set and has the ADMIN role.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal.IsAdmin()
}

// CurrentUser returns a copy of the principal, if any.
func (s *Session) CurrentUser() (*user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return nil, false
	}
	return clone(s.principal), true
}

func clone(u *user.User) *user.User {
	c := *u
	return &c
}
