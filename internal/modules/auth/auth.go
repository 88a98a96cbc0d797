package auth

import (
	"context"
	"time"

	"github.com/georgemunganga/catalog-service/internal/modules/user"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login authenticates a new session and returns a bearer token bound to it.
	Login(ctx context.Context, login, password string) (string, *user.User, error)
	// Resolve returns the live session a token was issued for.
	Resolve(token string) (*Session, error)
	// Logout ends the session behind token. Unknown tokens are ignored.
	Logout(ctx context.Context, token string) error
}

// Config holds token and session settings.
type Config struct {
	Secret      string
	Issuer      string
	TokenTTL    time.Duration
	MaxSessions int
}
