package user

import (
	"context"
	"errors"
	"fmt"
)

// ErrUserNotFound is returned by FindByLogin when no account has that login.
var ErrUserNotFound = errors.New("user not found")

// Repository defines the interface for user data storage.
type Repository interface {
	// FindByLogin returns ErrUserNotFound when login is unknown.
	FindByLogin(ctx context.Context, login string) (*User, error)
	// Save inserts u and assigns its ID.
	Save(ctx context.Context, u *User) error
}

// EnsureDefaults inserts DefaultUsers that are missing from repo.
func EnsureDefaults(ctx context.Context, repo Repository) error {
	for _, u := range DefaultUsers() {
		_, err := repo.FindByLogin(ctx, u.Login)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrUserNotFound) {
			return err
		}
		u := u
		if err := repo.Save(ctx, &u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Login, err)
		}
	}
	return nil
}
