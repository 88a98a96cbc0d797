package user

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrLoginTaken is returned when registering a login that already exists.
	ErrLoginTaken = errors.New("login already taken")
	// ErrInvalidAccount is returned for a blank login or password.
	ErrInvalidAccount = errors.New("login and password must not be blank")
)

// Service defines the interface for user-related business logic.
type Service interface {
	RegisterUser(ctx context.Context, login, password string, role Role) (*User, error)
	GetUser(ctx context.Context, login string) (*User, error)
}

type service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) RegisterUser(ctx context.Context, login, password string, role Role) (*User, error) {
	login = strings.TrimSpace(login)
	if login == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidAccount
	}
	role, err := ParseRole(string(role))
	if err != nil {
		return nil, err
	}

	_, err = s.repo.FindByLogin(ctx, login)
	if err == nil {
		return nil, ErrLoginTaken
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user := &User{Login: login, Password: password, Role: role}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) GetUser(ctx context.Context, login string) (*User, error) {
	return s.repo.FindByLogin(ctx, login)
}
