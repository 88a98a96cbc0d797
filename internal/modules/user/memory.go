package user

import (
	"context"
	"fmt"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byLogin map[string]User
	seq     int64
}

// NewMemoryRepository creates an in-process user store seeded with DefaultUsers.
func NewMemoryRepository() Repository {
	r := &memoryRepository{byLogin: make(map[string]User)}
	if err := r.seed(DefaultUsers()); err != nil {
		panic(err)
	}
	return r
}

func (r *memoryRepository) seed(users []User) error {
	for _, u := range users {
		u := u
		if err := r.Save(context.Background(), &u); err != nil {
			return fmt.Errorf("seed user %q: %w", u.Login, err)
		}
	}
	return nil
}

func (r *memoryRepository) FindByLogin(_ context.Context, login string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byLogin[login]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *memoryRepository) Save(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byLogin[u.Login]; exists {
		return fmt.Errorf("%w: %s", ErrLoginTaken, u.Login)
	}
	r.seq++
	u.ID = r.seq
	r.byLogin[u.Login] = *u
	return nil
}
