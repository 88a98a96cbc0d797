package user

import (
	"context"
	"database/sql"
	"errors"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Save(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (login, password, role)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query, u.Login, u.Password, string(u.Role)).Scan(&u.ID)
}

func (r *postgresRepository) FindByLogin(ctx context.Context, login string) (*User, error) {
	query := `
		SELECT id, login, password, role
		FROM users
		WHERE login = $1
	`
	u := &User{}
	var role string
	err := r.db.QueryRowContext(ctx, query, login).Scan(&u.ID, &u.Login, &u.Password, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.Role, err = ParseRole(role); err != nil {
		return nil, err
	}
	return u, nil
}
