package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// userRow is the gorm model behind the sqlite store.
type userRow struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Login    string `gorm:"size:64;not null;uniqueIndex"`
	Password string `gorm:"size:255;not null"`
	Role     string `gorm:"size:16;not null"`
}

func (userRow) TableName() string { return "users" }

type sqliteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository creates the users table if needed and returns a gorm-backed store.
func NewSQLiteRepository(db *gorm.DB) (Repository, error) {
	if err := db.AutoMigrate(&userRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate users: %w", err)
	}
	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) FindByLogin(ctx context.Context, login string) (*User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).First(&row, "login = ?", login).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	role, err := ParseRole(row.Role)
	if err != nil {
		return nil, err
	}
	return &User{ID: row.ID, Login: row.Login, Password: row.Password, Role: role}, nil
}

func (r *sqliteRepository) Save(ctx context.Context, u *User) error {
	row := userRow{Login: u.Login, Password: u.Password, Role: string(u.Role)}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.ID = row.ID
	return nil
}
