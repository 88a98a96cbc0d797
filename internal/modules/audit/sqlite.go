package audit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type auditRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	Username  string    `gorm:"size:64;not null"`
	Action    string    `gorm:"size:64;not null"`
	Details   string
}

func (auditRow) TableName() string { return "audit" }

type sqliteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository creates the audit table if needed and returns a gorm-backed log.
func NewSQLiteRepository(db *gorm.DB) (Repository, error) {
	if err := db.AutoMigrate(&auditRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate audit: %w", err)
	}
	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) Save(ctx context.Context, rec Record) error {
	row := auditRow{
		CreatedAt: rec.Timestamp,
		Username:  rec.Username,
		Action:    rec.Action,
		Details:   rec.Details,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

func (r *sqliteRepository) FindAll(ctx context.Context) ([]Record, error) {
	var rows []auditRow
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			Timestamp: row.CreatedAt,
			Username:  row.Username,
			Action:    row.Action,
			Details:   row.Details,
		})
	}
	return records, nil
}
