package audit

import (
	"context"
	"database/sql"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a PostgreSQL-backed audit log.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Save(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit (created_at, username, action, details)
		VALUES ($1, $2, $3, $4)`,
		rec.Timestamp, rec.Username, rec.Action, rec.Details)
	return err
}

func (r *postgresRepo) FindAll(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_at, username, action, details
		FROM audit ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Timestamp, &rec.Username, &rec.Action, &rec.Details); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
