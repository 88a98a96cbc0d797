package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a PostgreSQL-backed product store.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const productColumns = `id, name, brand, category, price, description, active`

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	var price decimal.Decimal
	if err := scan(&p.ID, &p.Name, &p.Brand, &p.Category, &price, &p.Description, &p.Active); err != nil {
		return nil, err
	}
	p.Price = decimal.NewNullDecimal(price)
	return p, nil
}

func (r *postgresRepo) Save(ctx context.Context, p *Product) (*Product, error) {
	if p.ID == 0 {
		err := r.db.QueryRowContext(ctx, `
			INSERT INTO products (name, brand, category, price, description, active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			p.Name, p.Brand, string(p.Category), p.Price, p.Description, p.Active).Scan(&p.ID)
		if err != nil {
			return nil, err
		}
		return p.Clone(), nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name=$1, brand=$2, category=$3, price=$4, description=$5, active=$6
		WHERE id=$7`,
		p.Name, p.Brand, string(p.Category), p.Price, p.Description, p.Active, p.ID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrProductNotFound
	}
	return p.Clone(), nil
}

func (r *postgresRepo) FindByID(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *postgresRepo) FindAll(ctx context.Context) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	return err
}

func (r *postgresRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}
