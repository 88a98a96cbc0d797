package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// productRow is the gorm model behind the sqlite store. Prices are kept as
// text so sqlite's numeric affinity cannot round them.
type productRow struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"size:255;not null"`
	Brand       string          `gorm:"size:255;not null;default:''"`
	Category    string          `gorm:"size:32;not null;index"`
	Price       decimal.Decimal `gorm:"type:text;not null"`
	Description string          `gorm:"not null;default:''"`
	Active      bool            `gorm:"not null"`
}

func (productRow) TableName() string { return "products" }

func toRow(p *Product) productRow {
	return productRow{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    string(p.Category),
		Price:       p.Price.Decimal,
		Description: p.Description,
		Active:      p.Active,
	}
}

func (row productRow) toProduct() *Product {
	return &Product{
		ID:          row.ID,
		Name:        row.Name,
		Brand:       row.Brand,
		Category:    Category(row.Category),
		Price:       decimal.NewNullDecimal(row.Price),
		Description: row.Description,
		Active:      row.Active,
	}
}

type sqliteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository creates the products table if needed and returns a gorm-backed store.
func NewSQLiteRepository(db *gorm.DB) (Repository, error) {
	if err := db.AutoMigrate(&productRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate products: %w", err)
	}
	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) Save(ctx context.Context, p *Product) (*Product, error) {
	row := toRow(p)
	if row.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to create product: %w", err)
		}
		p.ID = row.ID
		return p.Clone(), nil
	}

	// Select("*") writes zero values such as Active=false and an empty brand.
	res := r.db.WithContext(ctx).Model(&productRow{ID: row.ID}).Select("*").Updates(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}
	return p.Clone(), nil
}

func (r *sqliteRepository) FindByID(ctx context.Context, id int64) (*Product, error) {
	var row productRow
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return row.toProduct(), nil
}

func (r *sqliteRepository) FindAll(ctx context.Context) ([]*Product, error) {
	var rows []productRow
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products := make([]*Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toProduct())
	}
	return products, nil
}

func (r *sqliteRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&productRow{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (r *sqliteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&productRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}
