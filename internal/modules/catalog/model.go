package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the closed set of product categories.
type Category string

const (
	CategoryElectronics Category = "ELECTRONICS"
	CategoryClothes     Category = "CLOTHES"
	CategoryBooks       Category = "BOOKS"
	CategoryHome        Category = "HOME"
	CategoryBeauty      Category = "BEAUTY"
)

// Categories lists every valid category in declaration order.
func Categories() []Category {
	return []Category{CategoryElectronics, CategoryClothes, CategoryBooks, CategoryHome, CategoryBeauty}
}

// ParseCategory accepts a category name in any letter case. The empty string
// parses to the empty (absent) category.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if c := Category(strings.ToUpper(s)); c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Product is an item in the catalog. ID is zero until the repository has
// stored it; an empty Brand, Description or Category means the value is absent.
type Product struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Brand       string              `json:"brand,omitempty"`
	Category    Category            `json:"category"`
	Price       decimal.NullDecimal `json:"price"`
	Description string              `json:"description,omitempty"`
	Active      bool                `json:"active"`
}

// NewProduct returns an active product with the given fields set.
func NewProduct(name, brand string, category Category, price decimal.Decimal, description string) *Product {
	return &Product{
		Name:        name,
		Brand:       brand,
		Category:    category,
		Price:       decimal.NewNullDecimal(price),
		Description: description,
		Active:      true,
	}
}

// Equal reports identity equality: both products carry the same non-zero id.
// A product without an id is equal only to itself.
func (p *Product) Equal(other *Product) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.ID == 0 || other.ID == 0 {
		return p == other
	}
	return p.ID == other.ID
}

// Clone returns a copy of p that shares no state with it.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
