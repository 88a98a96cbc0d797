package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// DemoProducts returns the sample catalog used for demos and tests.
func DemoProducts() []*Product {
	return []*Product{
		NewProduct("iPhone 15", "Apple", CategoryElectronics, decimal.RequireFromString("999.99"), "Smartphone"),
		NewProduct("Galaxy S24", "Samsung", CategoryElectronics, decimal.RequireFromString("899.99"), "Smartphone"),
		NewProduct("The Witcher", "AST", CategoryBooks, decimal.RequireFromString("19.99"), "Fantasy book"),
	}
}

// SeedDemoProducts stores DemoProducts when repo is empty and reports how many
// products it added.
func SeedDemoProducts(ctx context.Context, repo Repository) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil || n > 0 {
		return 0, err
	}
	products := DemoProducts()
	for _, p := range products {
		if _, err := repo.Save(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(products), nil
}
