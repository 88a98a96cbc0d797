package catalog

import (
	"context"
	"sort"
	"sync"
)

// Repository defines the interface for product data storage.
type Repository interface {
	// Save inserts p when p.ID is zero, assigning the new id, and otherwise
	// overwrites the stored product with the same id.
	Save(ctx context.Context, p *Product) (*Product, error)
	// FindByID returns ErrProductNotFound when no product has the id.
	FindByID(ctx context.Context, id int64) (*Product, error)
	// FindAll returns every product ordered by id.
	FindAll(ctx context.Context) ([]*Product, error)
	DeleteByID(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type memoryRepository struct {
	mu       sync.RWMutex
	products map[int64]Product
	seq      int64
}

// NewMemoryRepository creates an empty in-process product store.
func NewMemoryRepository() Repository {
	return &memoryRepository{products: make(map[int64]Product)}
}

func (r *memoryRepository) Save(_ context.Context, p *Product) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		r.seq++
		p.ID = r.seq
	} else if _, ok := r.products[p.ID]; !ok {
		return nil, ErrProductNotFound
	}
	r.products[p.ID] = *p
	return p.Clone(), nil
}

func (r *memoryRepository) FindByID(_ context.Context, id int64) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (r *memoryRepository) FindAll(_ context.Context) ([]*Product, error) {
	r.mu.RLock()
	out := make([]*Product, 0, len(r.products))
	for _, p := range r.products {
		p := p
		out = append(out, &p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	delete(r.products, id)
	r.mu.Unlock()
	return nil
}

func (r *memoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}
