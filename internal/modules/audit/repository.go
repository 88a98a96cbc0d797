package audit

import (
	"context"
	"sync"
)

// Repository is an append-only store of audit records.
type Repository interface {
	Save(ctx context.Context, rec Record) error
	// FindAll returns every record in insertion order.
	FindAll(ctx context.Context) ([]Record, error)
}

type memoryRepository struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryRepository creates an in-process audit log.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Save(_ context.Context, rec Record) error {
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
	return nil
}

func (r *memoryRepository) FindAll(_ context.Context) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out, nil
}
