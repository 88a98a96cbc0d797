package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/georgemunganga/catalog-service/internal/modules/audit"
	"github.com/georgemunganga/catalog-service/internal/modules/metrics"
	"github.com/georgemunganga/catalog-service/internal/modules/user"
)

// Validation failure reasons, in the order the rules are checked.
const (
	ReasonNameBlank       = "product name must not be blank"
	ReasonCategoryMissing = "product category must be set"
	ReasonCategoryUnknown = "product category is unknown"
	ReasonPriceMissing    = "product price must be set"
	ReasonPriceNegative   = "product price must not be negative"
)

// Service defines catalog business logic. Mutations require an ADMIN actor
// and return ErrForbidden otherwise, before touching any state.
type Service interface {
	Create(ctx context.Context, p *Product, actor *user.User) (*Product, error)
	// Update replaces the mutable fields of product id. The bool is false when
	// no such product exists.
	Update(ctx context.Context, id int64, replacement *Product, actor *user.User) (*Product, bool, error)
	// Delete reports whether a product was removed.
	Delete(ctx context.Context, id int64, actor *user.User) (bool, error)
	FindAll(ctx context.Context) ([]*Product, error)
	FindByID(ctx context.Context, id int64) (*Product, bool, error)
	Count(ctx context.Context) (int64, error)
	// Search returns the products matching every criterion of f, consulting
	// the search cache first.
	Search(ctx context.Context, f Filter) ([]*Product, error)
}

type service struct {
	repo    Repository
	audits  audit.Service
	metrics *metrics.Tracker
	log     *zap.Logger

	// mu serializes mutations with every cache read, fill and invalidation.
	mu    sync.Mutex
	cache *SearchCache
}

// NewService creates a new catalog service. A nil cache gets a default-sized one.
func NewService(repo Repository, audits audit.Service, tracker *metrics.Tracker, cache *SearchCache, log *zap.Logger) Service {
	if cache == nil {
		cache = NewSearchCache(DefaultCacheSize)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		repo:    repo,
		audits:  audits,
		metrics: tracker,
		log:     log.Named("catalog"),
		cache:   cache,
	}
}

func (s *service) Create(ctx context.Context, p *Product, actor *user.User) (*Product, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	candidate := &Product{}
	if p != nil {
		candidate = p.Clone()
		candidate.ID = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate(ctx, candidate, actor); err != nil {
		return nil, err
	}
	saved, err := s.repo.Save(ctx, candidate)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateAll()
	if err := s.audits.Record(ctx, actor.Login, audit.ActionCreateProduct, idDetails(saved.ID)); err != nil {
		return nil, err
	}
	s.metrics.RecordCreate()
	return saved, nil
}

func (s *service) Update(ctx context.Context, id int64, replacement *Product, actor *user.User) (*Product, bool, error) {
	if !actor.IsAdmin() {
		return nil, false, ErrForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrProductNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if replacement == nil {
		replacement = &Product{}
	}
	candidate := existing.Clone()
	candidate.Name = replacement.Name
	candidate.Brand = replacement.Brand
	candidate.Category = replacement.Category
	candidate.Price = replacement.Price
	candidate.Description = replacement.Description

	if err := s.validate(ctx, candidate, actor); err != nil {
		return nil, true, err
	}
	saved, err := s.repo.Save(ctx, candidate)
	if err != nil {
		return nil, true, err
	}
	s.cache.InvalidateAll()
	if err := s.audits.Record(ctx, actor.Login, audit.ActionUpdateProduct, idDetails(id)); err != nil {
		return nil, true, err
	}
	s.metrics.RecordUpdate()
	return saved, true, nil
}

func (s *service) Delete(ctx context.Context, id int64, actor *user.User) (bool, error) {
	if !actor.IsAdmin() {
		return false, ErrForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrProductNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return false, err
	}
	s.cache.InvalidateAll()
	if err := s.audits.Record(ctx, actor.Login, audit.ActionDeleteProduct, idDetails(id)); err != nil {
		return false, err
	}
	s.metrics.RecordDelete()
	return true, nil
}

func (s *service) FindAll(ctx context.Context) ([]*Product, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) FindByID(ctx context.Context, id int64) (*Product, bool, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrProductNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *service) Search(ctx context.Context, f Filter) ([]*Product, error) {
	started := time.Now()
	key := f.Key()

	s.mu.Lock()
	result, hit := s.cache.Lookup(key)
	if !hit {
		all, err := s.repo.FindAll(ctx)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		result = make([]*Product, 0, len(all))
		for _, p := range all {
			if f.Matches(p) {
				result = append(result, p)
			}
		}
		s.cache.Store(key, result)
	}
	s.mu.Unlock()

	s.metrics.RecordSearch(time.Since(started), hit)
	s.log.Debug("search",
		zap.String("key", key),
		zap.Bool("cache_hit", hit),
		zap.Int("results", len(result)),
	)
	return result, nil
}

// validate applies the product rules in order and stops at the first failure,
// which is audited under the actor's login. Must be called with s.mu held.
func (s *service) validate(ctx context.Context, p *Product, actor *user.User) error {
	reason := validationReason(p)
	if reason == "" {
		return nil
	}
	s.log.Info("product rejected", zap.String("actor", actor.Login), zap.String("reason", reason))
	if err := s.audits.Record(ctx, actor.Login, audit.ActionProductValidationError, reason); err != nil {
		return err
	}
	return &ValidationError{Reason: reason}
}

func validationReason(p *Product) string {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return ReasonNameBlank
	case p.Category == "":
		return ReasonCategoryMissing
	case !p.Category.Valid():
		return ReasonCategoryUnknown
	case !p.Price.Valid:
		return ReasonPriceMissing
	case p.Price.Decimal.IsNegative():
		return ReasonPriceNegative
	}
	return ""
}

func idDetails(id int64) string {
	return "id=" + strconv.FormatInt(id, 10)
}
