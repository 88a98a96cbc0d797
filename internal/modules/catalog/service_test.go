package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/catalog-service/internal/modules/audit"
	"github.com/georgemunganga/catalog-service/internal/modules/metrics"
	"github.com/georgemunganga/catalog-service/internal/modules/user"
)

var (
	admin  = &user.User{ID: 1, Login: "admin", Role: user.RoleAdmin}
	viewer = &user.User{ID: 2, Login: "user", Role: user.RoleViewer}
)

type fixture struct {
	svc     Service
	repo    Repository
	audits  audit.Service
	metrics *metrics.Tracker
	cache   *SearchCache
}

func newFixture(t *testing.T, repo Repository) *fixture {
	t.Helper()
	f := &fixture{
		repo:    repo,
		audits:  audit.NewService(audit.NewMemoryRepository(), nil),
		metrics: metrics.NewTracker(nil),
		cache:   NewSearchCache(16),
	}
	f.svc = NewService(f.repo, f.audits, f.metrics, f.cache, nil)
	return f
}

// newSeededFixture stores the demo products through the service as admin.
func newSeededFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, NewMemoryRepository())
	for _, p := range DemoProducts() {
		_, err := f.svc.Create(context.Background(), p, admin)
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) auditLog(t *testing.T) []audit.Record {
	t.Helper()
	records, err := f.audits.FindAll(context.Background())
	require.NoError(t, err)
	return records
}

func (f *fixture) lastAudit(t *testing.T) audit.Record {
	t.Helper()
	records := f.auditLog(t)
	require.NotEmpty(t, records)
	return records[len(records)-1]
}

func (f *fixture) count(t *testing.T) int64 {
	t.Helper()
	n, err := f.svc.Count(context.Background())
	require.NoError(t, err)
	return n
}

func names(products []*Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestService_ExampleScenario(t *testing.T) {
	ctx := context.Background()
	f := newSeededFixture(t)

	result, err := f.svc.Search(ctx, Filter{Category: CategoryElectronics, Brand: "Apple", MinPrice: price("900")})
	require.NoError(t, err)
	assert.Equal(t, []string{"iPhone 15"}, names(result))

	first, err := f.svc.Search(ctx, Filter{Text: "witcher"})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, CategoryBooks, first[0].Category)
	assert.Zero(t, f.metrics.CacheHitCount())

	second, err := f.svc.Search(ctx, Filter{Text: "witcher"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, f.metrics.CacheHitCount())
	assert.EqualValues(t, 3, f.metrics.SearchCount())
	assert.InDelta(t, 1.0/3.0, f.metrics.CacheHitRatio(), 1e-9)
}

func TestService_FilterConjunction(t *testing.T) {
	ctx := context.Background()
	f := newSeededFixture(t)

	result, err := f.svc.Search(ctx, Filter{Category: CategoryElectronics, MinPrice: price("900")})
	require.NoError(t, err)
	for _, p := range result {
		assert.Equal(t, CategoryElectronics, p.Category)
		assert.True(t, p.Price.Decimal.GreaterThanOrEqual(decimal.NewFromInt(900)))
	}
	assert.Equal(t, []string{"iPhone 15"}, names(result))

	result, err = f.svc.Search(ctx, Filter{Category: CategoryElectronics, MaxPrice: price("899.99")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Galaxy S24"}, names(result))

	result, err = f.svc.Search(ctx, Filter{Text: "smartphone", Brand: "samsung"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Galaxy S24"}, names(result))

	result, err = f.svc.Search(ctx, Filter{Category: CategoryBeauty})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestService_CreateValidation(t *testing.T) {
	valid := func() *Product {
		return NewProduct("Lamp", "Ikea", CategoryHome, decimal.NewFromInt(10), "")
	}
	tests := []struct {
		name   string
		mutate func(p *Product)
		reason string
	}{
		{"blank name", func(p *Product) { p.Name = "  " }, ReasonNameBlank},
		{"missing category", func(p *Product) { p.Category = "" }, ReasonCategoryMissing},
		{"unknown category", func(p *Product) { p.Category = "TOYS" }, ReasonCategoryUnknown},
		{"missing price", func(p *Product) { p.Price = decimal.NullDecimal{} }, ReasonPriceMissing},
		{"negative price", func(p *Product) { p.Price = price("-0.01") }, ReasonPriceNegative},
		{"first rule wins", func(p *Product) {
			p.Name = ""
			p.Category = ""
			p.Price = price("-1")
		}, ReasonNameBlank},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newSeededFixture(t)
			_, err := f.svc.Search(ctx, Filter{Category: CategoryHome})
			require.NoError(t, err)
			require.Equal(t, 1, f.cache.Len())

			p := valid()
			tt.mutate(p)
			saved, err := f.svc.Create(ctx, p, admin)

			assert.Nil(t, saved)
			assert.ErrorIs(t, err, ErrValidationFailed)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.reason, verr.Reason)

			assert.EqualValues(t, 3, f.count(t))
			assert.Equal(t, 1, f.cache.Len(), "failed create must not invalidate the cache")
			assert.EqualValues(t, 3, f.metrics.CreateCount())

			last := f.lastAudit(t)
			assert.Equal(t, audit.ActionProductValidationError, last.Action)
			assert.Equal(t, "admin", last.Username)
			assert.Equal(t, tt.reason, last.Details)
		})
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, NewMemoryRepository())

	p := NewProduct("MacBook", "Apple", CategoryElectronics, decimal.RequireFromString("1999.00"), "Laptop")
	saved, err := f.svc.Create(ctx, p, admin)
	require.NoError(t, err)

	assert.NotZero(t, saved.ID)
	assert.Zero(t, p.ID, "the caller's product is not modified")
	assert.True(t, saved.Active)
	assert.EqualValues(t, 1, f.metrics.CreateCount())
	assert.EqualValues(t, 1, f.count(t))

	last := f.lastAudit(t)
	assert.Equal(t, audit.ActionCreateProduct, last.Action)
	assert.Equal(t, "id=1", last.Details)

	stored, found, err := f.svc.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, stored.Equal(saved))
	assert.Equal(t, "MacBook", stored.Name)

	// a caller-supplied id is ignored, the repository assigns one
	again, err := f.svc.Create(ctx, &Product{ID: 42, Name: "Mouse", Category: CategoryElectronics, Price: price("10")}, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 2, again.ID)
}

func TestService_MutationsRequireAdmin(t *testing.T) {
	ctx := context.Background()
	for name, actor := range map[string]*user.User{"anonymous": nil, "viewer": viewer} {
		t.Run(name, func(t *testing.T) {
			f := newSeededFixture(t)
			before := len(f.auditLog(t))

			_, err := f.svc.Create(ctx, &Product{}, actor)
			assert.ErrorIs(t, err, ErrForbidden)

			_, _, err = f.svc.Update(ctx, 1, &Product{Name: "x", Category: CategoryHome, Price: price("1")}, actor)
			assert.ErrorIs(t, err, ErrForbidden)

			deleted, err := f.svc.Delete(ctx, 1, actor)
			assert.ErrorIs(t, err, ErrForbidden)
			assert.False(t, deleted)

			assert.Len(t, f.auditLog(t), before, "a forbidden call writes no audit record")
			assert.EqualValues(t, 3, f.count(t))
			assert.EqualValues(t, 0, f.metrics.UpdateCount())
			assert.EqualValues(t, 0, f.metrics.DeleteCount())
		})
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	f := newSeededFixture(t)
	_, err := f.svc.Search(ctx, Filter{Brand: "apple"})
	require.NoError(t, err)

	existing, found, err := f.svc.FindByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)

	replacement := &Product{
		ID:          77,
		Name:        "iPhone 15 Pro",
		Brand:       "Apple",
		Category:    CategoryElectronics,
		Price:       price("1099.99"),
		Description: "",
		Active:      false,
	}
	updated, found, err := f.svc.Update(ctx, existing.ID, replacement, admin)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, existing.ID, updated.ID)
	assert.Equal(t, "iPhone 15 Pro", updated.Name)
	assert.Empty(t, updated.Description)
	assert.True(t, updated.Active, "active is not one of the replaced fields")
	assert.True(t, updated.Price.Decimal.Equal(decimal.RequireFromString("1099.99")))
	assert.Zero(t, f.cache.Len())
	assert.EqualValues(t, 1, f.metrics.UpdateCount())

	last := f.lastAudit(t)
	assert.Equal(t, audit.ActionUpdateProduct, last.Action)
	assert.Equal(t, "id=1", last.Details)

	result, err := f.svc.Search(ctx, Filter{Brand: "apple"})
	require.NoError(t, err)
	assert.Equal(t, []string{"iPhone 15 Pro"}, names(result))
}

func TestService_UpdateValidationLeavesStoredProduct(t *testing.T) {
	ctx := context.Background()
	f := newSeededFixture(t)
	_, err := f.svc.Search(ctx, Filter{})
	require.NoError(t, err)

	_, found, err := f.svc.Update(ctx, 1, &Product{Name: "Renamed", Category: CategoryElectronics, Price: price("-5")}, admin)
	assert.True(t, found)
	assert.ErrorIs(t, err, ErrValidationFailed)

	stored, _, err := f.svc.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "iPhone 15", stored.Name)
	assert.True(t, stored.Price.Decimal.Equal(decimal.RequireFromString("999.99")))

	assert.Equal(t, 1, f.cache.Len())
	assert.Zero(t, f.metrics.UpdateCount())
	last := f.lastAudit(t)
	assert.Equal(t, audit.ActionProductValidationError, last.Action)
	assert.Equal(t, ReasonPriceNegative, last.Details)
}

func TestService_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, NewMemoryRepository())

	updated, found, err := f.svc.Update(ctx, 999, &Product{}, admin)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, updated)

	deleted, err := f.svc.Delete(ctx, 999, admin)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, found, err = f.svc.FindByID(ctx, 999)
	require.NoError(t, err)
	assert.False(t, found)

	assert.Empty(t, f.auditLog(t), "an invalid replacement for a missing id is not validated")
	assert.Zero(t, f.metrics.UpdateCount())
	assert.Zero(t, f.metrics.DeleteCount())
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newSeededFixture(t)
	_, err := f.svc.Search(ctx, Filter{Category: CategoryBooks})
	require.NoError(t, err)

	deleted, err := f.svc.Delete(ctx, 3, admin)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Zero(t, f.cache.Len())
	assert.EqualValues(t, 1, f.metrics.DeleteCount())
	assert.EqualValues(t, 2, f.count(t))

	last := f.lastAudit(t)
	assert.Equal(t, audit.ActionDeleteProduct, last.Action)
	assert.Equal(t, "id=3", last.Details)

	result, err := f.svc.Search(ctx, Filter{Category: CategoryBooks})
	require.NoError(t, err)
	assert.Empty(t, result)

	deleted, err = f.svc.Delete(ctx, 3, admin)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.EqualValues(t, 1, f.metrics.DeleteCount())
}

func TestService_SearchCache(t *testing.T) {
	ctx := context.Background()
	f := newSeededFixture(t)
	filter := Filter{Category: CategoryElectronics}

	first, err := f.svc.Search(ctx, filter)
	require.NoError(t, err)
	first[0].Name = "tampered"

	for i := 0; i < 3; i++ {
		again, err := f.svc.Search(ctx, Filter{Category: CategoryElectronics, Brand: "  "})
		require.NoError(t, err)
		assert.Equal(t, []string{"iPhone 15", "Galaxy S24"}, names(again))
	}
	assert.EqualValues(t, 4, f.metrics.SearchCount())
	assert.EqualValues(t, 3, f.metrics.CacheHitCount())
	assert.GreaterOrEqual(t, f.metrics.AverageSearchTimeMillis(), 0.0)
}

func TestService_SearchKeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	f := newSeededFixture(t)

	electronics, err := f.svc.Search(ctx, Filter{Category: CategoryElectronics})
	require.NoError(t, err)
	require.Len(t, electronics, 2)

	underscore, err := f.svc.Search(ctx, Filter{Category: CategoryElectronics, Text: "_"})
	require.NoError(t, err)
	assert.Empty(t, underscore)
	assert.Zero(t, f.metrics.CacheHitCount())

	_, err = f.svc.Create(ctx, NewProduct("Odd", "x|_|_|a", CategoryHome, decimal.NewFromInt(1), ""), admin)
	require.NoError(t, err)

	shifted, err := f.svc.Search(ctx, Filter{Brand: "x", Text: "a|_|_|_"})
	require.NoError(t, err)
	assert.Empty(t, shifted)

	pipes, err := f.svc.Search(ctx, Filter{Brand: "x|_|_|a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Odd"}, names(pipes))
	assert.Zero(t, f.metrics.CacheHitCount())
}

func TestService_MutationsInvalidateCache(t *testing.T) {
	ctx := context.Background()
	f := newSeededFixture(t)
	filter := Filter{Category: CategoryElectronics}

	search := func() []string {
		t.Helper()
		result, err := f.svc.Search(ctx, filter)
		require.NoError(t, err)
		return names(result)
	}

	search()
	hits := f.metrics.CacheHitCount()

	created, err := f.svc.Create(ctx, NewProduct("Pixel 9", "Google", CategoryElectronics, decimal.NewFromInt(799), ""), admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"iPhone 15", "Galaxy S24", "Pixel 9"}, search())
	assert.Equal(t, hits, f.metrics.CacheHitCount(), "search after create recomputes")

	_, _, err = f.svc.Update(ctx, created.ID, NewProduct("Pixel 9 Pro", "Google", CategoryElectronics, decimal.NewFromInt(999), ""), admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"iPhone 15", "Galaxy S24", "Pixel 9 Pro"}, search())
	assert.Equal(t, hits, f.metrics.CacheHitCount(), "search after update recomputes")

	_, err = f.svc.Delete(ctx, created.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"iPhone 15", "Galaxy S24"}, search())
	assert.Equal(t, hits, f.metrics.CacheHitCount(), "search after delete recomputes")
}

func TestService_MetricsCountOnlySuccesses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, NewMemoryRepository())

	const creates, updates, deletes = 5, 3, 2
	ids := make([]int64, 0, creates)
	for i := 0; i < creates; i++ {
		p, err := f.svc.Create(ctx, NewProduct("item", "", CategoryHome, decimal.NewFromInt(int64(i)), ""), admin)
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	_, _ = f.svc.Create(ctx, &Product{}, admin)

	for i := 0; i < updates; i++ {
		_, found, err := f.svc.Update(ctx, ids[i], NewProduct("renamed", "", CategoryHome, decimal.NewFromInt(1), ""), admin)
		require.NoError(t, err)
		require.True(t, found)
	}
	_, _, _ = f.svc.Update(ctx, 12345, NewProduct("x", "", CategoryHome, decimal.NewFromInt(1), ""), admin)

	for i := 0; i < deletes; i++ {
		ok, err := f.svc.Delete(ctx, ids[i], admin)
		require.NoError(t, err)
		require.True(t, ok)
	}
	_, _ = f.svc.Delete(ctx, ids[0], admin)

	assert.EqualValues(t, creates, f.metrics.CreateCount())
	assert.EqualValues(t, updates, f.metrics.UpdateCount())
	assert.EqualValues(t, deletes, f.metrics.DeleteCount())
	assert.Zero(t, f.metrics.SearchCount())
}

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Save(ctx context.Context, p *Product) (*Product, error) {
	args := m.Called(ctx, p)
	saved, _ := args.Get(0).(*Product)
	return saved, args.Error(1)
}

func (m *mockRepo) FindByID(ctx context.Context, id int64) (*Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*Product)
	return p, args.Error(1)
}

func (m *mockRepo) FindAll(ctx context.Context) ([]*Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]*Product)
	return products, args.Error(1)
}

func (m *mockRepo) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestService_RepositoryFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")

	t.Run("search", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("FindAll", mock.Anything).Return(nil, boom)
		f := newFixture(t, repo)

		_, err := f.svc.Search(ctx, Filter{Text: "x"})
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, f.cache.Len(), "a failed search caches nothing")
		assert.Zero(t, f.metrics.SearchCount())
		repo.AssertExpectations(t)
	})

	t.Run("create", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("Save", mock.Anything, mock.Anything).Return(nil, boom)
		f := newFixture(t, repo)
		f.cache.Store("k", nil)

		_, err := f.svc.Create(ctx, NewProduct("a", "", CategoryHome, decimal.NewFromInt(1), ""), admin)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, f.cache.Len())
		assert.Empty(t, f.auditLog(t))
		assert.Zero(t, f.metrics.CreateCount())
	})

	t.Run("update lookup", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("FindByID", mock.Anything, int64(1)).Return(nil, boom)
		f := newFixture(t, repo)

		_, found, err := f.svc.Update(ctx, 1, &Product{}, admin)
		assert.ErrorIs(t, err, boom)
		assert.False(t, found)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("delete", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("FindByID", mock.Anything, int64(1)).Return(&Product{ID: 1}, nil)
		repo.On("DeleteByID", mock.Anything, int64(1)).Return(boom)
		f := newFixture(t, repo)

		deleted, err := f.svc.Delete(ctx, 1, admin)
		assert.ErrorIs(t, err, boom)
		assert.False(t, deleted)
		assert.Zero(t, f.metrics.DeleteCount())
	})

	t.Run("find by id is not masked as not found", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("FindByID", mock.Anything, int64(9)).Return(nil, boom)
		f := newFixture(t, repo)

		_, found, err := f.svc.FindByID(ctx, 9)
		assert.ErrorIs(t, err, boom)
		assert.False(t, found)
	})
}

func TestService_ConcurrentMutationsAndSearches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, NewMemoryRepository())
	filter := Filter{Category: CategoryHome}

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := f.svc.Create(ctx, NewProduct("chair", "", CategoryHome, decimal.NewFromInt(1), ""), admin)
				assert.NoError(t, err)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := f.svc.Search(ctx, filter)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	result, err := f.svc.Search(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, result, writers*perWriter, "no stale entry survives the last mutation")
	assert.EqualValues(t, writers*perWriter, f.metrics.CreateCount())
	assert.EqualValues(t, writers*perWriter+1, f.metrics.SearchCount())
}
