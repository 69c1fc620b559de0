package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	evbus "github.com/asaskevich/EventBus"

	"github.com/wichananm65/able-backend/internal/domain"
	"github.com/wichananm65/able-backend/internal/source"
)

// countingSource wraps the fixtures and records how often each kind is fetched.
type countingSource struct {
	*source.Fixtures

	mu    sync.Mutex
	calls map[source.Kind]int
	err   error
	gate  chan struct{}
}

func newCountingSource(t *testing.T) *countingSource {
	t.Helper()
	f, err := source.NewFixtures()
	if err != nil {
		t.Fatalf("decode fixtures: %v", err)
	}
	return &countingSource{Fixtures: f, calls: map[source.Kind]int{}}
}

func (s *countingSource) enter(kind source.Kind) error {
	s.mu.Lock()
	s.calls[kind]++
	gate, err := s.gate, s.err
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (s *countingSource) count(kind source.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[kind]
}

func (s *countingSource) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *countingSource) Products(ctx context.Context, q source.Query) ([]domain.Product, error) {
	if err := s.enter(source.KindProducts); err != nil {
		return nil, err
	}
	return s.Fixtures.Products(ctx, q)
}

func (s *countingSource) Brands(ctx context.Context, q source.Query) ([]domain.Brand, error) {
	if err := s.enter(source.KindBrands); err != nil {
		return nil, err
	}
	return s.Fixtures.Brands(ctx, q)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)}
}

func TestRefreshSkipsFreshCache(t *testing.T) {
	src := newCountingSource(t)
	clock := newClock()
	store := NewStore(src, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.Refresh(ctx, source.KindProducts, false); err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	if got := src.count(source.KindProducts); got != 1 {
		t.Fatalf("expected one fetch inside the timeout window, got %d", got)
	}

	clock.Advance(4*time.Minute + 59*time.Second)
	_ = store.Refresh(ctx, source.KindProducts, false)
	if got := src.count(source.KindProducts); got != 1 {
		t.Fatalf("expected cache to still be fresh, got %d fetches", got)
	}

	clock.Advance(time.Second)
	_ = store.Refresh(ctx, source.KindProducts, false)
	if got := src.count(source.KindProducts); got != 2 {
		t.Fatalf("expected refetch once the timeout elapsed, got %d fetches", got)
	}

	_ = store.Refresh(ctx, source.KindProducts, true)
	if got := src.count(source.KindProducts); got != 3 {
		t.Fatalf("expected forced refresh to fetch, got %d fetches", got)
	}
}

func TestKindsHaveIndependentTimeouts(t *testing.T) {
	src := newCountingSource(t)
	clock := newClock()
	store := NewStore(src, WithClock(clock.Now))
	ctx := context.Background()

	_ = store.Refresh(ctx, source.KindProducts, false)
	_ = store.Refresh(ctx, source.KindBrands, false)
	clock.Advance(6 * time.Minute)
	_ = store.Refresh(ctx, source.KindProducts, false)
	_ = store.Refresh(ctx, source.KindBrands, false)

	if src.count(source.KindProducts) != 2 {
		t.Fatalf("products should be stale after 6 minutes")
	}
	if src.count(source.KindBrands) != 1 {
		t.Fatalf("brands should still be fresh after 6 minutes")
	}
}

func TestConcurrentRefreshCollapses(t *testing.T) {
	src := newCountingSource(t)
	src.gate = make(chan struct{})
	store := NewStore(src)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Refresh(context.Background(), source.KindProducts, false)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	if got := src.count(source.KindProducts); got != 1 {
		t.Fatalf("expected concurrent refreshes to share one fetch, got %d", got)
	}
	if len(store.Products()) != 15 {
		t.Fatalf("expected 15 cached products, got %d", len(store.Products()))
	}
}

func TestRefreshFailureKeepsStaleCache(t *testing.T) {
	src := newCountingSource(t)
	store := NewStore(src)
	ctx := context.Background()

	if err := store.Refresh(ctx, source.KindProducts, false); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	fetched, _ := store.LastFetch(source.KindProducts)

	src.setErr(&source.FetchError{Collection: "products", Reason: source.ErrNetwork, Err: errors.New("timeout")})
	err := store.Refresh(ctx, source.KindProducts, true)
	if !errors.Is(err, source.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if len(store.Products()) != 15 || len(store.Featured()) == 0 {
		t.Fatalf("failed refresh must keep the previous cache")
	}
	if again, _ := store.LastFetch(source.KindProducts); !again.Equal(fetched) {
		t.Fatalf("failed refresh must not restamp the cache")
	}
}

func TestEnsureProductsOnEmptyCacheFailure(t *testing.T) {
	src := newCountingSource(t)
	src.setErr(&source.FetchError{Collection: "products", Reason: source.ErrDecode})
	store := NewStore(src)

	if err := store.EnsureProducts(context.Background()); !errors.Is(err, source.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if len(store.Products()) != 0 || len(store.Featured()) != 0 {
		t.Fatalf("expected empty cache")
	}
	if _, ok := store.LastFetch(source.KindProducts); ok {
		t.Fatalf("expected no fetch timestamp")
	}
}

func TestCancelledCallerStillPopulatesCache(t *testing.T) {
	src := newCountingSource(t)
	src.gate = make(chan struct{})
	bus := evbus.New()
	done := make(chan int, 1)
	if err := bus.Subscribe(TopicRefreshed, func(kind source.Kind, count int) {
		if kind == source.KindProducts {
			done <- count
		}
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	store := NewStore(src, WithBus(bus))

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- store.Refresh(ctx, source.KindProducts, false) }()
	cancel()
	if err := <-result; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the cancelled caller to get context.Canceled, got %v", err)
	}

	close(src.gate)
	select {
	case n := <-done:
		if n != 15 {
			t.Fatalf("expected 15 products published, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch did not complete after caller cancelled")
	}
	if len(store.Products()) != 15 {
		t.Fatalf("expected cache to be populated for later callers")
	}
}

func TestDerivedProductViews(t *testing.T) {
	store := NewStore(newCountingSource(t))
	if err := store.Refresh(context.Background(), source.KindProducts, false); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	expectKeys(t, "featured", store.Featured(),
		"p0000005", "p0000011", "p0000002", "p0000010", "p0000004", "p0000012", "p0000001", "p0000008", "p0000015", "p0000003")
	expectKeys(t, "on sale", store.OnSale(), "p0000002", "p0000007", "p0000014", "p0000011")
	expectKeys(t, "new arrivals", store.NewArrivals(),
		"p0000001", "p0000002", "p0000003", "p0000004", "p0000005", "p0000006", "p0000007", "p0000008", "p0000009", "p0000010")
}

func TestLookups(t *testing.T) {
	store := NewStore(newCountingSource(t))
	if err := store.RefreshAll(context.Background(), false); err != nil {
		t.Fatalf("refresh all: %v", err)
	}

	p, ok := store.Product(source.FixtureProductID("p0000004"))
	if !ok || p.Name != "Air Zoom Pegasus FlyEase" {
		t.Fatalf("unexpected product lookup %+v ok=%v", p, ok)
	}
	if p, ok := store.ProductBySlug("seated-wrap-dress"); !ok || p.ID != source.FixtureProductID("p0000010") {
		t.Fatalf("unexpected slug lookup %+v", p)
	}
	if _, ok := store.ProductBySlug("missing"); ok {
		t.Fatalf("expected missing slug to be absent")
	}
	if b, ok := store.BrandBySlug("nike-flyease"); !ok || b.PriceTier != domain.PriceTierPremium {
		t.Fatalf("unexpected brand %+v", b)
	}
	if c, ok := store.CategoryBySlug("footwear"); !ok || c.SortOrder != 3 {
		t.Fatalf("unexpected category %+v", c)
	}
	if f, ok := store.Feature("seated-cut"); !ok || f.Category != domain.FeatureFit {
		t.Fatalf("unexpected feature %+v", f)
	}
}

func TestBrandCategoryAndFeatureViews(t *testing.T) {
	store := NewStore(newCountingSource(t))
	if err := store.RefreshAll(context.Background(), false); err != nil {
		t.Fatalf("refresh all: %v", err)
	}

	adaptive := store.AdaptiveOnlyBrands()
	if len(adaptive) != 3 || adaptive[0].Name != "IZ Adaptive" {
		t.Fatalf("unexpected adaptive-only brands %+v", adaptive)
	}
	if len(store.MainstreamBrands()) != 3 {
		t.Fatalf("expected 3 mainstream brands")
	}
	if mid := store.BrandsForPriceTier(domain.PriceTierMid); len(mid) != 3 {
		t.Fatalf("expected 3 mid-tier brands, got %d", len(mid))
	}

	roots := store.RootCategories()
	if len(roots) != 6 || roots[0].Slug != "tops" || roots[5].Slug != "kids" {
		t.Fatalf("unexpected roots %+v", roots)
	}
	if len(store.Children(roots[0].ID)) != 0 {
		t.Fatalf("fixture categories have no children")
	}

	groups := store.FeatureGroups()
	if len(groups) != 4 || groups[0].Category != domain.FeatureClosure || len(groups[0].Features) != 3 {
		t.Fatalf("unexpected feature groups %+v", groups)
	}
	if len(store.FeaturesFor(domain.FeatureEaseOfDressing)) != 3 {
		t.Fatalf("expected 3 ease-of-dressing features")
	}
}

func TestRefreshUnknownKind(t *testing.T) {
	store := NewStore(newCountingSource(t))
	if err := store.Refresh(context.Background(), source.Kind("orders"), false); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected unknown kind error, got %v", err)
	}
}

func expectKeys(t *testing.T, name string, got []domain.Product, keys ...string) {
	t.Helper()
	if len(got) != len(keys) {
		t.Fatalf("%s: expected %d products, got %d", name, len(keys), len(got))
	}
	for i, k := range keys {
		if got[i].ID != source.FixtureProductID(k) {
			t.Fatalf("%s[%d]: expected %s, got %s", name, i, k, got[i].Name)
		}
	}
}
