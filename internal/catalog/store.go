// Package catalog holds the in-memory copy of products, brands, categories
// and adaptive features, and decides when to refetch them from a source.
package catalog

import (
	"context"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/able-backend/internal/domain"
	"github.com/wichananm65/able-backend/internal/source"
)

// TopicRefreshed is published with (source.Kind, count int) after a collection is replaced.
const TopicRefreshed = "catalog:refreshed"

// Timeouts are the per-kind freshness windows.
type Timeouts struct {
	Products   time.Duration
	Brands     time.Duration
	Categories time.Duration
	Features   time.Duration
}

// DefaultTimeouts are 5 minutes for products and 10 for everything else.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Products:   5 * time.Minute,
		Brands:     10 * time.Minute,
		Categories: 10 * time.Minute,
		Features:   10 * time.Minute,
	}
}

// Option configures a Store.
type Option func(*Store)

// WithTimeouts replaces DefaultTimeouts.
func WithTimeouts(t Timeouts) Option {
	return func(s *Store) { s.timeouts = t }
}

// WithClock replaces time.Now for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithBus publishes refresh notifications on bus.
func WithBus(bus evbus.Bus) Option {
	return func(s *Store) { s.bus = bus }
}

// Store is the catalog cache. All methods are safe for concurrent use.
type Store struct {
	src      source.Source
	timeouts Timeouts
	now      func() time.Time
	bus      evbus.Bus

	products   *collection[domain.Product, productViews]
	brands     *collection[domain.Brand, brandViews]
	categories *collection[domain.Category, categoryViews]
	features   *collection[domain.Feature, featureViews]
}

// Fetch queries for each kind.
var (
	ProductsQuery   = source.Query{}.Eq("is_available", true).Order("created_at", false)
	BrandsQuery     = source.Query{}.Eq("is_active", true).Order("name", true)
	CategoriesQuery = source.Query{}.Eq("is_active", true).Order("sort_order", true)
	FeaturesQuery   = source.Query{}.Eq("is_active", true).Order("sort_order", true)
)

// NewStore creates an empty store over src. Nothing is fetched until a
// refresh or EnsureProducts.
func NewStore(src source.Source, opts ...Option) *Store {
	s := &Store{src: src, timeouts: DefaultTimeouts(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	now := func() time.Time { return s.now() }

	s.products = &collection[domain.Product, productViews]{
		kind: source.KindProducts, timeout: s.timeouts.Products, now: now, onSwap: s.publish,
		fetch:  func(ctx context.Context) ([]domain.Product, error) { return src.Products(ctx, ProductsQuery) },
		derive: deriveProducts,
	}
	s.brands = &collection[domain.Brand, brandViews]{
		kind: source.KindBrands, timeout: s.timeouts.Brands, now: now, onSwap: s.publish,
		fetch:  func(ctx context.Context) ([]domain.Brand, error) { return src.Brands(ctx, BrandsQuery) },
		derive: deriveBrands,
	}
	s.categories = &collection[domain.Category, categoryViews]{
		kind: source.KindCategories, timeout: s.timeouts.Categories, now: now, onSwap: s.publish,
		fetch:  func(ctx context.Context) ([]domain.Category, error) { return src.Categories(ctx, CategoriesQuery) },
		derive: deriveCategories,
	}
	s.features = &collection[domain.Feature, featureViews]{
		kind: source.KindFeatures, timeout: s.timeouts.Features, now: now, onSwap: s.publish,
		fetch:  func(ctx context.Context) ([]domain.Feature, error) { return src.Features(ctx, FeaturesQuery) },
		derive: deriveFeatures,
	}
	return s
}

func (s *Store) publish(kind source.Kind, count int) {
	if s.bus != nil {
		s.bus.Publish(TopicRefreshed, kind, count)
	}
}

// Refresh refetches one kind unless its cache is fresh and force is false.
// On failure the previous data stays in place and the error is returned.
func (s *Store) Refresh(ctx context.Context, kind source.Kind, force bool) error {
	switch kind {
	case source.KindProducts:
		return s.products.refresh(ctx, force)
	case source.KindBrands:
		return s.brands.refresh(ctx, force)
	case source.KindCategories:
		return s.categories.refresh(ctx, force)
	case source.KindFeatures:
		return s.features.refresh(ctx, force)
	}
	return ErrUnknownKind
}

// RefreshAll refreshes every kind in parallel and returns the first error.
// A failing kind does not stop the others.
func (s *Store) RefreshAll(ctx context.Context, force bool) error {
	var g errgroup.Group
	for _, k := range source.Kinds {
		g.Go(func() error { return s.Refresh(ctx, k, force) })
	}
	return g.Wait()
}

// EnsureProducts loads products when the cache holds none.
func (s *Store) EnsureProducts(ctx context.Context) error {
	if len(s.products.load().items) > 0 {
		return nil
	}
	return s.products.refresh(ctx, false)
}

// LastFetch returns when kind was last replaced; false if never.
func (s *Store) LastFetch(kind source.Kind) (time.Time, bool) {
	switch kind {
	case source.KindProducts:
		return s.products.lastFetch()
	case source.KindBrands:
		return s.brands.lastFetch()
	case source.KindCategories:
		return s.categories.lastFetch()
	case source.KindFeatures:
		return s.features.lastFetch()
	}
	return time.Time{}, false
}

// Products returns the cached products. The slice is shared and must not be modified.
func (s *Store) Products() []domain.Product { return s.products.load().items }

func (s *Store) Featured() []domain.Product    { return s.products.load().views.featured }
func (s *Store) NewArrivals() []domain.Product { return s.products.load().views.newArrivals }
func (s *Store) OnSale() []domain.Product      { return s.products.load().views.onSale }

func (s *Store) Product(id uuid.UUID) (domain.Product, bool) {
	snap := s.products.load()
	return lookup(snap.items, snap.views.byID, id)
}

func (s *Store) ProductBySlug(slug string) (domain.Product, bool) {
	snap := s.products.load()
	return lookup(snap.items, snap.views.bySlug, slug)
}

func (s *Store) Brands() []domain.Brand             { return s.brands.load().items }
func (s *Store) AdaptiveOnlyBrands() []domain.Brand { return s.brands.load().views.adaptiveOnly }
func (s *Store) MainstreamBrands() []domain.Brand   { return s.brands.load().views.mainstream }

func (s *Store) Brand(id uuid.UUID) (domain.Brand, bool) {
	snap := s.brands.load()
	return lookup(snap.items, snap.views.byID, id)
}

func (s *Store) BrandBySlug(slug string) (domain.Brand, bool) {
	snap := s.brands.load()
	return lookup(snap.items, snap.views.bySlug, slug)
}

// BrandsForPriceTier returns the brands in tier, in cache order.
func (s *Store) BrandsForPriceTier(tier domain.PriceTier) []domain.Brand {
	out := make([]domain.Brand, 0)
	for _, b := range s.brands.load().items {
		if b.PriceTier == tier {
			out = append(out, b)
		}
	}
	return out
}

func (s *Store) Categories() []domain.Category     { return s.categories.load().items }
func (s *Store) RootCategories() []domain.Category { return s.categories.load().views.roots }

func (s *Store) Category(id uuid.UUID) (domain.Category, bool) {
	snap := s.categories.load()
	return lookup(snap.items, snap.views.byID, id)
}

func (s *Store) CategoryBySlug(slug string) (domain.Category, bool) {
	snap := s.categories.load()
	return lookup(snap.items, snap.views.bySlug, slug)
}

// Children returns the direct subcategories of id ordered by sort order.
func (s *Store) Children(id uuid.UUID) []domain.Category {
	return domain.ChildCategories(id, s.categories.load().items)
}

func (s *Store) Features() []domain.Feature           { return s.features.load().items }
func (s *Store) FeatureGroups() []domain.FeatureGroup { return s.features.load().views.groups }

func (s *Store) Feature(id string) (domain.Feature, bool) {
	snap := s.features.load()
	return lookup(snap.items, snap.views.byID, id)
}

func (s *Store) FeatureBySlug(slug string) (domain.Feature, bool) {
	snap := s.features.load()
	return lookup(snap.items, snap.views.bySlug, slug)
}

// FeaturesFor returns the features of one feature category.
func (s *Store) FeaturesFor(cat domain.FeatureCategory) []domain.Feature {
	out := make([]domain.Feature, 0)
	for _, f := range s.features.load().items {
		if f.Category == cat {
			out = append(out, f)
		}
	}
	return out
}

func lookup[T any, K comparable](items []T, index map[K]int, key K) (T, bool) {
	i, ok := index[key]
	if !ok {
		var zero T
		return zero, false
	}
	return items[i], true
}
