package product

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/wichananm65/able-backend/internal/catalog"
	"github.com/wichananm65/able-backend/internal/domain"
	"github.com/wichananm65/able-backend/internal/filter"
	"github.com/wichananm65/able-backend/internal/rank"
	"github.com/wichananm65/able-backend/internal/source"
)

var (
	tops      = uuid.MustParse("cccc1111-1111-1111-1111-111111111111")
	tommy     = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	errRemote = errors.New("connection refused")
)

// downSource fails every fetch.
type downSource struct{}

func (downSource) Products(context.Context, source.Query) ([]domain.Product, error) {
	return nil, errRemote
}

func (downSource) Brands(context.Context, source.Query) ([]domain.Brand, error) {
	return nil, errRemote
}

func (downSource) Categories(context.Context, source.Query) ([]domain.Category, error) {
	return nil, errRemote
}

func (downSource) Features(context.Context, source.Query) ([]domain.Feature, error) {
	return nil, errRemote
}

func newFixtureService(t *testing.T) *Service {
	t.Helper()
	f, err := source.NewFixtures()
	if err != nil {
		t.Fatalf("decode fixtures: %v", err)
	}
	return NewService(catalog.NewStore(f), filter.NewEngine(nil), rank.NewRanker(rank.DefaultWeights()))
}

func expectKeys(t *testing.T, got []domain.Product, keys ...string) {
	t.Helper()
	if len(got) != len(keys) {
		names := make([]string, len(got))
		for i, p := range got {
			names[i] = p.Name
		}
		t.Fatalf("expected %d products %v, got %d: %v", len(keys), keys, len(got), names)
	}
	for i, k := range keys {
		if got[i].ID != source.FixtureProductID(k) {
			t.Fatalf("position %d: expected %s, got %s", i, k, got[i].Name)
		}
	}
}

func TestQueryMensMidTier(t *testing.T) {
	s := newFixtureService(t)
	g := domain.GenderMens
	tier := domain.PriceTierMid
	prefs := domain.DefaultPreferences()
	prefs.Gender = &g
	prefs.PriceTier = &tier

	got, err := s.Query(context.Background(), prefs, Options{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	expectKeys(t, got, "p0000002", "p0000001", "p0000004", "p0000005", "p0000012")

	limited, err := s.Query(context.Background(), prefs, Options{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	expectKeys(t, limited, "p0000002", "p0000001")
}

func TestQueryWithoutPreferencesReturnsWholeCatalog(t *testing.T) {
	s := newFixtureService(t)
	got, err := s.Query(context.Background(), domain.DefaultPreferences(), Options{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 15 {
		t.Fatalf("expected 15 products, got %d", len(got))
	}
}

func TestQueryCategoryAndText(t *testing.T) {
	s := newFixtureService(t)
	ctx := context.Background()

	got, err := s.Query(ctx, domain.DefaultPreferences(), Options{CategoryID: &tops, Search: "MAGNETIC"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	// p1 and p3 are magnetic tops with equal scores, so catalog order holds.
	expectKeys(t, got, "p0000001", "p0000003")

	// Query does not look at descriptions.
	got, _ = s.Query(ctx, domain.DefaultPreferences(), Options{Search: "hinged"})
	expectKeys(t, got)
}

func TestForYouLimitsToTen(t *testing.T) {
	s := newFixtureService(t)
	got, err := s.ForYou(context.Background(), domain.DefaultPreferences())
	if err != nil {
		t.Fatalf("for you: %v", err)
	}
	if len(got) != ForYouLimit {
		t.Fatalf("expected %d products, got %d", ForYouLimit, len(got))
	}
}

func TestNarrowConveniences(t *testing.T) {
	s := newFixtureService(t)
	ctx := context.Background()

	got, err := s.ProductsForCategory(ctx, tops, 0)
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	expectKeys(t, got, "p0000001", "p0000003", "p0000011")

	got, _ = s.ProductsForCategory(ctx, tops, 2)
	expectKeys(t, got, "p0000001", "p0000003")

	got, _ = s.ProductsForBrand(ctx, tommy, 0)
	expectKeys(t, got, "p0000001", "p0000002", "p0000003", "p0000014")

	got, _ = s.ProductsForBrand(ctx, uuid.New(), 0)
	expectKeys(t, got)
}

func TestSearchByText(t *testing.T) {
	s := newFixtureService(t)
	ctx := context.Background()

	got, err := s.SearchByText(ctx, "hinged", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	expectKeys(t, got, "p0000005")

	// brand names match too
	got, _ = s.SearchByText(ctx, "flyease", 0)
	expectKeys(t, got, "p0000004", "p0000005")

	got, _ = s.SearchByText(ctx, "flyease", 1)
	expectKeys(t, got, "p0000004")
}

func TestSections(t *testing.T) {
	s := newFixtureService(t)
	ctx := context.Background()

	featured, err := s.Featured(ctx)
	if err != nil {
		t.Fatalf("featured: %v", err)
	}
	expectKeys(t, featured, "p0000005", "p0000011", "p0000002", "p0000010", "p0000004",
		"p0000012", "p0000001", "p0000008", "p0000015", "p0000003")

	onSale, _ := s.OnSale(ctx)
	expectKeys(t, onSale, "p0000002", "p0000007", "p0000014", "p0000011")

	arrivals, _ := s.NewArrivals(ctx)
	if len(arrivals) != 10 || arrivals[0].ID != source.FixtureProductID("p0000001") {
		t.Fatalf("unexpected new arrivals")
	}
}

func TestGetByID(t *testing.T) {
	s := newFixtureService(t)
	ctx := context.Background()

	id := source.FixtureProductID("p0000002")
	p, err := s.GetByID(ctx, id.String())
	if err != nil || p.ID != id {
		t.Fatalf("expected p0000002, got %v err=%v", p.ID, err)
	}
	p, err = s.GetByID(ctx, "seated-fit-jeans")
	if err != nil || p.ID != id {
		t.Fatalf("expected slug lookup to find p0000002, got %v err=%v", p.ID, err)
	}
	if _, err := s.GetByID(ctx, uuid.New().String()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetByID(ctx, "no-such-product"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUnavailableCatalogReturnsEmptyList(t *testing.T) {
	s := NewService(catalog.NewStore(downSource{}), nil, nil)
	got, err := s.Query(context.Background(), domain.DefaultPreferences(), Options{})
	if !errors.Is(err, errRemote) {
		t.Fatalf("expected the fetch error, got %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected an empty non-nil list, got %v", got)
	}
	if _, err := s.GetByID(context.Background(), "anything"); errors.Is(err, ErrNotFound) || err == nil {
		t.Fatalf("expected a fetch error rather than not found, got %v", err)
	}
}
