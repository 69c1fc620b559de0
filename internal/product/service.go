package product

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wichananm65/able-backend/internal/domain"
	"github.com/wichananm65/able-backend/internal/filter"
	"github.com/wichananm65/able-backend/internal/rank"
)

type Service struct {
	catalog Catalog
	filter  *filter.Engine
	ranker  *rank.Ranker
}

// NewService wires the query pipeline. Nil engine or ranker fall back to defaults.
func NewService(c Catalog, f *filter.Engine, r *rank.Ranker) *Service {
	if f == nil {
		f = filter.NewEngine(nil)
	}
	if r == nil {
		r = rank.NewRanker(rank.DefaultWeights())
	}
	return &Service{catalog: c, filter: f, ranker: r}
}

// products returns the cached products, loading them when none are cached.
// An error is returned only when there is nothing to serve.
func (s *Service) products(ctx context.Context) ([]domain.Product, error) {
	err := s.catalog.EnsureProducts(ctx)
	all := s.catalog.Products()
	if err != nil && len(all) == 0 {
		return []domain.Product{}, err
	}
	return all, nil
}

// Query filters the catalog by prefs and opts, ranks the result and
// returns at most opts.Limit products (DefaultLimit when unset).
func (s *Service) Query(ctx context.Context, prefs domain.Preferences, opts Options) ([]domain.Product, error) {
	all, err := s.products(ctx)
	if err != nil {
		return all, err
	}
	filtered := s.filter.Filter(all, prefs, filter.Criteria{CategoryID: opts.CategoryID, Search: opts.Search})
	ranked := s.ranker.Rank(filtered, prefs)

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	zap.L().Debug("product query",
		zap.Int("catalog", len(all)),
		zap.Int("matched", len(filtered)),
		zap.Int("limit", limit),
	)
	return take(ranked, limit), nil
}

// ForYou is the personalised home feed.
func (s *Service) ForYou(ctx context.Context, prefs domain.Preferences) ([]domain.Product, error) {
	return s.Query(ctx, prefs, Options{Limit: ForYouLimit})
}

// ProductsForCategory lists a category in catalog order, without preferences.
func (s *Service) ProductsForCategory(ctx context.Context, id uuid.UUID, limit int) ([]domain.Product, error) {
	all, err := s.products(ctx)
	if err != nil {
		return all, err
	}
	return take(s.filter.Filter(all, domain.Preferences{}, filter.Criteria{CategoryID: &id}), limit), nil
}

// ProductsForBrand lists a brand in catalog order, without preferences.
func (s *Service) ProductsForBrand(ctx context.Context, id uuid.UUID, limit int) ([]domain.Product, error) {
	all, err := s.products(ctx)
	if err != nil {
		return all, err
	}
	out := make([]domain.Product, 0)
	for _, p := range all {
		if p.BrandID == id {
			out = append(out, p)
		}
	}
	return take(out, limit), nil
}

// SearchByText matches name, brand and description only. Gender, price
// and feature preferences do not apply.
func (s *Service) SearchByText(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	all, err := s.products(ctx)
	if err != nil {
		return all, err
	}
	return take(s.filter.Search(all, query), limit), nil
}

func (s *Service) Featured(ctx context.Context) ([]domain.Product, error) {
	if _, err := s.products(ctx); err != nil {
		return []domain.Product{}, err
	}
	return s.catalog.Featured(), nil
}

func (s *Service) NewArrivals(ctx context.Context) ([]domain.Product, error) {
	if _, err := s.products(ctx); err != nil {
		return []domain.Product{}, err
	}
	return s.catalog.NewArrivals(), nil
}

func (s *Service) OnSale(ctx context.Context) ([]domain.Product, error) {
	if _, err := s.products(ctx); err != nil {
		return []domain.Product{}, err
	}
	return s.catalog.OnSale(), nil
}

// GetByID accepts a product uuid or slug.
func (s *Service) GetByID(ctx context.Context, ref string) (domain.Product, error) {
	if _, err := s.products(ctx); err != nil {
		return domain.Product{}, err
	}
	if id, err := uuid.Parse(ref); err == nil {
		if p, ok := s.catalog.Product(id); ok {
			return p, nil
		}
		return domain.Product{}, ErrNotFound
	}
	if p, ok := s.catalog.ProductBySlug(ref); ok {
		return p, nil
	}
	return domain.Product{}, ErrNotFound
}
