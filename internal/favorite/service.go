package favorite

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wichananm65/able-backend/internal/domain"
)

// Products resolves catalog products for saving and listing.
type Products interface {
	EnsureProducts(ctx context.Context) error
	Product(id uuid.UUID) (domain.Product, bool)
}

type Service struct {
	repo     Repository
	products Products
	now      func() time.Time
}

func NewService(repo Repository, products Products) *Service {
	return &Service{repo: repo, products: products, now: time.Now}
}

// Save records productID for userID at its current catalog price.
func (s *Service) Save(ctx context.Context, userID int, productID uuid.UUID) (SavedItem, error) {
	if err := s.products.EnsureProducts(ctx); err != nil {
		return SavedItem{}, err
	}
	p, ok := s.products.Product(productID)
	if !ok {
		return SavedItem{}, ErrProductNotFound
	}
	price := p.Price
	item, err := s.repo.Add(ctx, SavedItem{
		UserID:         userID,
		ProductID:      productID,
		PriceWhenSaved: &price,
		SavedAt:        s.now().UTC(),
	})
	if err != nil {
		return SavedItem{}, err
	}
	zap.L().Debug("product saved", zap.Int("user_id", userID), zap.String("product_id", productID.String()))
	return item, nil
}

func (s *Service) Remove(ctx context.Context, userID int, productID uuid.UUID) error {
	return s.repo.Remove(ctx, userID, productID)
}

// List returns the user's saved items joined with current catalog data.
func (s *Service) List(ctx context.Context, userID int) ([]Entry, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.products.EnsureProducts(ctx); err != nil {
		zap.L().Warn("listing saved items without catalog data", zap.Error(err))
	}
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		e := Entry{SavedItem: it}
		if p, ok := s.products.Product(it.ProductID); ok {
			e.Product = &p
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Service) Saved(ctx context.Context, userID int, productIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.repo.Saved(ctx, userID, productIDs)
}
