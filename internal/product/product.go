// Package product is the query entry point for product lists: it combines
// the catalog cache with the filter and ranking stages.
package product

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/wichananm65/able-backend/internal/domain"
)

const (
	// DefaultLimit caps Query results when no limit is given.
	DefaultLimit = 50
	// ForYouLimit is the size of the personalised home feed.
	ForYouLimit = 10
)

var ErrNotFound = errors.New("product not found")

// Options narrows a Query beyond the shopper's preferences.
type Options struct {
	CategoryID *uuid.UUID
	Search     string
	Limit      int
}

// Catalog is the subset of the catalog store the service reads from.
type Catalog interface {
	EnsureProducts(ctx context.Context) error
	Products() []domain.Product
	Product(id uuid.UUID) (domain.Product, bool)
	ProductBySlug(slug string) (domain.Product, bool)
	Featured() []domain.Product
	NewArrivals() []domain.Product
	OnSale() []domain.Product
}

func take(items []domain.Product, limit int) []domain.Product {
	if limit <= 0 || limit >= len(items) {
		return items
	}
	return items[:limit]
}
