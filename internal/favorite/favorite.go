// Package favorite keeps the products a shopper has saved, together with the
// price at the moment of saving so later price drops can be shown.
package favorite

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/able-backend/internal/domain"
)

// SavedItem is one saved product for one user.
type SavedItem struct {
	ID             uuid.UUID        `json:"id"`
	UserID         int              `json:"userId"`
	ProductID      uuid.UUID        `json:"productId"`
	PriceWhenSaved *decimal.Decimal `json:"priceWhenSaved,omitempty"`
	SavedAt        time.Time        `json:"savedAt"`
}

// Entry pairs a saved item with the current catalog product. Product is nil
// when the product has left the catalog.
type Entry struct {
	SavedItem
	Product *domain.Product `json:"product,omitempty"`
}

// HasPriceDropped reports whether the current price is below the saved price.
func (e Entry) HasPriceDropped() bool {
	if e.Product == nil || e.PriceWhenSaved == nil {
		return false
	}
	return e.Product.Price.LessThan(*e.PriceWhenSaved)
}

// PriceDrop is the saved price minus the current price, or zero.
func (e Entry) PriceDrop() decimal.Decimal {
	if !e.HasPriceDropped() {
		return decimal.Zero
	}
	return e.PriceWhenSaved.Sub(e.Product.Price)
}

// entryView is the JSON shape of an Entry, with the derived price fields.
type entryView struct {
	Entry
	HasPriceDropped bool            `json:"hasPriceDropped"`
	PriceDrop       decimal.Decimal `json:"priceDrop"`
}

func viewOf(e Entry) entryView {
	return entryView{Entry: e, HasPriceDropped: e.HasPriceDropped(), PriceDrop: e.PriceDrop()}
}
