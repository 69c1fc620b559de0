// Package filter narrows a product collection by shopper preferences.
package filter

import (
	"strings"

	"github.com/google/uuid"

	"github.com/wichananm65/able-backend/internal/domain"
)

// ClosureMap maps a closure type to the feature id it stands in for. Products
// carry no feature relation yet, so closure type is the only feature signal.
type ClosureMap map[domain.ClosureType]string

// DefaultClosureMap is the built-in closure to feature table.
func DefaultClosureMap() ClosureMap {
	return ClosureMap{
		domain.ClosureMagnetic:    "magnetic-closures",
		domain.ClosureVelcro:      "velcro-closures",
		domain.ClosureHookAndLoop: "velcro-closures",
		domain.ClosureSideZip:     "side-opening",
		domain.ClosurePullOn:      "pull-on",
	}
}

// Criteria are the optional narrowing inputs besides preferences.
type Criteria struct {
	CategoryID *uuid.UUID
	Search     string
	// SearchDescription extends free-text matching to product descriptions.
	SearchDescription bool
}

// Engine applies the filter stages. The zero value uses DefaultClosureMap.
type Engine struct {
	closures ClosureMap
}

func NewEngine(closures ClosureMap) *Engine {
	if closures == nil {
		closures = DefaultClosureMap()
	}
	return &Engine{closures: closures}
}

// Filter applies, in order: gender, category, free text, price tier and
// feature stages. A stage whose criterion is absent is skipped. The result
// keeps input order and never contains anything not in products.
func (e *Engine) Filter(products []domain.Product, prefs domain.Preferences, c Criteria) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	out = append(out, products...)

	if prefs.Gender != nil {
		out = keep(out, func(p domain.Product) bool { return GenderMatches(p.Gender, *prefs.Gender) })
	}
	if c.CategoryID != nil {
		id := *c.CategoryID
		out = keep(out, func(p domain.Product) bool { return p.CategoryID == id })
	}
	if q := strings.ToLower(c.Search); q != "" {
		out = keep(out, func(p domain.Product) bool { return TextMatches(p, q, c.SearchDescription) })
	}
	if prefs.PriceTier != nil {
		tier := *prefs.PriceTier
		out = keep(out, func(p domain.Product) bool { return tier.Contains(p.Price) })
	}
	if len(prefs.FeatureIDs) > 0 {
		out = keep(out, func(p domain.Product) bool { return e.FeatureMatches(p, prefs.FeatureIDs) })
	}
	return out
}

// Search is the free-text-only path: name, brand and description, with no
// gender, price or feature stages.
func (e *Engine) Search(products []domain.Product, query string) []domain.Product {
	q := strings.ToLower(query)
	if q == "" {
		return append(make([]domain.Product, 0, len(products)), products...)
	}
	return keep(append([]domain.Product(nil), products...), func(p domain.Product) bool { return TextMatches(p, q, true) })
}

// GenderMatches keeps exact matches, unisex products, and any kids product
// for a kids preference.
func GenderMatches(product, preferred domain.Gender) bool {
	return product == preferred ||
		product == domain.GenderUnisex ||
		(preferred.IsKids() && product.IsKids())
}

// TextMatches reports whether the lowercased query is a substring of the
// product name or brand name, or of the description when withDescription is set.
func TextMatches(p domain.Product, lowered string, withDescription bool) bool {
	if strings.Contains(strings.ToLower(p.Name), lowered) {
		return true
	}
	if strings.Contains(strings.ToLower(p.BrandLabel()), lowered) {
		return true
	}
	return withDescription && strings.Contains(strings.ToLower(p.DescriptionText()), lowered)
}

// FeatureMatches passes products with no closure type, closure types with no
// mapping, and closure types mapped to a selected feature.
func (e *Engine) FeatureMatches(p domain.Product, selected domain.Set) bool {
	if p.ClosureType == nil {
		return true
	}
	feature, mapped := e.closureMap()[*p.ClosureType]
	if !mapped {
		return true
	}
	return selected.Has(feature)
}

func (e *Engine) closureMap() ClosureMap {
	if e == nil || e.closures == nil {
		return DefaultClosureMap()
	}
	return e.closures
}

// keep filters items in place, preserving order.
func keep(items []domain.Product, pred func(domain.Product) bool) []domain.Product {
	out := items[:0]
	for _, p := range items {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
