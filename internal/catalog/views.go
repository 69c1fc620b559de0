package catalog

import (
	"sort"

	"github.com/google/uuid"

	"github.com/wichananm65/able-backend/internal/domain"
)

// SectionSize caps the home-screen sections.
const SectionSize = 10

// FeaturedMinRating is the rating a product needs to be featured.
const FeaturedMinRating = 4.5

type productViews struct {
	featured    []domain.Product
	newArrivals []domain.Product
	onSale      []domain.Product
	byID        map[uuid.UUID]int
	bySlug      map[string]int
}

type brandViews struct {
	adaptiveOnly []domain.Brand
	mainstream   []domain.Brand
	byID         map[uuid.UUID]int
	bySlug       map[string]int
}

type categoryViews struct {
	roots  []domain.Category
	byID   map[uuid.UUID]int
	bySlug map[string]int
}

type featureViews struct {
	groups []domain.FeatureGroup
	byID   map[string]int
	bySlug map[string]int
}

func deriveProducts(ps []domain.Product) productViews {
	v := productViews{
		byID:   make(map[uuid.UUID]int, len(ps)),
		bySlug: make(map[string]int, len(ps)),
	}
	for i, p := range ps {
		v.byID[p.ID] = i
		if _, dup := v.bySlug[p.Slug]; !dup {
			v.bySlug[p.Slug] = i
		}
	}

	featured := make([]domain.Product, 0)
	for _, p := range ps {
		if p.AverageRating != nil && *p.AverageRating >= FeaturedMinRating {
			featured = append(featured, p)
		}
	}
	sort.SliceStable(featured, func(i, j int) bool { return featured[i].Rating() > featured[j].Rating() })
	v.featured = head(featured, SectionSize)

	arrivals := append([]domain.Product(nil), ps...)
	sort.SliceStable(arrivals, func(i, j int) bool { return arrivals[i].CreatedAt.After(arrivals[j].CreatedAt) })
	v.newArrivals = head(arrivals, SectionSize)

	sale := make([]domain.Product, 0)
	for _, p := range ps {
		if p.IsOnSale() {
			sale = append(sale, p)
		}
	}
	sort.SliceStable(sale, func(i, j int) bool {
		di, _ := sale[i].DiscountPercentage()
		dj, _ := sale[j].DiscountPercentage()
		return di > dj
	})
	v.onSale = head(sale, SectionSize)
	return v
}

func deriveBrands(bs []domain.Brand) brandViews {
	v := brandViews{
		adaptiveOnly: make([]domain.Brand, 0),
		mainstream:   make([]domain.Brand, 0),
		byID:         make(map[uuid.UUID]int, len(bs)),
		bySlug:       make(map[string]int, len(bs)),
	}
	for i, b := range bs {
		v.byID[b.ID] = i
		v.bySlug[b.Slug] = i
		if b.IsAdaptiveOnly {
			v.adaptiveOnly = append(v.adaptiveOnly, b)
		}
		if b.HasMainstreamLine {
			v.mainstream = append(v.mainstream, b)
		}
	}
	return v
}

func deriveCategories(cs []domain.Category) categoryViews {
	v := categoryViews{
		roots:  domain.RootCategories(cs),
		byID:   make(map[uuid.UUID]int, len(cs)),
		bySlug: make(map[string]int, len(cs)),
	}
	for i, c := range cs {
		v.byID[c.ID] = i
		v.bySlug[c.Slug] = i
	}
	return v
}

func deriveFeatures(fs []domain.Feature) featureViews {
	v := featureViews{
		groups: domain.GroupFeatures(fs),
		byID:   make(map[string]int, len(fs)),
		bySlug: make(map[string]int, len(fs)),
	}
	for i, f := range fs {
		v.byID[f.ID] = i
		v.bySlug[f.Slug] = i
	}
	return v
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
