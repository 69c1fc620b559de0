package source

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/wichananm65/able-backend/internal/domain"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// fixtureNamespace seeds the deterministic ids of fixture products.
var fixtureNamespace = uuid.MustParse("a61e0b5c-2f7d-4c55-9c1e-5d0f4b3a7e21")

// FixtureProductID returns the id the fixture source assigns to a product key
// such as "p0000001".
func FixtureProductID(key string) uuid.UUID {
	return uuid.NewSHA1(fixtureNamespace, []byte(key))
}

type fixtureBrand struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Slug           string `yaml:"slug"`
	Description    string `yaml:"description"`
	WebsiteURL     string `yaml:"website_url"`
	AdaptiveOnly   bool   `yaml:"adaptive_only"`
	MainstreamLine bool   `yaml:"mainstream_line"`
	PriceTier      string `yaml:"price_tier"`
}

type fixtureFeature struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	SearchTerms []string `yaml:"search_terms"`
	DisplayName string   `yaml:"display_name"`
	BadgeText   string   `yaml:"badge_text"`
	SortOrder   int      `yaml:"sort_order"`
}

type fixtureCategory struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Parent      string `yaml:"parent"`
	Type        string `yaml:"type"`
	SortOrder   int    `yaml:"sort_order"`
}

type fixtureProduct struct {
	Key           string    `yaml:"key"`
	Brand         string    `yaml:"brand"`
	Category      string    `yaml:"category"`
	Name          string    `yaml:"name"`
	Description   string    `yaml:"description"`
	Price         string    `yaml:"price"`
	OriginalPrice string    `yaml:"original_price"`
	Currency      string    `yaml:"currency"`
	Gender        string    `yaml:"gender"`
	Closure       string    `yaml:"closure"`
	ReviewCount   int       `yaml:"review_count"`
	Rating        *float64  `yaml:"rating"`
	SaveCount     int       `yaml:"save_count"`
	CreatedAt     time.Time `yaml:"created_at"`
}

type fixtureFile struct {
	Brands     []fixtureBrand    `yaml:"brands"`
	Features   []fixtureFeature  `yaml:"features"`
	Categories []fixtureCategory `yaml:"categories"`
	Products   []fixtureProduct  `yaml:"products"`
}

// Catalog is a fully decoded set of catalog collections.
type Catalog struct {
	Products   []domain.Product
	Brands     []domain.Brand
	Categories []domain.Category
	Features   []domain.Feature
}

// Fixtures serves an in-memory catalog. It answers queries the same way the
// Postgres source does so the rest of the system can run without a database.
type Fixtures struct {
	catalog Catalog
}

// NewFixtures decodes the embedded demo catalog.
func NewFixtures() (*Fixtures, error) {
	c, err := DecodeFixtures(fixturesYAML)
	if err != nil {
		return nil, err
	}
	return &Fixtures{catalog: c}, nil
}

// NewFixturesFromCatalog serves an explicit catalog.
func NewFixturesFromCatalog(c Catalog) *Fixtures {
	return &Fixtures{catalog: c}
}

// Catalog returns the collections being served.
func (f *Fixtures) Catalog() Catalog {
	return f.catalog
}

// DecodeFixtures parses a YAML fixture document into domain values.
func DecodeFixtures(raw []byte) (Catalog, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Catalog{}, newFetchError("fixtures", ErrDecode, err)
	}

	var c Catalog
	brandNames := make(map[uuid.UUID]string, len(f.Brands))
	for _, fb := range f.Brands {
		b, err := fb.toDomain()
		if err != nil {
			return Catalog{}, newFetchError("brands", ErrDecode, err)
		}
		brandNames[b.ID] = b.Name
		c.Brands = append(c.Brands, b)
	}
	for _, ff := range f.Features {
		c.Features = append(c.Features, ff.toDomain())
	}
	for _, fc := range f.Categories {
		cat, err := fc.toDomain()
		if err != nil {
			return Catalog{}, newFetchError("categories", ErrDecode, err)
		}
		c.Categories = append(c.Categories, cat)
	}
	for _, fp := range f.Products {
		p, err := fp.toDomain(brandNames)
		if err != nil {
			return Catalog{}, newFetchError("products", ErrDecode, err)
		}
		c.Products = append(c.Products, p)
	}
	return c, nil
}

func (fb fixtureBrand) toDomain() (domain.Brand, error) {
	id, err := uuid.Parse(fb.ID)
	if err != nil {
		return domain.Brand{}, fmt.Errorf("brand %q: %w", fb.Slug, err)
	}
	tier, ok := domain.ParsePriceTier(fb.PriceTier)
	if !ok {
		return domain.Brand{}, fmt.Errorf("brand %q: unknown price tier %q", fb.Slug, fb.PriceTier)
	}
	return domain.Brand{
		ID:                id,
		Name:              fb.Name,
		Slug:              fb.Slug,
		Description:       optional(fb.Description),
		WebsiteURL:        fb.WebsiteURL,
		IsAdaptiveOnly:    fb.AdaptiveOnly,
		HasMainstreamLine: fb.MainstreamLine,
		PriceTier:         tier,
		IsActive:          true,
	}, nil
}

func (ff fixtureFeature) toDomain() domain.Feature {
	display := ff.DisplayName
	if display == "" {
		display = ff.Name
	}
	return domain.Feature{
		ID:          ff.ID,
		Name:        ff.Name,
		Slug:        ff.ID,
		Description: optional(ff.Description),
		Category:    domain.FeatureCategory(ff.Category),
		SearchTerms: ff.SearchTerms,
		DisplayName: display,
		BadgeText:   optional(ff.BadgeText),
		IsActive:    true,
		SortOrder:   ff.SortOrder,
	}
}

func (fc fixtureCategory) toDomain() (domain.Category, error) {
	id, err := uuid.Parse(fc.ID)
	if err != nil {
		return domain.Category{}, fmt.Errorf("category %q: %w", fc.Slug, err)
	}
	cat := domain.Category{
		ID:           id,
		Name:         fc.Name,
		Slug:         fc.Slug,
		Description:  optional(fc.Description),
		CategoryType: domain.CategoryType(fc.Type),
		SortOrder:    fc.SortOrder,
		IsActive:     true,
	}
	if fc.Parent != "" {
		parent, err := uuid.Parse(fc.Parent)
		if err != nil {
			return domain.Category{}, fmt.Errorf("category %q parent: %w", fc.Slug, err)
		}
		cat.ParentID = &parent
	}
	return cat, nil
}

func (fp fixtureProduct) toDomain(brandNames map[uuid.UUID]string) (domain.Product, error) {
	brandID, err := uuid.Parse(fp.Brand)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s brand: %w", fp.Key, err)
	}
	categoryID, err := uuid.Parse(fp.Category)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s category: %w", fp.Key, err)
	}
	price, err := decimal.NewFromString(fp.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s price: %w", fp.Key, err)
	}
	gender, ok := domain.ParseGender(fp.Gender)
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: unknown gender %q", fp.Key, fp.Gender)
	}
	currency := fp.Currency
	if currency == "" {
		currency = "USD"
	}
	slug := strings.ReplaceAll(strings.ToLower(fp.Name), " ", "-")
	p := domain.Product{
		ID:          FixtureProductID(fp.Key),
		BrandID:     brandID,
		CategoryID:  categoryID,
		Name:        fp.Name,
		Slug:        slug,
		Description: optional(fp.Description),
		Price:       price,
		Currency:    currency,
		Gender:      gender,
		ProductURL:  "https://example.com/products/" + slug,
		IsAvailable: true,
		ReviewCount: fp.ReviewCount,
		SaveCount:   fp.SaveCount,
		CreatedAt:   fp.CreatedAt,
		UpdatedAt:   fp.CreatedAt,
	}
	if fp.OriginalPrice != "" {
		orig, err := decimal.NewFromString(fp.OriginalPrice)
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %s original price: %w", fp.Key, err)
		}
		p.OriginalPrice = &orig
	}
	if fp.Closure != "" {
		closure := domain.ClosureType(fp.Closure)
		p.ClosureType = &closure
		if closure == domain.ClosureMagnetic {
			unsafe := false
			p.PacemakerSafe = &unsafe
		}
	}
	if fp.Rating != nil {
		r := *fp.Rating
		p.AverageRating = &r
	}
	if name, ok := brandNames[brandID]; ok {
		p.BrandName = &name
	}
	return p, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (f *Fixtures) Products(ctx context.Context, q Query) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, newFetchError("products", ErrNetwork, err)
	}
	return apply(f.catalog.Products, q, productColumn)
}

func (f *Fixtures) Brands(ctx context.Context, q Query) ([]domain.Brand, error) {
	if err := ctx.Err(); err != nil {
		return nil, newFetchError("brands", ErrNetwork, err)
	}
	return apply(f.catalog.Brands, q, brandColumn)
}

func (f *Fixtures) Categories(ctx context.Context, q Query) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, newFetchError("categories", ErrNetwork, err)
	}
	return apply(f.catalog.Categories, q, categoryColumn)
}

func (f *Fixtures) Features(ctx context.Context, q Query) ([]domain.Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, newFetchError("features", ErrNetwork, err)
	}
	return apply(f.catalog.Features, q, featureColumn)
}

// apply filters, sorts and limits a copy of items. column maps a column name
// to a comparable value; unknown columns are a decode failure, as they would
// be against a real table.
func apply[T any](items []T, q Query, column func(T, string) (any, bool)) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		keep := true
		for _, c := range q.Conditions {
			v, ok := column(it, c.Column)
			if !ok {
				return nil, newFetchError("fixtures", ErrDecode, fmt.Errorf("unknown column %q", c.Column))
			}
			if !equalValues(v, c.Value) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, it)
		}
	}
	for _, o := range q.Orderings {
		if len(out) > 0 {
			if _, ok := column(out[0], o.Column); !ok {
				return nil, newFetchError("fixtures", ErrDecode, fmt.Errorf("unknown column %q", o.Column))
			}
		}
	}
	if len(q.Orderings) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.Orderings {
				a, _ := column(out[i], o.Column)
				b, _ := column(out[j], o.Column)
				c := compareValues(a, b)
				if c == 0 {
					continue
				}
				if o.Ascending {
					return c < 0
				}
				return c > 0
			}
			return false
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func equalValues(a, b any) bool {
	return compareValues(a, b) == 0
}

// compareValues orders the scalar kinds the catalog columns expose.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case bool:
		bv := cast.ToBool(b)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case int:
		return compareOrdered(av, cast.ToInt(b))
	case float64:
		return compareOrdered(av, cast.ToFloat64(b))
	case time.Time:
		bt := cast.ToTime(b)
		return av.Compare(bt)
	case decimal.Decimal:
		bd, ok := b.(decimal.Decimal)
		if !ok {
			bd = decimal.NewFromFloat(cast.ToFloat64(b))
		}
		return av.Cmp(bd)
	}
	return strings.Compare(cast.ToString(a), cast.ToString(b))
}

func compareOrdered[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func productColumn(p domain.Product, col string) (any, bool) {
	switch col {
	case "id":
		return p.ID.String(), true
	case "brand_id":
		return p.BrandID.String(), true
	case "category_id":
		return p.CategoryID.String(), true
	case "name":
		return p.Name, true
	case "slug":
		return p.Slug, true
	case "price":
		return p.Price, true
	case "gender":
		return string(p.Gender), true
	case "is_available":
		return p.IsAvailable, true
	case "review_count":
		return p.ReviewCount, true
	case "average_rating":
		return p.Rating(), true
	case "save_count":
		return p.SaveCount, true
	case "created_at":
		return p.CreatedAt, true
	}
	return nil, false
}

func brandColumn(b domain.Brand, col string) (any, bool) {
	switch col {
	case "id":
		return b.ID.String(), true
	case "name":
		return b.Name, true
	case "slug":
		return b.Slug, true
	case "is_active":
		return b.IsActive, true
	case "is_adaptive_only":
		return b.IsAdaptiveOnly, true
	case "has_mainstream_line":
		return b.HasMainstreamLine, true
	case "price_tier":
		return string(b.PriceTier), true
	}
	return nil, false
}

func categoryColumn(c domain.Category, col string) (any, bool) {
	switch col {
	case "id":
		return c.ID.String(), true
	case "name":
		return c.Name, true
	case "slug":
		return c.Slug, true
	case "is_active":
		return c.IsActive, true
	case "sort_order":
		return c.SortOrder, true
	case "category_type":
		return string(c.CategoryType), true
	}
	return nil, false
}

func featureColumn(f domain.Feature, col string) (any, bool) {
	switch col {
	case "id":
		return f.ID, true
	case "name":
		return f.Name, true
	case "slug":
		return f.Slug, true
	case "category":
		return string(f.Category), true
	case "is_active":
		return f.IsActive, true
	case "sort_order":
		return f.SortOrder, true
	}
	return nil, false
}
