package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/able-backend/internal/domain"
)

// Postgres reads catalog collections from the brands, categories,
// adaptive_features and products tables.
type Postgres struct {
	db *sql.DB
}

const undefinedTable = "42P01"

const (
	selectProducts = `
		SELECT p.id, p.brand_id, p.category_id, p.name, p.slug, p.description, p.price, p.original_price,
		       p.currency, p.gender, p.closure_type, p.image_url, p.product_url, p.is_available,
		       p.available_sizes, p.pacemaker_safe, p.review_count, p.average_rating, p.save_count,
		       p.created_at, p.updated_at, b.name
		FROM products p
		LEFT JOIN brands b ON b.id = p.brand_id`
	selectBrands = `
		SELECT id, name, slug, description, logo_url, website_url, is_adaptive_only, has_mainstream_line,
		       price_tier, is_active, created_at, updated_at
		FROM brands`
	selectCategories = `
		SELECT id, name, slug, description, parent_id, category_type, sort_order, is_active, created_at, updated_at
		FROM categories`
	selectFeatures = `
		SELECT id, name, slug, description, category, search_terms, display_name, badge_text, is_active,
		       sort_order, created_at, updated_at
		FROM adaptive_features`
)

// Columns a query may filter or order on, mapped to their SQL expression.
var (
	productColumns = map[string]string{
		"id": "p.id", "brand_id": "p.brand_id", "category_id": "p.category_id", "name": "p.name",
		"slug": "p.slug", "price": "p.price", "gender": "p.gender", "is_available": "p.is_available",
		"review_count": "p.review_count", "average_rating": "p.average_rating",
		"save_count": "p.save_count", "created_at": "p.created_at",
	}
	brandColumns = map[string]string{
		"id": "id", "name": "name", "slug": "slug", "is_active": "is_active",
		"is_adaptive_only": "is_adaptive_only", "has_mainstream_line": "has_mainstream_line",
		"price_tier": "price_tier",
	}
	categoryColumns = map[string]string{
		"id": "id", "name": "name", "slug": "slug", "is_active": "is_active",
		"sort_order": "sort_order", "category_type": "category_type",
	}
	featureColumns = map[string]string{
		"id": "id", "name": "name", "slug": "slug", "category": "category",
		"is_active": "is_active", "sort_order": "sort_order",
	}
)

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// buildQuery appends WHERE, ORDER BY and LIMIT clauses for q to base.
func buildQuery(base string, columns map[string]string, q Query) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(base)
	args := make([]any, 0, len(q.Conditions)+1)
	for i, c := range q.Conditions {
		col, ok := columns[c.Column]
		if !ok {
			return "", nil, fmt.Errorf("unknown column %q", c.Column)
		}
		if i == 0 {
			sb.WriteString("\n\t\tWHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, sqlValue(c.Value))
		fmt.Fprintf(&sb, "%s = $%d", col, len(args))
	}
	for i, o := range q.Orderings {
		col, ok := columns[o.Column]
		if !ok {
			return "", nil, fmt.Errorf("unknown column %q", o.Column)
		}
		if i == 0 {
			sb.WriteString("\n\t\tORDER BY ")
		} else {
			sb.WriteString(", ")
		}
		dir := "DESC"
		if o.Ascending {
			dir = "ASC"
		}
		sb.WriteString(col + " " + dir)
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, "\n\t\tLIMIT $%d", len(args))
	}
	return sb.String(), args, nil
}

func sqlValue(v any) any {
	if id, ok := v.(uuid.UUID); ok {
		return id.String()
	}
	return v
}

// classify maps a driver error onto the fetch taxonomy.
func classify(collection string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return newFetchError(collection, ErrNotFound, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return newFetchError(collection, ErrNotFound, err)
	}
	return newFetchError(collection, ErrNetwork, err)
}

type scanner interface {
	Scan(dest ...any) error
}

// queryRows runs the query and scans every row with scan. Any scan failure
// aborts the whole fetch so a partial collection never reaches the cache.
func queryRows[T any](ctx context.Context, db *sql.DB, collection, base string, columns map[string]string, q Query, scan func(scanner) (T, error)) ([]T, error) {
	stmt, args, err := buildQuery(base, columns, q)
	if err != nil {
		return nil, newFetchError(collection, ErrDecode, err)
	}
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, classify(collection, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, newFetchError(collection, ErrDecode, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(collection, err)
	}
	return out, nil
}

func (s *Postgres) Products(ctx context.Context, q Query) ([]domain.Product, error) {
	return queryRows(ctx, s.db, "products", selectProducts, productColumns, q, scanProduct)
}

func (s *Postgres) Brands(ctx context.Context, q Query) ([]domain.Brand, error) {
	return queryRows(ctx, s.db, "brands", selectBrands, brandColumns, q, scanBrand)
}

func (s *Postgres) Categories(ctx context.Context, q Query) ([]domain.Category, error) {
	return queryRows(ctx, s.db, "categories", selectCategories, categoryColumns, q, scanCategory)
}

func (s *Postgres) Features(ctx context.Context, q Query) ([]domain.Feature, error) {
	return queryRows(ctx, s.db, "features", selectFeatures, featureColumns, q, scanFeature)
}

func scanProduct(row scanner) (domain.Product, error) {
	var (
		p         domain.Product
		desc      sql.NullString
		original  decimal.NullDecimal
		gender    string
		closure   sql.NullString
		image     sql.NullString
		sizes     []string
		pacemaker sql.NullBool
		rating    sql.NullFloat64
		brandName sql.NullString
	)
	err := row.Scan(&p.ID, &p.BrandID, &p.CategoryID, &p.Name, &p.Slug, &desc, &p.Price, &original,
		&p.Currency, &gender, &closure, &image, &p.ProductURL, &p.IsAvailable,
		pq.Array(&sizes), &pacemaker, &p.ReviewCount, &rating, &p.SaveCount,
		&p.CreatedAt, &p.UpdatedAt, &brandName)
	if err != nil {
		return domain.Product{}, err
	}
	g, ok := domain.ParseGender(gender)
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: unknown gender %q", p.ID, gender)
	}
	p.Gender = g
	if desc.Valid {
		p.Description = &desc.String
	}
	if original.Valid {
		p.OriginalPrice = &original.Decimal
	}
	if closure.Valid {
		ct := domain.ClosureType(closure.String)
		p.ClosureType = &ct
	}
	if image.Valid {
		p.ImageURL = &image.String
	}
	p.AvailableSizes = sizes
	if pacemaker.Valid {
		p.PacemakerSafe = &pacemaker.Bool
	}
	if rating.Valid {
		p.AverageRating = &rating.Float64
	}
	if brandName.Valid {
		p.BrandName = &brandName.String
	}
	return p, nil
}

func scanBrand(row scanner) (domain.Brand, error) {
	var (
		b    domain.Brand
		desc sql.NullString
		logo sql.NullString
		tier string
	)
	if err := row.Scan(&b.ID, &b.Name, &b.Slug, &desc, &logo, &b.WebsiteURL, &b.IsAdaptiveOnly,
		&b.HasMainstreamLine, &tier, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return domain.Brand{}, err
	}
	pt, ok := domain.ParsePriceTier(tier)
	if !ok {
		return domain.Brand{}, fmt.Errorf("brand %s: unknown price tier %q", b.ID, tier)
	}
	b.PriceTier = pt
	if desc.Valid {
		b.Description = &desc.String
	}
	if logo.Valid {
		b.LogoURL = &logo.String
	}
	return b, nil
}

func scanCategory(row scanner) (domain.Category, error) {
	var (
		c      domain.Category
		desc   sql.NullString
		parent uuid.NullUUID
		typ    string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &desc, &parent, &typ, &c.SortOrder, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Category{}, err
	}
	c.CategoryType = domain.CategoryType(typ)
	if desc.Valid {
		c.Description = &desc.String
	}
	if parent.Valid {
		c.ParentID = &parent.UUID
	}
	return c, nil
}

func scanFeature(row scanner) (domain.Feature, error) {
	var (
		f     domain.Feature
		desc  sql.NullString
		cat   string
		terms []string
		badge sql.NullString
	)
	if err := row.Scan(&f.ID, &f.Name, &f.Slug, &desc, &cat, pq.Array(&terms), &f.DisplayName, &badge,
		&f.IsActive, &f.SortOrder, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return domain.Feature{}, err
	}
	f.Category = domain.FeatureCategory(cat)
	f.SearchTerms = terms
	if desc.Valid {
		f.Description = &desc.String
	}
	if badge.Valid {
		f.BadgeText = &badge.String
	}
	return f, nil
}
