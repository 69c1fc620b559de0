package source

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/able-backend/internal/domain"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS brands (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT,
		logo_url TEXT,
		website_url TEXT NOT NULL DEFAULT '',
		is_adaptive_only BOOLEAN NOT NULL DEFAULT false,
		has_mainstream_line BOOLEAN NOT NULL DEFAULT false,
		price_tier TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT,
		parent_id UUID REFERENCES categories(id),
		category_type TEXT NOT NULL,
		sort_order INT NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS adaptive_features (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT,
		category TEXT NOT NULL,
		search_terms TEXT[] NOT NULL DEFAULT '{}',
		display_name TEXT NOT NULL,
		badge_text TEXT,
		is_active BOOLEAN NOT NULL DEFAULT true,
		sort_order INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		brand_id UUID NOT NULL REFERENCES brands(id),
		category_id UUID NOT NULL REFERENCES categories(id),
		name TEXT NOT NULL,
		slug TEXT NOT NULL,
		description TEXT,
		price NUMERIC(10,2) NOT NULL,
		original_price NUMERIC(10,2),
		currency TEXT NOT NULL DEFAULT 'USD',
		gender TEXT NOT NULL,
		closure_type TEXT,
		image_url TEXT,
		product_url TEXT NOT NULL DEFAULT '',
		is_available BOOLEAN NOT NULL DEFAULT true,
		available_sizes TEXT[] NOT NULL DEFAULT '{}',
		pacemaker_safe BOOLEAN,
		review_count INT NOT NULL DEFAULT 0,
		average_rating DOUBLE PRECISION,
		save_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS products_category_idx ON products (category_id)`,
	`CREATE INDEX IF NOT EXISTS products_brand_idx ON products (brand_id)`,
}

// EnsureSchema creates the catalog tables when they are missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "ensure catalog schema")
		}
	}
	return nil
}

const (
	upsertBrand = `
		INSERT INTO brands (id, name, slug, description, logo_url, website_url, is_adaptive_only, has_mainstream_line, price_tier, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, slug = EXCLUDED.slug, description = EXCLUDED.description,
			logo_url = EXCLUDED.logo_url, website_url = EXCLUDED.website_url, is_adaptive_only = EXCLUDED.is_adaptive_only,
			has_mainstream_line = EXCLUDED.has_mainstream_line, price_tier = EXCLUDED.price_tier,
			is_active = EXCLUDED.is_active, updated_at = now()`
	upsertCategory = `
		INSERT INTO categories (id, name, slug, description, parent_id, category_type, sort_order, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, slug = EXCLUDED.slug, description = EXCLUDED.description,
			parent_id = EXCLUDED.parent_id, category_type = EXCLUDED.category_type, sort_order = EXCLUDED.sort_order,
			is_active = EXCLUDED.is_active, updated_at = now()`
	upsertFeature = `
		INSERT INTO adaptive_features (id, name, slug, description, category, search_terms, display_name, badge_text, is_active, sort_order)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, slug = EXCLUDED.slug, description = EXCLUDED.description,
			category = EXCLUDED.category, search_terms = EXCLUDED.search_terms, display_name = EXCLUDED.display_name,
			badge_text = EXCLUDED.badge_text, is_active = EXCLUDED.is_active, sort_order = EXCLUDED.sort_order,
			updated_at = now()`
	upsertProduct = `
		INSERT INTO products (id, brand_id, category_id, name, slug, description, price, original_price, currency, gender,
			closure_type, image_url, product_url, is_available, available_sizes, pacemaker_safe, review_count,
			average_rating, save_count, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		ON CONFLICT (id) DO UPDATE SET brand_id = EXCLUDED.brand_id, category_id = EXCLUDED.category_id,
			name = EXCLUDED.name, slug = EXCLUDED.slug, description = EXCLUDED.description, price = EXCLUDED.price,
			original_price = EXCLUDED.original_price, currency = EXCLUDED.currency, gender = EXCLUDED.gender,
			closure_type = EXCLUDED.closure_type, image_url = EXCLUDED.image_url, product_url = EXCLUDED.product_url,
			is_available = EXCLUDED.is_available, available_sizes = EXCLUDED.available_sizes,
			pacemaker_safe = EXCLUDED.pacemaker_safe, review_count = EXCLUDED.review_count,
			average_rating = EXCLUDED.average_rating, save_count = EXCLUDED.save_count, updated_at = EXCLUDED.updated_at`
)

// Import upserts a catalog in one transaction, parents before children.
func (s *Postgres) Import(ctx context.Context, c Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin import")
	}
	defer tx.Rollback()

	for _, b := range c.Brands {
		if _, err := tx.ExecContext(ctx, upsertBrand, b.ID, b.Name, b.Slug, b.Description, b.LogoURL, b.WebsiteURL,
			b.IsAdaptiveOnly, b.HasMainstreamLine, string(b.PriceTier), b.IsActive); err != nil {
			return errors.Wrapf(err, "import brand %s", b.Slug)
		}
	}
	// roots first so parent_id references resolve
	ordered := append(rootsFirst(c), nonRoots(c)...)
	for _, cat := range ordered {
		if _, err := tx.ExecContext(ctx, upsertCategory, cat.ID, cat.Name, cat.Slug, cat.Description, cat.ParentID,
			string(cat.CategoryType), cat.SortOrder, cat.IsActive); err != nil {
			return errors.Wrapf(err, "import category %s", cat.Slug)
		}
	}
	for _, f := range c.Features {
		if _, err := tx.ExecContext(ctx, upsertFeature, f.ID, f.Name, f.Slug, f.Description, string(f.Category),
			pq.Array(f.SearchTerms), f.DisplayName, f.BadgeText, f.IsActive, f.SortOrder); err != nil {
			return errors.Wrapf(err, "import feature %s", f.ID)
		}
	}
	for _, p := range c.Products {
		var closure sql.NullString
		if p.ClosureType != nil {
			closure = sql.NullString{String: string(*p.ClosureType), Valid: true}
		}
		original := decimal.NullDecimal{}
		if p.OriginalPrice != nil {
			original = decimal.NullDecimal{Decimal: *p.OriginalPrice, Valid: true}
		}
		sizes := p.AvailableSizes
		if sizes == nil {
			sizes = []string{}
		}
		if _, err := tx.ExecContext(ctx, upsertProduct, p.ID, p.BrandID, p.CategoryID, p.Name, p.Slug, p.Description,
			p.Price, original, p.Currency, string(p.Gender), closure, p.ImageURL, p.ProductURL, p.IsAvailable,
			pq.Array(sizes), p.PacemakerSafe, p.ReviewCount, p.AverageRating, p.SaveCount, p.CreatedAt, p.UpdatedAt); err != nil {
			return errors.Wrapf(err, "import product %s", p.Slug)
		}
	}
	return errors.Wrap(tx.Commit(), "commit import")
}

func rootsFirst(c Catalog) []domain.Category {
	out := make([]domain.Category, 0, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.IsRoot() {
			out = append(out, cat)
		}
	}
	return out
}

func nonRoots(c Catalog) []domain.Category {
	out := make([]domain.Category, 0, len(c.Categories))
	for _, cat := range c.Categories {
		if !cat.IsRoot() {
			out = append(out, cat)
		}
	}
	return out
}
