package source

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/wichananm65/able-backend/internal/domain"
)

// productRow is one line of a product export. available_sizes is
// pipe-separated; empty optional columns stay absent.
type productRow struct {
	ID             string `csv:"id"`
	BrandID        string `csv:"brand_id"`
	CategoryID     string `csv:"category_id"`
	Name           string `csv:"name"`
	Slug           string `csv:"slug"`
	Description    string `csv:"description"`
	Price          string `csv:"price"`
	OriginalPrice  string `csv:"original_price"`
	Currency       string `csv:"currency"`
	Gender         string `csv:"gender"`
	ClosureType    string `csv:"closure_type"`
	ImageURL       string `csv:"image_url"`
	ProductURL     string `csv:"product_url"`
	IsAvailable    string `csv:"is_available"`
	AvailableSizes string `csv:"available_sizes"`
	ReviewCount    string `csv:"review_count"`
	AverageRating  string `csv:"average_rating"`
	CreatedAt      string `csv:"created_at"`
}

// DecodeProductsCSV reads a product export. brandNames fills the
// denormalized brand name; now stamps rows without created_at.
func DecodeProductsCSV(r io.Reader, brandNames map[uuid.UUID]string, now time.Time) ([]domain.Product, error) {
	var rows []*productRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, newFetchError("products csv", ErrDecode, err)
	}
	out := make([]domain.Product, 0, len(rows))
	for i, row := range rows {
		p, err := row.toDomain(brandNames, now)
		if err != nil {
			// header is line 1
			return nil, newFetchError("products csv", ErrDecode, fmt.Errorf("line %d: %w", i+2, err))
		}
		out = append(out, p)
	}
	return out, nil
}

func (row *productRow) toDomain(brandNames map[uuid.UUID]string, now time.Time) (domain.Product, error) {
	var (
		p   domain.Product
		err error
	)
	if row.ID == "" {
		p.ID = uuid.New()
	} else if p.ID, err = uuid.Parse(row.ID); err != nil {
		return p, fmt.Errorf("id: %w", err)
	}
	if p.BrandID, err = uuid.Parse(row.BrandID); err != nil {
		return p, fmt.Errorf("brand_id: %w", err)
	}
	if p.CategoryID, err = uuid.Parse(row.CategoryID); err != nil {
		return p, fmt.Errorf("category_id: %w", err)
	}
	if row.Name == "" {
		return p, fmt.Errorf("name is required")
	}
	p.Name = row.Name
	p.Slug = row.Slug
	if p.Slug == "" {
		p.Slug = strings.ReplaceAll(strings.ToLower(row.Name), " ", "-")
	}
	p.Description = optional(row.Description)
	if p.Price, err = decimal.NewFromString(row.Price); err != nil {
		return p, fmt.Errorf("price: %w", err)
	}
	if row.OriginalPrice != "" {
		orig, err := decimal.NewFromString(row.OriginalPrice)
		if err != nil {
			return p, fmt.Errorf("original_price: %w", err)
		}
		p.OriginalPrice = &orig
	}
	p.Currency = row.Currency
	if p.Currency == "" {
		p.Currency = "USD"
	}
	gender, ok := domain.ParseGender(row.Gender)
	if !ok {
		return p, fmt.Errorf("unknown gender %q", row.Gender)
	}
	p.Gender = gender
	if row.ClosureType != "" {
		closure := domain.ClosureType(row.ClosureType)
		p.ClosureType = &closure
	}
	p.ImageURL = optional(row.ImageURL)
	p.ProductURL = row.ProductURL
	p.IsAvailable = row.IsAvailable == "" || cast.ToBool(row.IsAvailable)
	for _, size := range strings.Split(row.AvailableSizes, "|") {
		if size = strings.TrimSpace(size); size != "" {
			p.AvailableSizes = append(p.AvailableSizes, size)
		}
	}
	if row.ReviewCount != "" {
		if p.ReviewCount, err = cast.ToIntE(row.ReviewCount); err != nil {
			return p, fmt.Errorf("review_count: %w", err)
		}
	}
	if row.AverageRating != "" {
		rating, err := cast.ToFloat64E(row.AverageRating)
		if err != nil {
			return p, fmt.Errorf("average_rating: %w", err)
		}
		p.AverageRating = &rating
	}
	p.CreatedAt = now
	if row.CreatedAt != "" {
		if p.CreatedAt, err = time.Parse(time.RFC3339, row.CreatedAt); err != nil {
			return p, fmt.Errorf("created_at: %w", err)
		}
	}
	p.UpdatedAt = p.CreatedAt
	if name, ok := brandNames[p.BrandID]; ok {
		p.BrandName = &name
	}
	return p, nil
}
