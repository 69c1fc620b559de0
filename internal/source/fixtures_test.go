package source

import (
	"context"
	"errors"
	"testing"
)

func TestFixturesDecode(t *testing.T) {
	f, err := NewFixtures()
	if err != nil {
		t.Fatalf("decode fixtures: %v", err)
	}
	ctx := context.Background()

	products, err := f.Products(ctx, Query{})
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	if len(products) != 15 {
		t.Fatalf("expected 15 products, got %d", len(products))
	}
	first := products[0]
	if first.ID != FixtureProductID("p0000001") || first.Name != "Magnetic Button Oxford Shirt" {
		t.Fatalf("unexpected first product %+v", first)
	}
	if first.BrandLabel() != "Tommy Adaptive" {
		t.Fatalf("brand name not denormalized: %q", first.BrandLabel())
	}
	if first.PacemakerSafe == nil || *first.PacemakerSafe {
		t.Fatalf("magnetic product must not be pacemaker safe")
	}
	if first.Slug != "magnetic-button-oxford-shirt" {
		t.Fatalf("unexpected slug %q", first.Slug)
	}

	brands, _ := f.Brands(ctx, Query{})
	categories, _ := f.Categories(ctx, Query{})
	features, _ := f.Features(ctx, Query{})
	if len(brands) != 6 || len(categories) != 6 || len(features) != 8 {
		t.Fatalf("unexpected counts brands=%d categories=%d features=%d", len(brands), len(categories), len(features))
	}
}

func TestFixturesQuery(t *testing.T) {
	f, err := NewFixtures()
	if err != nil {
		t.Fatalf("decode fixtures: %v", err)
	}
	ctx := context.Background()

	newest, err := f.Products(ctx, Query{}.Eq("is_available", true).Order("created_at", false))
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	if newest[0].ID != FixtureProductID("p0000001") || newest[14].ID != FixtureProductID("p0000015") {
		t.Fatalf("unexpected newest-first order")
	}

	oldest, _ := f.Products(ctx, Query{Limit: 2}.Order("created_at", true))
	if len(oldest) != 2 || oldest[0].ID != FixtureProductID("p0000015") {
		t.Fatalf("unexpected oldest-first page %+v", oldest)
	}

	adaptive, _ := f.Brands(ctx, Query{}.Eq("is_adaptive_only", true).Order("name", true))
	if len(adaptive) != 3 || adaptive[0].Name != "IZ Adaptive" || adaptive[2].Name != "Zappos Adaptive" {
		t.Fatalf("unexpected adaptive brands %+v", adaptive)
	}

	features, _ := f.Features(ctx, Query{}.Order("sort_order", false))
	if features[0].ID != "pull-on" {
		t.Fatalf("expected descending sort order, got %q first", features[0].ID)
	}
}

func TestFixturesUnknownColumn(t *testing.T) {
	f, err := NewFixtures()
	if err != nil {
		t.Fatalf("decode fixtures: %v", err)
	}
	_, err = f.Products(context.Background(), Query{}.Eq("colour", "red"))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestFixturesCancelledContext(t *testing.T) {
	f, err := NewFixtures()
	if err != nil {
		t.Fatalf("decode fixtures: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Brands(ctx, Query{})
	if !errors.Is(err, ErrNetwork) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected network error wrapping cancellation, got %v", err)
	}
}

func TestDecodeFixturesBadDocument(t *testing.T) {
	_, err := DecodeFixtures([]byte("products:\n  - key: x\n    price: abc\n    gender: mens\n    brand: 11111111-1111-1111-1111-111111111111\n    category: 11111111-1111-1111-1111-111111111111\n"))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Collection != "products" {
		t.Fatalf("expected products fetch error, got %v", err)
	}
}
