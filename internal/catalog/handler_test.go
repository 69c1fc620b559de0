package catalog

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/able-backend/internal/domain"
	"github.com/wichananm65/able-backend/internal/source"
)

func newCatalogApp(t *testing.T, src source.Source) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := NewHandler(NewStore(src))
	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app)
	return app
}

func TestBrandRoutes(t *testing.T) {
	app := newCatalogApp(t, newCountingSource(t))

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/brands?adaptive=true", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var brands []domain.Brand
	body, _ := io.ReadAll(res.Body)
	if err := json.Unmarshal(body, &brands); err != nil {
		t.Fatalf("decode: %v (%s)", err, body)
	}
	if len(brands) != 3 {
		t.Fatalf("expected 3 adaptive-only brands, got %d", len(brands))
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/brands?tier=cheap", nil))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for bad tier, got %d", res.StatusCode)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/brand/iz-adaptive", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for known brand, got %d", res.StatusCode)
	}
	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/brand/unknown", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown brand, got %d", res.StatusCode)
	}
}

func TestCategoryRoutes(t *testing.T) {
	app := newCatalogApp(t, newCountingSource(t))

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/category/not-a-uuid/children", nil))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", res.StatusCode)
	}
	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/category/cccc3333-3333-3333-3333-333333333333/children", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for known category, got %d", res.StatusCode)
	}
	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/category/footwear", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for category slug, got %d", res.StatusCode)
	}
	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/categories?root=true", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for root categories, got %d", res.StatusCode)
	}
}

func TestFeatureGroupsRoute(t *testing.T) {
	app := newCatalogApp(t, newCountingSource(t))

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/features", nil))
	body, _ := io.ReadAll(res.Body)
	var groups []domain.FeatureGroup
	if err := json.Unmarshal(body, &groups); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(groups) != 4 || groups[0].Title != "Closures" {
		t.Fatalf("unexpected groups %s", body)
	}
}

func TestUnavailableCatalog(t *testing.T) {
	src := newCountingSource(t)
	src.setErr(&source.FetchError{Collection: "brands", Reason: source.ErrNetwork})
	app := newCatalogApp(t, src)

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/brands", nil))
	if res.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503 with an empty cache, got %d", res.StatusCode)
	}
}

func TestRefreshRoute(t *testing.T) {
	src := newCountingSource(t)
	app := newCatalogApp(t, src)

	res, _ := app.Test(httptest.NewRequest("POST", "/api/v1/catalog/refresh?kind=products", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	res, _ = app.Test(httptest.NewRequest("POST", "/api/v1/catalog/refresh?kind=products", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if got := src.count(source.KindProducts); got != 2 {
		t.Fatalf("forced refresh route must always fetch, got %d", got)
	}
	res, _ = app.Test(httptest.NewRequest("POST", "/api/v1/catalog/refresh?kind=orders", nil))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", res.StatusCode)
	}
}
