package catalog

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/wichananm65/able-backend/internal/domain"
	"github.com/wichananm65/able-backend/internal/source"
)

type Handler struct {
	store *Store
}

func NewHandler(s *Store) *Handler {
	return &Handler{store: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/brands", h.getBrands)
	app.Get("/api/v1/brand/:slug", h.getBrand)
	app.Get("/api/v1/categories", h.getCategories)
	app.Get("/api/v1/category/:id/children", h.getChildren)
	app.Get("/api/v1/category/:slug", h.getCategory)
	app.Get("/api/v1/features", h.getFeatures)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/catalog/refresh", h.refresh)
}

// ensure loads kind if stale. It reports false after writing a 503 when the
// fetch failed and nothing is cached.
func (h *Handler) ensure(c *fiber.Ctx, kind source.Kind, empty func() bool) (bool, error) {
	err := h.store.Refresh(c.UserContext(), kind, false)
	if err == nil {
		return true, nil
	}
	if empty() {
		return false, c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "catalog unavailable", "items": []any{}})
	}
	zap.L().Warn("serving stale catalog data", zap.String("kind", string(kind)), zap.Error(err))
	return true, nil
}

func (h *Handler) getBrands(c *fiber.Ctx) error {
	if ok, err := h.ensure(c, source.KindBrands, func() bool { return len(h.store.Brands()) == 0 }); !ok {
		return err
	}
	if raw := c.Query("tier"); raw != "" {
		tier, ok := domain.ParsePriceTier(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid price tier"})
		}
		return c.JSON(h.store.BrandsForPriceTier(tier))
	}
	if cast.ToBool(c.Query("adaptive")) {
		return c.JSON(h.store.AdaptiveOnlyBrands())
	}
	if cast.ToBool(c.Query("mainstream")) {
		return c.JSON(h.store.MainstreamBrands())
	}
	return c.JSON(h.store.Brands())
}

func (h *Handler) getBrand(c *fiber.Ctx) error {
	if ok, err := h.ensure(c, source.KindBrands, func() bool { return len(h.store.Brands()) == 0 }); !ok {
		return err
	}
	b, ok := h.store.BrandBySlug(c.Params("slug"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "brand not found"})
	}
	return c.JSON(b)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	if ok, err := h.ensure(c, source.KindCategories, func() bool { return len(h.store.Categories()) == 0 }); !ok {
		return err
	}
	if cast.ToBool(c.Query("root")) {
		return c.JSON(h.store.RootCategories())
	}
	return c.JSON(h.store.Categories())
}

func (h *Handler) getCategory(c *fiber.Ctx) error {
	if ok, err := h.ensure(c, source.KindCategories, func() bool { return len(h.store.Categories()) == 0 }); !ok {
		return err
	}
	cat, ok := h.store.CategoryBySlug(c.Params("slug"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "category not found"})
	}
	return c.JSON(cat)
}

func (h *Handler) getChildren(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid category id"})
	}
	if ok, err := h.ensure(c, source.KindCategories, func() bool { return len(h.store.Categories()) == 0 }); !ok {
		return err
	}
	if _, ok := h.store.Category(id); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "category not found"})
	}
	return c.JSON(h.store.Children(id))
}

func (h *Handler) getFeatures(c *fiber.Ctx) error {
	if ok, err := h.ensure(c, source.KindFeatures, func() bool { return len(h.store.Features()) == 0 }); !ok {
		return err
	}
	if raw := c.Query("category"); raw != "" {
		return c.JSON(h.store.FeaturesFor(domain.FeatureCategory(raw)))
	}
	return c.JSON(h.store.FeatureGroups())
}

func (h *Handler) refresh(c *fiber.Ctx) error {
	raw := c.Query("kind")
	if raw == "" {
		if err := h.store.RefreshAll(c.UserContext(), true); err != nil {
			return refreshFailed(c, err)
		}
		return c.JSON(fiber.Map{"message": "refreshed", "kinds": source.Kinds})
	}
	kind, ok := source.ParseKind(raw)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown kind"})
	}
	if err := h.store.Refresh(c.UserContext(), kind, true); err != nil {
		return refreshFailed(c, err)
	}
	return c.JSON(fiber.Map{"message": "refreshed", "kinds": []source.Kind{kind}})
}

func refreshFailed(c *fiber.Ctx, err error) error {
	status := fiber.StatusServiceUnavailable
	if errors.Is(err, source.ErrNotFound) {
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{"message": err.Error()})
}
