package product

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/wichananm65/able-backend/internal/domain"
	"github.com/wichananm65/able-backend/internal/preference"
	"github.com/wichananm65/able-backend/internal/user"
)

type Handler struct {
	service  *Service
	sessions *preference.Sessions
}

// NewHandler serves product lists. sessions backs the for-you feed and may
// be nil when protected routes are not registered.
func NewHandler(service *Service, sessions *preference.Sessions) *Handler {
	return &Handler{service: service, sessions: sessions}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/products/featured", h.getFeatured)
	app.Get("/api/v1/products/new-arrivals", h.getNewArrivals)
	app.Get("/api/v1/products/on-sale", h.getOnSale)
	app.Get("/api/v1/product/category/:id", h.getByCategory)
	app.Get("/api/v1/product/brand/:id", h.getByBrand)
	app.Get("/api/v1/product/:id", h.getProduct)
	app.Get("/api/v1/search", h.search)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/products/for-you", h.getForYou)
}

func unavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "catalog unavailable", "items": []domain.Product{}})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg})
}

func list(c *fiber.Ctx, items []domain.Product, err error) error {
	if err != nil {
		return unavailable(c)
	}
	return c.JSON(items)
}

// queryLimit reads ?limit=; invalid or non-positive values mean def.
func queryLimit(c *fiber.Ctx, def int) int {
	if l := c.Query("limit"); l != "" {
		if v, err := cast.ToIntE(l); err == nil && v > 0 {
			return v
		}
	}
	return def
}

// preferencesFromQuery builds an ad-hoc profile from gender, priceTier and
// features query parameters.
func preferencesFromQuery(c *fiber.Ctx) (domain.Preferences, error) {
	prefs := domain.DefaultPreferences()
	if raw := c.Query("gender"); raw != "" {
		g, ok := domain.ParseGender(raw)
		if !ok {
			return prefs, errors.New("invalid gender")
		}
		prefs.Gender = &g
	}
	if raw := c.Query("priceTier"); raw != "" {
		t, ok := domain.ParsePriceTier(raw)
		if !ok {
			return prefs, errors.New("invalid price tier")
		}
		prefs.PriceTier = &t
	}
	for _, id := range strings.Split(c.Query("features"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			prefs.FeatureIDs[id] = struct{}{}
		}
	}
	return prefs, nil
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	prefs, err := preferencesFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	opts := Options{Search: c.Query("q"), Limit: queryLimit(c, DefaultLimit)}
	if raw := c.Query("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "invalid category id")
		}
		opts.CategoryID = &id
	}
	items, err := h.service.Query(c.UserContext(), prefs, opts)
	return list(c, items, err)
}

func (h *Handler) getForYou(c *fiber.Ctx) error {
	uid, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	prefs := h.sessions.Get(c.UserContext(), uid).Snapshot()
	items, err := h.service.ForYou(c.UserContext(), prefs)
	return list(c, items, err)
}

func (h *Handler) getFeatured(c *fiber.Ctx) error {
	items, err := h.service.Featured(c.UserContext())
	return list(c, items, err)
}

func (h *Handler) getNewArrivals(c *fiber.Ctx) error {
	items, err := h.service.NewArrivals(c.UserContext())
	return list(c, items, err)
}

func (h *Handler) getOnSale(c *fiber.Ctx) error {
	items, err := h.service.OnSale(c.UserContext())
	return list(c, items, err)
}

func (h *Handler) getByCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid category id")
	}
	items, err := h.service.ProductsForCategory(c.UserContext(), id, queryLimit(c, DefaultLimit))
	return list(c, items, err)
}

func (h *Handler) getByBrand(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid brand id")
	}
	items, err := h.service.ProductsForBrand(c.UserContext(), id, queryLimit(c, DefaultLimit))
	return list(c, items, err)
}

func (h *Handler) search(c *fiber.Ctx) error {
	items, err := h.service.SearchByText(c.UserContext(), c.Query("q"), queryLimit(c, DefaultLimit))
	return list(c, items, err)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	p, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	}
	if err != nil {
		return unavailable(c)
	}
	return c.JSON(p)
}
