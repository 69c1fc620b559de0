package preference

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/able-backend/internal/domain"
	"github.com/wichananm65/able-backend/internal/user"
)

type Handler struct {
	sessions *Sessions
}

func NewHandler(s *Sessions) *Handler {
	return &Handler{sessions: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/challenges", h.getChallenges)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/preferences", h.getPreferences)
	app.Put("/api/v1/preferences/gender", h.setGender)
	app.Put("/api/v1/preferences/price-tier", h.setPriceTier)
	app.Post("/api/v1/preferences/features/:id/toggle", h.toggleFeature)
	app.Post("/api/v1/preferences/challenges/:slug", h.selectChallenge)
	app.Put("/api/v1/preferences/mode", h.setMode)
	app.Delete("/api/v1/preferences", h.clear)
}

func (h *Handler) model(c *fiber.Ctx) (*Model, error) {
	uid, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return nil, err
	}
	return h.sessions.Get(c.UserContext(), uid), nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
}

func (h *Handler) getChallenges(c *fiber.Ctx) error {
	return c.JSON(Challenges)
}

func (h *Handler) getPreferences(c *fiber.Ctx) error {
	m, err := h.model(c)
	if err != nil {
		return unauthorized(c)
	}
	return c.JSON(m.Snapshot())
}

func (h *Handler) setGender(c *fiber.Ctx) error {
	m, err := h.model(c)
	if err != nil {
		return unauthorized(c)
	}
	var body struct {
		Gender *string `json:"gender"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	if body.Gender == nil || *body.Gender == "" {
		return c.JSON(m.SetGender(nil))
	}
	g, ok := domain.ParseGender(*body.Gender)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid gender"})
	}
	return c.JSON(m.SetGender(&g))
}

func (h *Handler) setPriceTier(c *fiber.Ctx) error {
	m, err := h.model(c)
	if err != nil {
		return unauthorized(c)
	}
	var body struct {
		PriceTier *string `json:"priceTier"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	if body.PriceTier == nil || *body.PriceTier == "" {
		return c.JSON(m.SetPriceTier(nil))
	}
	t, ok := domain.ParsePriceTier(*body.PriceTier)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid price tier"})
	}
	return c.JSON(m.SetPriceTier(&t))
}

func (h *Handler) toggleFeature(c *fiber.Ctx) error {
	m, err := h.model(c)
	if err != nil {
		return unauthorized(c)
	}
	return c.JSON(m.ToggleFeature(c.Params("id")))
}

func (h *Handler) selectChallenge(c *fiber.Ctx) error {
	m, err := h.model(c)
	if err != nil {
		return unauthorized(c)
	}
	return c.JSON(m.SelectChallenge(c.Params("slug")))
}

func (h *Handler) setMode(c *fiber.Ctx) error {
	m, err := h.model(c)
	if err != nil {
		return unauthorized(c)
	}
	var body struct {
		Mode string `json:"mode"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	mode, ok := domain.ParseUserMode(body.Mode)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid mode"})
	}
	return c.JSON(m.SetMode(mode))
}

func (h *Handler) clear(c *fiber.Ctx) error {
	m, err := h.model(c)
	if err != nil {
		return unauthorized(c)
	}
	return c.JSON(m.Clear())
}
