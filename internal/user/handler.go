package user

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	secret   string
	allowDev bool
	now      func() time.Time
}

// NewHandler serves the dev token endpoint; it answers 403 unless allowDev is set.
func NewHandler(secret string, allowDev bool) *Handler {
	return &Handler{secret: secret, allowDev: allowDev, now: time.Now}
}

type tokenRequest struct {
	UserID int `json:"userId"`
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/dev/token", h.issueToken)
}

func (h *Handler) issueToken(c *fiber.Ctx) error {
	if !h.allowDev {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "not allowed"})
	}
	payload := new(tokenRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.UserID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "userId is required"})
	}
	signed, err := IssueToken(h.secret, payload.UserID, h.now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}
	return c.JSON(fiber.Map{"token": signed, "userId": payload.UserID})
}
