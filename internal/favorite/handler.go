package favorite

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wichananm65/able-backend/internal/user"
)

// Handler serves the saved-items endpoints.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/saved", h.getSaved)
	app.Get("/api/v1/saved/status", h.getStatus)
	app.Post("/api/v1/saved", h.save)
	app.Delete("/api/v1/saved", h.remove)
}

type savedRequest struct {
	ProductID string `json:"productId"`
}

func parseRequest(c *fiber.Ctx) (uuid.UUID, error) {
	payload := new(savedRequest)
	if err := c.BodyParser(payload); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(payload.ProductID)
}

func (h *Handler) save(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	productID, err := parseRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}

	item, err := h.service.Save(c.UserContext(), userID, productID)
	if err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		case errors.Is(err, ErrAlreadySaved):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "product already saved"})
		default:
			zap.L().Error("save product", zap.Int("user_id", userID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to save product"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) remove(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	productID, err := parseRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}

	if err := h.service.Remove(c.UserContext(), userID, productID); err != nil {
		if errors.Is(err, ErrNotSaved) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not saved"})
		}
		zap.L().Error("remove saved product", zap.Int("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to remove product"})
	}
	return c.JSON(fiber.Map{"productId": productID})
}

func (h *Handler) getSaved(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	entries, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		zap.L().Error("list saved products", zap.Int("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to list saved products"})
	}
	out := make([]entryView, len(entries))
	for i, e := range entries {
		out[i] = viewOf(e)
	}
	return c.JSON(out)
}

// getStatus answers ?ids=a,b with a productId -> saved map.
func (h *Handler) getStatus(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	var ids []uuid.UUID
	for _, raw := range strings.Split(c.Query("ids"), ",") {
		if raw = strings.TrimSpace(raw); raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
		}
		ids = append(ids, id)
	}
	saved, err := h.service.Saved(c.UserContext(), userID, ids)
	if err != nil {
		zap.L().Error("saved status", zap.Int("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to read saved status"})
	}
	out := make(map[string]bool, len(saved))
	for id, ok := range saved {
		out[id.String()] = ok
	}
	return c.JSON(out)
}
