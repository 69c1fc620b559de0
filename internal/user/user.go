// Package user is the authentication stub: it issues development tokens and
// reads the caller's id from a verified JWT.
package user

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cast"
)

// TokenTTL is how long issued tokens stay valid.
const TokenTTL = 72 * time.Hour

var ErrEmptySecret = errors.New("jwt secret is empty")

// IssueToken signs an HS256 token carrying the user_id claim.
func IssueToken(secret string, userID int, now time.Time) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// GetUserIDFromCtx extracts the user_id claim from the JWT token stored
// in `c.Locals("user")` by the jwt middleware.
func GetUserIDFromCtx(c *fiber.Ctx) (int, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	raw, ok := claims["user_id"]
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	id, err := cast.ToIntE(raw)
	if err != nil || id <= 0 {
		return 0, fiber.ErrUnauthorized
	}
	return id, nil
}
