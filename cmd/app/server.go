package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/wichananm65/able-backend/internal/app"
	"github.com/wichananm65/able-backend/internal/catalog"
	"github.com/wichananm65/able-backend/internal/favorite"
	"github.com/wichananm65/able-backend/internal/preference"
	"github.com/wichananm65/able-backend/internal/product"
	"github.com/wichananm65/able-backend/internal/user"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newServer builds the fiber app. Public routes are registered before the
// jwt middleware, protected routes after it.
func newServer(a *app.Application) *fiber.App {
	server := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	setupCORS(server)
	server.Use(requestLogger)

	userHandler := user.NewHandler(a.Config().JWTSecret, a.Config().AllowDevTokens)
	catalogHandler := catalog.NewHandler(a.Catalog())
	preferenceHandler := preference.NewHandler(a.Sessions())
	productHandler := product.NewHandler(a.Products(), a.Sessions())
	favoriteHandler := favorite.NewHandler(a.Saved())

	userHandler.RegisterPublicRoutes(server)
	catalogHandler.RegisterPublicRoutes(server)
	preferenceHandler.RegisterPublicRoutes(server)
	productHandler.RegisterPublicRoutes(server)

	server.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(a.Config().JWTSecret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	}))

	preferenceHandler.RegisterProtectedRoutes(server)
	productHandler.RegisterProtectedRoutes(server)
	favoriteHandler.RegisterProtectedRoutes(server)
	catalogHandler.RegisterProtectedRoutes(server)

	return server
}

func setupCORS(server *fiber.App) {
	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	zap.L().Info("request",
		zap.String("method", c.Method()),
		zap.String("url", c.OriginalURL()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("took", time.Since(start)),
	)
	return err
}
