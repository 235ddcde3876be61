// Package app assembles the Fiber application: middleware, services and
// routes over a repository set.
package app

import (
	"time"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// New builds the HTTP application. publisher may be nil.
func New(cfg config.Config, repos repositories.Set, publisher services.EventPublisher, log *zap.Logger) *fiber.App {
	policy := pricing.NewPolicy(cfg.Pricing.FreeShippingThreshold, cfg.Pricing.FlatShippingFee, cfg.Pricing.TaxRate)

	authService := services.NewAuthService(repos.Users, cfg.JWTSecret, cfg.TokenTTL, log.Named("auth"))
	userService := services.NewUserService(repos.Users, log.Named("users"))
	addressService := services.NewAddressService(repos.Users, log.Named("addresses"))
	productService := services.NewProductService(repos.Products, log.Named("products"))
	orderService := services.NewOrderService(repos.Orders, repos.Users, policy, publisher, log.Named("orders"))

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: handlers.ErrorHandler(cfg.IsProduction(), log),
	})

	app.Use(recover.New())
	if !cfg.IsProduction() {
		app.Use(logger.New())
	}
	// Credentialed CORS needs explicit origins; a wildcard gets plain CORS.
	if cfg.CORSOrigin == "" || cfg.CORSOrigin == "*" {
		app.Use(cors.New())
	} else {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigin,
			AllowCredentials: true,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	guards := handlers.Guards{
		Protect:  middleware.Protect(authService),
		Optional: middleware.OptionalAuth(authService),
	}

	api := app.Group("/api")
	// /users/profile and /users/addresses must be registered before /users/:id.
	handlers.NewAuthHandler(authService, !cfg.IsDevelopment()).RegisterRoutes(api, guards)
	handlers.NewAddressHandler(addressService).RegisterRoutes(api, guards)
	handlers.NewUserHandler(userService).RegisterRoutes(api, guards)
	handlers.NewProductHandler(productService).RegisterRoutes(api, guards)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api, guards)

	app.Use(handlers.NotFound)
	return app
}
