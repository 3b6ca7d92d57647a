// Package server assembles the catalog HTTP application.
package server

import (
	"context"
	"time"

	"katalog/internal/config"
	"katalog/internal/database"
	"katalog/internal/events"
	"katalog/internal/handlers"
	"katalog/internal/metrics"
	"katalog/internal/middleware"
	"katalog/internal/repositories"
	"katalog/internal/services"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// APIPrefix is the versioned mount point; every route is also served at the root.
const APIPrefix = "/api/v1"

const healthTimeout = 2 * time.Second

// Deps are the collaborators the application is built from.
type Deps struct {
	DB        *gorm.DB
	Publisher events.Publisher
	Registry  *prometheus.Registry
	Logger    *zap.Logger
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// New builds the fiber application for cfg.
func New(cfg config.Config, deps Deps) *fiber.App {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := metrics.New(reg)

	productRepo := repositories.NewGORMProductRepository(deps.DB)
	userRepo := repositories.NewGORMUserRepository(deps.DB)

	productService := services.NewProductService(productRepo, deps.Publisher, m, log.Named("products"))
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)

	guard := middleware.NewGuard(cfg.APIKey, authService, m, log.Named("auth"))
	productHandler := handlers.NewProductHandler(productService, guard, cfg.WriteRequiresAPIKey, log.Named("products"))
	authHandler := handlers.NewAuthHandler(authService, guard, log.Named("auth"))

	app := fiber.New(fiber.Config{
		AppName:               "katalog",
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          handlers.ErrorHandler(log),
	})

	app.Use(middleware.Instrument(m))
	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,x-api-key,If-None-Match",
	}))
	app.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()
		if err := database.Ping(ctx, deps.DB); err != nil {
			log.Warn("health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unhealthy",
				"database": "unreachable",
			})
		}
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"database": "connected",
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	for _, router := range []fiber.Router{app, app.Group(APIPrefix)} {
		authHandler.RegisterRoutes(router)
		productHandler.RegisterRoutes(router)
	}

	return app
}
