package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/DarthQach/news-cast/internal/cache"
	"github.com/DarthQach/news-cast/internal/config"
	"github.com/DarthQach/news-cast/internal/feed"
	"github.com/DarthQach/news-cast/internal/middleware"
)

// NewApp builds the fiber app with middleware and all routes.
func NewApp(cfg *config.Config, processor *feed.Processor, tracker cache.Tracker) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.HTTPTimeout,
		WriteTimeout:          cfg.HTTPTimeout,
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	SetupRoutes(app, NewHandlers(cfg, processor, tracker), cfg)
	return app
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, handlers *Handlers, cfg *config.Config) {
	// Page shell and assets
	app.Get("/", handlers.Index)
	app.Static("/static", cfg.StaticDir)

	// Articles consumed by the page
	app.Get("/api/articles", handlers.GetArticles)

	v1 := app.Group("/api/v1")
	v1.Get("/health", handlers.HealthCheck)
	v1.Get("/feeds", handlers.ListFeeds)

	// Admin endpoints exist only when a key is configured
	if cfg.AdminAPIKey != "" {
		admin := v1.Group("/admin", middleware.AdminOnly(cfg.AdminAPIKey))
		admin.Delete("/feeds/status", handlers.ResetFeedStatus)
	}

	// 404 Handler
	app.Use(middleware.NotFound)
}
