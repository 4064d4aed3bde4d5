package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/localnerve/tuskfish/internal/config"
	"github.com/localnerve/tuskfish/internal/database"
	"github.com/localnerve/tuskfish/internal/handlers"
	"github.com/localnerve/tuskfish/internal/logging"
	"github.com/localnerve/tuskfish/internal/middleware"
	"github.com/localnerve/tuskfish/internal/models"
	"github.com/localnerve/tuskfish/internal/router"
	"github.com/localnerve/tuskfish/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Connect and migrate
	db, err := database.Connect(cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("db_type", cfg.DBType).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logging.Fatal().Err(err).Msg("Failed to run migrations")
	}

	tf, err := database.New(db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load schema")
	}

	registry := models.NewRegistry()
	links := models.Links{SiteURL: cfg.SiteURL}
	site := &handlers.Site{
		Content:           services.NewContentModel(tf, registry, links, cfg.SearchMinLength),
		Experts:           services.NewExpertModel(tf, registry, links),
		Registry:          registry,
		PaginationLimit:   cfg.PaginationLimit,
		GalleryPagination: cfg.GalleryPagination,
	}

	front := handlers.NewFrontController(router.Default(), cfg.AdminAPIKey)
	site.Register(front)
	if missing := front.Missing(); len(missing) > 0 {
		logging.Fatal().Strs("controllers", missing).Msg("Routes without a controller")
	}
	if cfg.AdminAPIKey == "" {
		logging.Warn().Msg("ADMIN_API_KEY is not set, admin routes are disabled")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("tuskfish")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(c.UserContext(), cfg, tf)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// Every other path goes through the front controller
	app.Use(middleware.RequestContextMiddleware())
	app.All("/*", front.Handle)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logging.Info().Msg("Gracefully shutting down...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logging.Info().Str("port", cfg.Port).Strs("routes", router.Default().Paths()).Msg("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logging.Fatal().Err(err).Msg("Failed to start server")
	}

	logging.Info().Msg("Server stopped")
}
