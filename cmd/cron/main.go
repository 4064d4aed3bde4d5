// Command cron takes expired content offline, once or on CRON_SCHEDULE.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tuskfish/internal/config"
	"github.com/localnerve/tuskfish/internal/database"
	"github.com/localnerve/tuskfish/internal/logging"
	"github.com/localnerve/tuskfish/internal/metrics"
	"github.com/localnerve/tuskfish/internal/services"
	"github.com/robfig/cron/v3"
)

func main() {
	once := flag.Bool("once", false, "run the expiry sweep once and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Connect(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	tf, err := database.New(db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load schema")
	}

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		n, err := services.ExpireContent(ctx, tf, time.Now())
		if err != nil {
			logging.Error().Err(err).Msg("Expiry sweep failed")
			return
		}
		logging.Info().Int64("expired", n).Msg("Expiry sweep complete")
	}

	// A single run exits before any scrape; its count is only logged.
	if *once {
		sweep()
		return
	}

	var metricsApp *fiber.App
	if cfg.CronMetricsPort != "" {
		metricsApp = fiber.New(fiber.Config{DisableStartupMessage: true})
		metricsApp.Get("/metrics", metrics.Handler())
		go func() {
			if err := metricsApp.Listen(":" + cfg.CronMetricsPort); err != nil {
				logging.Error().Err(err).Str("port", cfg.CronMetricsPort).Msg("Metrics listener stopped")
			}
		}()
		logging.Info().Str("port", cfg.CronMetricsPort).Msg("Serving /metrics")
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.CronSchedule, sweep); err != nil {
		logging.Fatal().Err(err).Str("schedule", cfg.CronSchedule).Msg("Invalid cron schedule")
	}
	scheduler.Start()
	logging.Info().Str("schedule", cfg.CronSchedule).Msg("Expiry scheduler started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logging.Info().Msg("Stopping scheduler...")
	<-scheduler.Stop().Done()
	if metricsApp != nil {
		_ = metricsApp.ShutdownWithTimeout(5 * time.Second)
	}
}
