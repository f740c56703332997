package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/greensquarecapital/gsc_backend/internal/core/services"
	"github.com/greensquarecapital/gsc_backend/internal/platform/config"
	"github.com/greensquarecapital/gsc_backend/internal/platform/tariffs"
	"github.com/greensquarecapital/gsc_backend/internal/repositories/database/pgsql"
	"github.com/greensquarecapital/gsc_backend/pkg/database"
)

// The sweeper is the only writer of the Active -> Expired transition. It runs
// the expiry sweep on a cron schedule so listings whose activation window has
// passed stop appearing in browse results even when nobody touches them.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	repos := pgsql.NewRepositoryProvider(dbPool)
	listingService := services.NewListingService(repos.ListingRepo, repos.InvestmentRepo, tariffs.Default())

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		now := time.Now().UTC()
		expired, err := listingService.ExpireDueListings(ctx, now)
		if err != nil {
			logger.Error("Expiry sweep failed", slog.String("error", err.Error()))
			return
		}
		if expired > 0 {
			logger.Info("Expiry sweep completed", slog.Int64("listings_expired", expired))
		}
	}

	// Schedule uses the six-field form with a seconds column.
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.ExpirySweepSchedule, sweep); err != nil {
		logger.Error("Invalid sweep schedule", slog.String("schedule", cfg.ExpirySweepSchedule), slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Run once at startup so a long-stopped sweeper catches up immediately.
	sweep()

	c.Start()
	logger.Info("Sweeper started", slog.String("schedule", cfg.ExpirySweepSchedule))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Sweeper shutting down")
	<-c.Stop().Done()
}
