package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/DarthQach/news-cast/internal/api"
	"github.com/DarthQach/news-cast/internal/cache"
	"github.com/DarthQach/news-cast/internal/config"
	"github.com/DarthQach/news-cast/internal/feed"
	"github.com/DarthQach/news-cast/internal/feedlist"
	"github.com/DarthQach/news-cast/internal/logger"
	"github.com/DarthQach/news-cast/internal/storage"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: cfg.LogFile,
		Pretty: cfg.LogPretty,
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting application...")

	ctx := context.Background()

	tracker := newTracker(cfg)
	defer func() {
		log.Info().Msg("Closing feed status tracker...")
		if err := tracker.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing feed status tracker")
		}
	}()

	// The feed list is read once and fixed for the life of the process
	sources := feedlist.NewLoader(newObjectReader(ctx, cfg)).Load(ctx, cfg.FeedsFile)

	processor := feed.NewProcessor(
		feed.NewFetcher(cfg.FetchTimeout, cfg.UserAgent),
		tracker,
		feed.Settings{
			Sources:        sources,
			Topics:         cfg.Topics,
			MaxConcurrency: cfg.MaxConcurrency,
		},
	)

	app := api.NewApp(cfg, processor, tracker)

	go func() {
		log.Info().Str("port", cfg.Port).Int("feeds", len(sources)).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// newTracker connects to Redis when configured and falls back to memory.
func newTracker(cfg *config.Config) cache.Tracker {
	log := logger.Get()

	if cfg.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, keeping feed status in memory")
		return cache.NewMemoryTracker()
	}

	tracker, err := cache.NewRedisTracker(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, keeping feed status in memory")
		return cache.NewMemoryTracker()
	}
	return tracker
}

// newObjectReader returns an R2 store when the feed list lives in a bucket.
func newObjectReader(ctx context.Context, cfg *config.Config) feedlist.ObjectReader {
	if _, _, err := storage.ParseObjectURL(cfg.FeedsFile); errors.Is(err, storage.ErrNotObjectURL) {
		return nil
	}

	store, err := storage.NewR2Store(ctx, cfg)
	if err != nil {
		log := logger.Get()
		log.Error().Err(err).Msg("Failed to initialize object store")
		return nil
	}
	return store
}
