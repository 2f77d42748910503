package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/star/spacedash/internal/api"
	"github.com/star/spacedash/internal/config"
	"github.com/star/spacedash/internal/groundtrack"
	"github.com/star/spacedash/internal/metrics"
	"github.com/star/spacedash/internal/nasa"
	"github.com/star/spacedash/internal/propagation"
	"github.com/star/spacedash/internal/tle"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	cfg, err := config.Load(os.Getenv("SPACEDASH_CONFIG"), logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if l, err := config.ParseLevel(cfg.Log.Level); err == nil {
		level.Set(l)
	}

	store := tle.NewStore()
	loader := tle.NewLoader(
		tle.NewFetcher(logger),
		tle.NewCache(cfg.TLE.CacheDir, cfg.TLE.CacheMaxFiles),
		logger,
	)

	// Serve the last snapshot until the first fetch lands.
	if cat, err := loader.LoadCached(); err != nil {
		logger.Info("no catalog snapshot found, starting without data", "error", err)
	} else {
		store.Set(cat)
		logger.Info("loaded catalog from snapshot",
			"count", cat.Len(),
			"cached_at", cat.FetchedAt.Format(time.RFC3339),
		)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := store.Reload(ctx, loader, cfg.TLE.Source); err != nil {
		logger.Warn("initial catalog load failed", "source", cfg.TLE.Source, "error", err)
	}

	sampler := groundtrack.NewSampler(propagation.NewEngine(logger), groundtrack.Config{
		Workers:    cfg.Track.Workers,
		MaxSamples: cfg.Track.MaxSamples,
	}, logger)

	feeds := nasa.NewClient(nasa.Config{
		BaseURL:  cfg.NASA.BaseURL,
		EONETURL: cfg.NASA.EONETURL,
		APIKey:   cfg.NASA.APIKey,
	}, logger)
	if cfg.NASA.APIKey == nasa.DefaultAPIKey {
		logger.Warn("using the shared demo API key, feed requests are heavily rate limited")
	}

	srv := api.NewServer(cfg.HTTP.Addr, logger, api.Options{
		Store:         store,
		Loader:        loader,
		Source:        cfg.TLE.Source,
		Sampler:       sampler,
		Feeds:         feeds,
		TrackDuration: cfg.Track.Duration,
		TrackStep:     cfg.Track.Step,
		TrustProxy:    cfg.HTTP.TrustProxy,
	})

	// Background goroutine to update catalog age gauge.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				age := store.AgeSeconds()
				if age >= 0 {
					metrics.SetCatalogAge(age)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("starting server",
			"addr", cfg.HTTP.Addr,
			"tle_source", cfg.TLE.Source,
			"track_workers", cfg.Track.Workers,
			"track_max_samples", cfg.Track.MaxSamples,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
