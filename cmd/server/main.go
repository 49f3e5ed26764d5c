// Package main runs the HTTP API over the configured stores.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ecommerce-trend-lab/internal/api"
	"ecommerce-trend-lab/internal/app"
	"ecommerce-trend-lab/internal/config"
	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/observability"
	"ecommerce-trend-lab/internal/orchestrator"
	"ecommerce-trend-lab/internal/reporting"
)

func main() {
	configPath := flag.String("config", config.LookupEnv("TRENDLAB_CONFIG", ""), "Path to config file (yaml, json or toml)")
	seed := flag.Bool("seed", false, "Seed the store with demo fixtures")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *seed {
		cfg.Store.Seed = true
	}

	logger, err := logging.New(cfg.Log.LoggingOptions())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	logger = logging.Component(logger, "server")
	metrics := observability.DefaultMetrics

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg.Store, logger, metrics)
	if err != nil {
		logger.Error("failed to open stores", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn("close stores", "error", err)
		}
	}()

	gin.SetMode(cfg.HTTP.Mode)
	components := app.NewComponents(cfg, stores, logger, metrics, nil)
	router := api.NewRouter(components.RouterDependencies(cfg, stores, logger, metrics))

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	if cfg.Report.Interval > 0 {
		formats := make([]reporting.Format, 0, len(cfg.Report.Formats))
		for _, f := range cfg.Report.Formats {
			formats = append(formats, reporting.Format(f))
		}
		scheduler := orchestrator.New(orchestrator.Options{
			Reports:   components.Reports,
			OutputDir: cfg.Report.OutputDir,
			Formats:   formats,
			Platforms: cfg.Report.Platforms,
			Days:      cfg.Report.Days,
			Interval:  cfg.Report.Interval,
			Logger:    logger,
		})
		go func() {
			if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("report scheduler stopped", "error", err)
			}
		}()
		logger.Info("report scheduler started", "interval", cfg.Report.Interval.String(), "output_dir", cfg.Report.OutputDir)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", "error", err)
		}
	}

	// Second signal forces exit
	go func() {
		sig := <-sigCh
		logger.Warn("received second signal, forcing exit", "signal", sig.String())
		os.Exit(1)
	}()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	cancel()

	logger.Info("server stopped", "at", time.Now().UTC().Format(time.RFC3339))
}
