// Package main consumes the product feed and records cleaned, enriched
// products with their daily snapshots.
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

	"ecommerce-trend-lab/internal/app"
	"ecommerce-trend-lab/internal/config"
	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/observability"
)

func main() {
	configPath := flag.String("config", config.LookupEnv("TRENDLAB_CONFIG", ""), "Path to config file (yaml, json or toml)")
	feedURL := flag.String("feed-url", "", "WebSocket feed URL (overrides ingestion.feed_url)")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *feedURL != "" {
		cfg.Ingestion.FeedURL = *feedURL
	}
	if cfg.Ingestion.FeedURL == "" {
		log.Fatal("--feed-url or TRENDLAB_INGESTION_FEED_URL is required")
	}

	logger, err := logging.New(cfg.Log.LoggingOptions())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	logger = logging.Component(logger, "ingest")
	metrics := observability.DefaultMetrics

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Info("metrics server listening", "addr", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, stopping ingestion", "signal", sig.String())
		cancel()
		sig = <-sigCh
		logger.Warn("received second signal, forcing exit", "signal", sig.String())
		os.Exit(1)
	}()

	stores, err := app.OpenStores(ctx, cfg.Store, logger, metrics)
	if err != nil {
		logger.Error("failed to open stores", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	runner := app.NewIngestionRunner(cfg, stores, logger, metrics)
	start := time.Now()
	stats, err := runner.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("ingestion failed", "error", err)
	}
	logger.Info("ingestion finished",
		"received", stats.Received,
		"rejected", stats.Rejected,
		"stored", stats.Stored,
		"snapshots_skipped", stats.SnapshotsSkipped,
		"failed", stats.Failed,
		"duration", time.Since(start).String(),
	)
}
