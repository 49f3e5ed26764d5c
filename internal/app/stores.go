// Package app wires configuration, storage backends and analysis components
// for the command-line entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ecommerce-trend-lab/internal/config"
	"ecommerce-trend-lab/internal/fixtures"
	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/observability"
	"ecommerce-trend-lab/internal/storage"
	chstore "ecommerce-trend-lab/internal/storage/clickhouse"
	"ecommerce-trend-lab/internal/storage/memory"
	"ecommerce-trend-lab/internal/storage/migrations"
	mysqlstore "ecommerce-trend-lab/internal/storage/mysql"
	pgstore "ecommerce-trend-lab/internal/storage/postgres"
)

// Stores bundles the product and history stores of one backend.
type Stores struct {
	Products storage.ProductStore
	History  storage.HistoryStore

	closers []func() error
}

// Close releases every connection opened for the stores.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenStores connects the configured backend. Postgres keeps products and,
// unless a ClickHouse DSN is set, history as well. Every store is wrapped
// with query metrics.
func OpenStores(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger, metrics *observability.Metrics) (*Stores, error) {
	logger = logging.Component(logger, "stores")
	stores := &Stores{}

	switch cfg.Backend {
	case config.BackendMemory, "":
		stores.Products = storage.InstrumentProducts(memory.NewProductStore(), config.BackendMemory, metrics)
		stores.History = storage.InstrumentHistory(memory.NewHistoryStore(), config.BackendMemory, metrics)

	case config.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, func() error { pool.Close(); return nil })
		stores.Products = storage.InstrumentProducts(pgstore.NewProductStore(pool), "postgres", metrics)

		if cfg.ClickhouseDSN != "" {
			conn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
			if err != nil {
				_ = stores.Close()
				return nil, fmt.Errorf("connect to clickhouse: %w", err)
			}
			stores.closers = append(stores.closers, conn.Close)
			stores.History = storage.InstrumentHistory(chstore.NewHistoryStore(conn), "clickhouse", metrics)
		} else {
			stores.History = storage.InstrumentHistory(pgstore.NewHistoryStore(pool), "postgres", metrics)
		}

	case config.BackendMySQL:
		db, err := mysqlstore.Open(cfg.MySQLDSN, mysqlstore.DefaultOptions())
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, func() error { return mysqlstore.Close(db) })
		stores.Products = storage.InstrumentProducts(mysqlstore.NewProductStore(db), "mysql", metrics)
		stores.History = storage.InstrumentHistory(mysqlstore.NewHistoryStore(db), "mysql", metrics)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	if cfg.Seed {
		st, err := fixtures.Seed(ctx, stores.Products, stores.History, time.Now().UTC(), fixtures.DefaultDays)
		if err != nil {
			_ = stores.Close()
			return nil, fmt.Errorf("seed fixtures: %w", err)
		}
		logger.Info("seeded fixtures", "products", st.Products, "snapshots", st.Snapshots)
	}

	logger.Info("stores ready", "backend", cfg.Backend)
	return stores, nil
}

// Migrate applies the schema of the configured backend and returns the
// names of the applied steps.
func Migrate(ctx context.Context, cfg config.StoreConfig) ([]string, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return nil, nil

	case config.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		defer pool.Close()

		applied, err := migrations.RunPostgresMigrations(ctx, pool)
		if err != nil {
			return applied, err
		}
		if cfg.ClickhouseDSN != "" {
			conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
			if err != nil {
				return applied, err
			}
			_ = conn.Close()
			applied = append(applied, "clickhouse")
		}
		return applied, nil

	case config.BackendMySQL:
		opts := mysqlstore.DefaultOptions()
		opts.AutoMigrate = false
		db, err := mysqlstore.Open(cfg.MySQLDSN, opts)
		if err != nil {
			return nil, err
		}
		defer mysqlstore.Close(db)
		if err := mysqlstore.Migrate(db); err != nil {
			return nil, err
		}
		return []string{"mysql"}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
