package ingestion

import (
	"context"
	"errors"
	"log/slog"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/observability"
)

// Stats counts what happened to the records of one or more batches.
type Stats struct {
	Received         int `json:"received"`
	Rejected         int `json:"rejected"`
	Stored           int `json:"stored"`
	SnapshotsSkipped int `json:"snapshots_skipped"`
	Failed           int `json:"failed"`
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Received += o.Received
	s.Rejected += o.Rejected
	s.Stored += o.Stored
	s.SnapshotsSkipped += o.SnapshotsSkipped
	s.Failed += o.Failed
}

// Runner drives source → clean → enrich → record.
type Runner struct {
	source   Source
	cleaner  *Cleaner
	enricher *Enricher
	recorder *Recorder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Source   Source
	Cleaner  *Cleaner
	Enricher *Enricher
	Recorder *Recorder
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// NewRunner creates a new ingestion runner. Cleaner and Enricher default
// to plain instances when omitted.
func NewRunner(opts RunnerOptions) *Runner {
	cleaner := opts.Cleaner
	if cleaner == nil {
		cleaner = NewCleaner(nil)
	}
	enricher := opts.Enricher
	if enricher == nil {
		enricher = NewEnricher(nil, defaultWorkers, opts.Logger, opts.Metrics)
	}
	return &Runner{
		source:   opts.Source,
		cleaner:  cleaner,
		enricher: enricher,
		recorder: opts.Recorder,
		logger:   logging.Component(opts.Logger, "ingestion"),
		metrics:  opts.Metrics,
	}
}

// Run consumes the source until it is exhausted or ctx is cancelled.
// It returns the accumulated stats and ctx.Err() on cancellation.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var total Stats
	if r.source == nil {
		return total, errors.New("no source configured")
	}

	batches, err := r.source.Batches(ctx)
	if err != nil {
		return total, err
	}
	r.logger.Info("ingestion started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("ingestion stopping", "received", total.Received, "stored", total.Stored)
			return total, ctx.Err()
		case batch, ok := <-batches:
			if !ok {
				if err := ctx.Err(); err != nil {
					return total, err
				}
				r.logger.Info("source exhausted", "received", total.Received, "stored", total.Stored)
				return total, nil
			}
			total.Add(r.ProcessBatch(ctx, batch))
		}
	}
}

// ProcessBatch cleans, enriches and records one batch. Per-record failures
// are counted and logged; they never abort the batch.
func (r *Runner) ProcessBatch(ctx context.Context, batch []RawRecord) Stats {
	stats := Stats{Received: len(batch)}

	cleaned := make([]*domain.ProductRecord, 0, len(batch))
	for _, raw := range batch {
		r.metrics.RecordReceived()
		p, err := r.cleaner.Clean(raw)
		if err != nil {
			stats.Rejected++
			r.metrics.RecordRejected("empty")
			r.logger.Debug("record rejected", "product_id", raw.ProductID, "error", err)
			continue
		}
		cleaned = append(cleaned, p)
	}

	enriched, err := r.enricher.EnrichBatch(ctx, cleaned)
	if err != nil {
		stats.Failed += len(cleaned)
		r.logger.Warn("enrichment aborted", "records", len(cleaned), "error", err)
		return stats
	}

	for _, p := range enriched {
		stored, err := r.recorder.Record(ctx, p)
		switch {
		case errors.Is(err, domain.ErrMalformedRecord):
			stats.Rejected++
			r.metrics.RecordRejected("malformed")
		case err != nil:
			stats.Failed++
			r.logger.Error("record failed", "platform", p.Platform, "product_id", p.ProductID, "error", err)
		default:
			stats.Stored++
			if !stored {
				stats.SnapshotsSkipped++
			}
		}
	}
	return stats
}
