// Package orchestrator runs report generation on a schedule.
// Each run: generate report -> render every format -> write files.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/reporting"
)

// Reports is satisfied by *reporting.Generator.
type Reports interface {
	Generate(ctx context.Context, platform string, days int) (*reporting.Report, error)
	Render(r *reporting.Report, format reporting.Format) ([]byte, error)
}

// Options for creating an Orchestrator.
type Options struct {
	Reports   Reports
	OutputDir string
	Formats   []reporting.Format // default markdown
	Platforms []string           // "" means all platforms; default [""]
	Days      int
	Interval  time.Duration // Run only; <= 0 runs once
	Logger    *slog.Logger
	Now       func() time.Time
}

// Orchestrator coordinates scheduled report runs.
type Orchestrator struct {
	reports   Reports
	outputDir string
	formats   []reporting.Format
	platforms []string
	days      int
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	if len(opts.Formats) == 0 {
		opts.Formats = []reporting.Format{reporting.FormatMarkdown}
	}
	if len(opts.Platforms) == 0 {
		opts.Platforms = []string{""}
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		reports:   opts.Reports,
		outputDir: opts.OutputDir,
		formats:   opts.Formats,
		platforms: opts.Platforms,
		days:      opts.Days,
		interval:  opts.Interval,
		logger:    logging.Component(opts.Logger, "orchestrator"),
		now:       opts.Now,
	}
}

// RunResult contains results from one execution.
type RunResult struct {
	ReportsGenerated int
	FilesWritten     []string
	Errors           []string
}

// RunOnce generates one report per platform and writes every format.
// Failures of one platform or format are collected and do not stop the run.
func (o *Orchestrator) RunOnce(ctx context.Context) (*RunResult, error) {
	if err := os.MkdirAll(o.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	result := &RunResult{}
	stamp := o.now().UTC().Format("20060102-150405")

	for _, platform := range o.platforms {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		report, err := o.reports.Generate(ctx, platform, o.days)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("generate %s: %v", scopeName(platform), err))
			continue
		}
		result.ReportsGenerated++

		for _, format := range o.formats {
			data, err := o.reports.Render(report, format)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("render %s %s: %v", scopeName(platform), format, err))
				continue
			}
			name := fmt.Sprintf("trend-report-%s-%s.%s", scopeName(platform), stamp, extension(format))
			path := filepath.Join(o.outputDir, name)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("write %s: %v", path, err))
				continue
			}
			result.FilesWritten = append(result.FilesWritten, path)
		}
	}

	o.logger.Info("report run completed",
		"reports", result.ReportsGenerated,
		"files", len(result.FilesWritten),
		"errors", len(result.Errors),
	)
	return result, nil
}

// Run executes RunOnce immediately and then every Interval until ctx is done.
func (o *Orchestrator) Run(ctx context.Context) error {
	if _, err := o.RunOnce(ctx); err != nil {
		return err
	}
	if o.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := o.RunOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				o.logger.Error("report run failed", "error", err)
			}
		}
	}
}

func scopeName(platform string) string {
	if platform == "" {
		return "all"
	}
	return platform
}

func extension(f reporting.Format) string {
	switch f {
	case reporting.FormatCSV:
		return "csv"
	case reporting.FormatExcel, "excel":
		return "xlsx"
	default:
		return "md"
	}
}
