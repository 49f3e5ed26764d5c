package ingestion

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/observability"
	"ecommerce-trend-lab/internal/scoring"
)

const (
	maxKeywords    = 10
	defaultWorkers = 5
)

var keywordToken = regexp.MustCompile(`[A-Za-z\p{Han}]{2,}`)

// Annotation is what an external annotator adds to a product.
// Zero values mean "nothing to add".
type Annotation struct {
	Description string
	Keywords    []string
	Sentiment   *float64 // 0..100
}

// Annotator enriches a product from an external service.
type Annotator interface {
	Annotate(ctx context.Context, p *domain.ProductRecord) (Annotation, error)
}

// Enricher derives keywords and scores and applies an optional annotator.
type Enricher struct {
	annotator Annotator
	workers   int
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewEnricher creates an enricher. annotator may be nil.
func NewEnricher(annotator Annotator, workers int, logger *slog.Logger, metrics *observability.Metrics) *Enricher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Enricher{
		annotator: annotator,
		workers:   workers,
		logger:    logging.Component(logger, "enricher"),
		metrics:   metrics,
	}
}

// Enrich returns an enriched copy of p. Annotator failures are logged and
// the product is kept with locally derived fields.
func (e *Enricher) Enrich(ctx context.Context, p *domain.ProductRecord) *domain.ProductRecord {
	start := time.Now()
	out := p.Clone()

	out.Keywords = mergeKeywords(out.Keywords, ExtractKeywords(out.Name+" "+out.Description))

	if e.annotator != nil {
		ann, err := e.annotator.Annotate(ctx, out)
		if err != nil {
			e.logger.Warn("annotation failed", "platform", out.Platform, "product_id", out.ProductID, "error", err)
		} else {
			if ann.Description != "" {
				out.Description = ann.Description
			}
			out.Keywords = mergeKeywords(out.Keywords, normalizeKeywords(ann.Keywords))
			if ann.Sentiment != nil {
				v := clampFloat(ann.Sentiment, 0, 100)
				out.SentimentScore = &v
			}
		}
	}
	if out.SentimentScore == nil && out.Rating > 0 {
		v := out.Rating / 5 * 100
		out.SentimentScore = &v
	}

	scoring.Apply(out)
	e.metrics.RecordEnrichment(time.Since(start).Seconds())
	return out
}

// EnrichBatch enriches products on a bounded worker pool. Output order
// matches input order.
func (e *Enricher) EnrichBatch(ctx context.Context, products []*domain.ProductRecord) ([]*domain.ProductRecord, error) {
	out := make([]*domain.ProductRecord, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, p := range products {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = e.Enrich(gctx, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractKeywords returns up to ten distinct lower-cased word tokens of at
// least two Latin or Han characters, in order of first appearance.
func ExtractKeywords(text string) []string {
	tokens := keywordToken.FindAllString(text, -1)
	for i := range tokens {
		tokens[i] = strings.ToLower(tokens[i])
	}
	return mergeKeywords(nil, tokens)
}

// mergeKeywords appends distinct entries of extra to base, capped at maxKeywords.
func mergeKeywords(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, maxKeywords)
	for _, list := range [][]string{base, extra} {
		for _, kw := range list {
			if len(out) == maxKeywords {
				return out
			}
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}
