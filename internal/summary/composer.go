// Package summary composes ranking and trend outputs into one structured
// summary with a plain-text narrative.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/logging"
)

// Overall direction thresholds on sales growth, in percent.
const (
	risingThreshold  = 5.0
	fallingThreshold = -5.0
)

const defaultTopProducts = 5

// TrendSource supplies the trend summary of a window.
type TrendSource interface {
	Summary(ctx context.Context, platform string, days int) domain.TrendSummary
}

// HotSource supplies the hot ranking.
type HotSource interface {
	HotProducts(ctx context.Context, platform, category, timeRange string, limit int) []domain.RankingEntry
}

// Summary is the composed result. Error is set when any part is missing;
// everything else that could be computed is kept.
type Summary struct {
	Platform         string                 `json:"platform,omitempty"`
	OverallDirection domain.Direction       `json:"overall_direction"`
	OverallGrowth    float64                `json:"overall_growth"`
	OverallLabel     string                 `json:"overall_label"`
	FastestCategory  *domain.CategoryGrowth `json:"fastest_growing_category,omitempty"`
	TopCategory      *domain.CategoryGrowth `json:"top_category,omitempty"`
	Explosive        []string               `json:"explosive_categories"`
	PriceDirection   domain.Direction       `json:"price_direction"`
	PriceChangeRate  float64                `json:"price_change_rate"`
	TopProducts      []domain.RankingEntry  `json:"top_products"`
	Period           domain.Period          `json:"analysis_period"`
	Narrative        string                 `json:"narrative"`
	Error            string                 `json:"error,omitempty"`
}

// Composer builds summaries.
type Composer struct {
	trends TrendSource
	hot    HotSource
	logger *slog.Logger
	topN   int
}

// NewComposer creates a composer. topN <= 0 uses 5 top products.
func NewComposer(trends TrendSource, hot HotSource, topN int, logger *slog.Logger) *Composer {
	if topN <= 0 {
		topN = defaultTopProducts
	}
	return &Composer{
		trends: trends,
		hot:    hot,
		logger: logging.Component(logger, "summary"),
		topN:   topN,
	}
}

// Compose never fails. Panics from collaborators are recovered into Error.
func (c *Composer) Compose(ctx context.Context, platform string, days int) (s Summary) {
	s = Summary{
		Platform:         platform,
		OverallDirection: domain.DirectionStable,
		OverallLabel:     domain.LabelStable,
		PriceDirection:   domain.DirectionStable,
		Explosive:        []string{},
		TopProducts:      []domain.RankingEntry{},
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "summary composition panicked", "platform", platform, "panic", r)
			s.Error = fmt.Sprintf("summary composition failed: %v", r)
			s.Narrative = Narrate(s)
		}
	}()

	trend := c.trends.Summary(ctx, platform, days)
	s.OverallGrowth = trend.OverallGrowth
	s.OverallLabel = trend.OverallLabel
	s.OverallDirection = overallDirection(trend.OverallGrowth)
	s.FastestCategory = trend.FastestCategory
	s.TopCategory = trend.TopCategory
	s.PriceDirection = trend.PriceDirection
	s.PriceChangeRate = trend.PriceChangeRate
	s.Period = trend.Period
	for _, cg := range trend.ExplosiveCategories {
		s.Explosive = append(s.Explosive, cg.Category)
	}

	if hot := c.hot.HotProducts(ctx, platform, "", "week", c.topN); hot != nil {
		s.TopProducts = hot
	}

	var errs []string
	if trend.Error != "" {
		errs = append(errs, trend.Error)
	}
	if len(s.TopProducts) == 0 {
		errs = append(errs, "no hot products")
	}
	s.Error = strings.Join(errs, "; ")
	s.Narrative = Narrate(s)
	return s
}

func overallDirection(growth float64) domain.Direction {
	switch {
	case growth > risingThreshold:
		return domain.DirectionRising
	case growth < fallingThreshold:
		return domain.DirectionFalling
	default:
		return domain.DirectionStable
	}
}

// Narrate renders the fixed narrative templates for s.
func Narrate(s Summary) string {
	var b strings.Builder

	b.WriteString("Trend summary")
	if s.Platform != "" {
		fmt.Fprintf(&b, " for %s", s.Platform)
	}
	if !s.Period.Start.IsZero() {
		fmt.Fprintf(&b, " (%s to %s)", s.Period.Start.Format(time.DateOnly), s.Period.End.Format(time.DateOnly))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Overall sales growth: %.2f%%.\n", s.OverallGrowth)
	if s.TopCategory != nil {
		fmt.Fprintf(&b, "Top category: %s (total sales %.0f).\n", s.TopCategory.Category, s.TopCategory.Value)
	}
	if s.FastestCategory != nil {
		fmt.Fprintf(&b, "Fastest-growing category: %s (%.2f%%).\n", s.FastestCategory.Category, s.FastestCategory.Value)
	}
	fmt.Fprintf(&b, "Overall price change: %.2f%%.\n", s.PriceChangeRate)

	switch s.OverallLabel {
	case domain.LabelStrongGrowth:
		b.WriteString("The market shows strong growth.\n")
	case domain.LabelDecline:
		b.WriteString("The market is in decline; strategy may need adjusting.\n")
	default:
		b.WriteString("The market is relatively stable.\n")
	}

	for _, cat := range s.Explosive {
		fmt.Fprintf(&b, "%s shows explosive growth and deserves attention.\n", cat)
	}

	switch s.PriceDirection {
	case domain.DirectionRising:
		b.WriteString("Prices are trending up; demand may exceed supply.\n")
	case domain.DirectionFalling:
		b.WriteString("Prices are trending down; competition may be intensifying.\n")
	}

	if len(s.TopProducts) > 0 {
		fmt.Fprintf(&b, "Hottest product: %s on %s.\n", s.TopProducts[0].Name, s.TopProducts[0].Platform)
	}
	if s.Error != "" {
		fmt.Fprintf(&b, "Note: partial data (%s).\n", s.Error)
	}
	return b.String()
}
