package domain

import "time"

// Metric names a trend series.
type Metric string

const (
	MetricSales  Metric = "sales"
	MetricRating Metric = "rating"
	MetricPrice  Metric = "price"
)

// Direction classifies a series by comparing its endpoints.
type Direction string

const (
	DirectionRising  Direction = "rising"
	DirectionFalling Direction = "falling"
	DirectionStable  Direction = "stable"
)

// TrendScope narrows trend queries. Empty fields match everything.
type TrendScope struct {
	ProductID string `json:"product_id,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Category  string `json:"category,omitempty"`
}

// SeriesPoint is one (date, value) pair.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TrendSeries is an ordered metric series over a scope.
type TrendSeries struct {
	Metric     Metric        `json:"metric"`
	Scope      TrendScope    `json:"scope"`
	Points     []SeriesPoint `json:"points"`
	GrowthRate float64       `json:"growth_rate"`
	Direction  Direction     `json:"direction"`
}

// Period is the inclusive date span a trend covers.
type Period struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Breakdown is a date x key matrix of daily values over a continuous window.
type Breakdown struct {
	GroupBy     string               `json:"group_by"` // "category", "platform" or "total"
	Dates       []time.Time          `json:"dates"`
	Keys        []string             `json:"keys"` // ordered by total desc, then name
	Series      map[string][]float64 `json:"series"`
	Totals      map[string]float64   `json:"totals"`
	GrowthRates map[string]float64   `json:"growth_rates"`
	Total       []float64            `json:"total"`
	GrowthRate  float64              `json:"growth_rate"`
	Period      Period               `json:"analysis_period"`
}

// Empty reports whether the breakdown carries no data.
func (b *Breakdown) Empty() bool {
	return b == nil || len(b.Dates) == 0
}

// PriceTrend is a forward-filled daily mean price series.
type PriceTrend struct {
	Scope      TrendScope               `json:"scope"`
	Points     []SeriesPoint            `json:"points"`
	Groups     map[string][]SeriesPoint `json:"groups,omitempty"`
	ChangeRate float64                  `json:"price_change_rate"`
	Direction  Direction                `json:"direction"`
	Period     Period                   `json:"analysis_period"`
}

// Empty reports whether the trend carries no data.
func (p *PriceTrend) Empty() bool {
	return p == nil || len(p.Points) == 0
}

// Growth labels used by trend summaries.
const (
	LabelStrongGrowth = "strong growth"
	LabelDecline      = "decline"
	LabelStable       = "stable"
	LabelExplosive    = "explosive growth"
)

// CategoryGrowth pairs a category with a growth rate or total.
type CategoryGrowth struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// TrendSummary combines the sales breakdown, category breakdown and price
// trend of a window. Error is set when any part is missing; the remaining
// parts are kept.
type TrendSummary struct {
	Sales      *Breakdown  `json:"sales_trend,omitempty"`
	Categories *Breakdown  `json:"category_trend,omitempty"`
	Price      *PriceTrend `json:"price_trend,omitempty"`

	OverallGrowth       float64          `json:"overall_growth"`
	OverallLabel        string           `json:"overall_label"`
	TopCategory         *CategoryGrowth  `json:"top_category,omitempty"`
	FastestCategory     *CategoryGrowth  `json:"fastest_growing_category,omitempty"`
	ExplosiveCategories []CategoryGrowth `json:"explosive_categories"`
	PriceChangeRate     float64          `json:"price_change_rate"`
	PriceDirection      Direction        `json:"price_direction"`
	Period              Period           `json:"analysis_period"`

	Error string `json:"error,omitempty"`
}
