package domain

// RankingEntry is a ProductRecord placed at a 1-based rank within one result set.
type RankingEntry struct {
	ProductRecord
	Rank       int      `json:"rank"`
	GrowthRate *float64 `json:"growth_rate,omitempty"`
	ValueScore *float64 `json:"value_score,omitempty"`
}

// KeywordCount is one row of a keyword frequency table.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// PriceStats summarizes positive prices.
type PriceStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// RatingStats summarizes positive ratings.
type RatingStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// AttributeAnalysis describes what the currently hot products have in common.
type AttributeAnalysis struct {
	TopKeywords   []KeywordCount `json:"top_keywords"`
	PriceStats    PriceStats     `json:"price_stats"`
	RatingStats   RatingStats    `json:"rating_stats"`
	TotalAnalyzed int            `json:"total_analyzed"`
}
