package ranking

import (
	"sort"

	"ecommerce-trend-lab/internal/domain"
)

// Config is the explicit configuration of the ranking engine.
type Config struct {
	// Platforms compared by CrossPlatformComparison, in output order.
	Platforms []string
	// PriceBuckets used when a caller passes no buckets. Invalid or empty
	// definitions fall back to DefaultPriceBuckets.
	PriceBuckets []domain.PriceBucket
	// AttributeSampleSize is the number of hot products analysed by PopularAttributes.
	AttributeSampleSize int
	// DefaultLimit replaces non-positive limits.
	DefaultLimit int
}

// DefaultConfig returns the stock platform set, buckets and sizes.
func DefaultConfig() Config {
	return Config{
		Platforms:           []string{domain.PlatformTikTok, domain.PlatformAmazon, domain.PlatformShopee},
		PriceBuckets:        DefaultPriceBuckets(),
		AttributeSampleSize: 50,
		DefaultLimit:        20,
	}
}

// Default bucket labels.
const (
	BucketLow    = "low"
	BucketMid    = "mid"
	BucketHigh   = "high"
	BucketLuxury = "luxury"
)

// DefaultPriceBuckets returns low <50, mid 50-200, high 200-1000, luxury >=1000.
func DefaultPriceBuckets() []domain.PriceBucket {
	return []domain.PriceBucket{
		{Label: BucketLow, Range: domain.PriceRange{Min: 0, Max: float64Ptr(50)}},
		{Label: BucketMid, Range: domain.PriceRange{Min: 50, Max: float64Ptr(200)}},
		{Label: BucketHigh, Range: domain.PriceRange{Min: 200, Max: float64Ptr(1000)}},
		{Label: BucketLuxury, Range: domain.PriceRange{Min: 1000}},
	}
}

// ValidBuckets reports whether every bucket has a unique non-empty label,
// a non-negative min and a max above min when bounded, and whether the
// buckets are disjoint once ordered by min. Only the highest bucket may be
// open-ended.
func ValidBuckets(buckets []domain.PriceBucket) bool {
	if len(buckets) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(buckets))
	for _, b := range buckets {
		if b.Label == "" || b.Range.Min < 0 {
			return false
		}
		if b.Range.Max != nil && *b.Range.Max <= b.Range.Min {
			return false
		}
		if _, dup := seen[b.Label]; dup {
			return false
		}
		seen[b.Label] = struct{}{}
	}

	ordered := append([]domain.PriceBucket(nil), buckets...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Range.Min < ordered[j].Range.Min })
	for i := 1; i < len(ordered); i++ {
		prev := ordered[i-1].Range
		if prev.Max == nil || ordered[i].Range.Min < *prev.Max {
			return false
		}
	}
	return true
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if len(c.Platforms) == 0 {
		c.Platforms = def.Platforms
	}
	if !ValidBuckets(c.PriceBuckets) {
		c.PriceBuckets = def.PriceBuckets
	}
	if c.AttributeSampleSize <= 0 {
		c.AttributeSampleSize = def.AttributeSampleSize
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = def.DefaultLimit
	}
	return c
}

func float64Ptr(v float64) *float64 {
	return &v
}
