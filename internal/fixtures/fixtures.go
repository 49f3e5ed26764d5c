// Package fixtures generates a deterministic demo catalog with daily history.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/idhash"
	"ecommerce-trend-lab/internal/scoring"
	"ecommerce-trend-lab/internal/storage"
)

// DefaultDays is the history length seeded when none is given.
const DefaultDays = 30

type item struct {
	platform   string
	id         string
	name       string
	category   string
	price      float64
	priceDrift float64 // fractional change per day
	sales      float64 // sales on the first day
	growth     float64 // fractional sales change per day
	rating     float64
	reviews    int64
	keywords   []string
}

var catalog = []item{
	{domain.PlatformAmazon, "AMZ-1001", "Wireless Earbuds Pro", "Electronics", 59.99, -0.004, 300, 0.05, 4.6, 820, []string{"wireless", "earbuds", "bluetooth"}},
	{domain.PlatformAmazon, "AMZ-1002", "Stainless Steel Water Bottle", "Sports", 19.99, 0, 500, 0.01, 4.7, 1500, []string{"bottle", "insulated", "outdoor"}},
	{domain.PlatformAmazon, "AMZ-1003", "LED Desk Lamp", "Home", 34.50, 0.001, 120, -0.02, 4.2, 240, []string{"lamp", "led", "office"}},
	{domain.PlatformAmazon, "AMZ-1004", "Mechanical Keyboard", "Electronics", 89.00, -0.002, 80, 0.03, 4.4, 410, []string{"keyboard", "gaming", "rgb"}},
	{domain.PlatformShopee, "SHP-2001", "Phone Case Clear", "Electronics", 3.90, 0, 900, 0.02, 4.3, 2100, []string{"phone", "case", "clear"}},
	{domain.PlatformShopee, "SHP-2002", "Silk Scarf", "Fashion", 12.50, 0.003, 150, 0.08, 4.5, 95, []string{"scarf", "silk", "gift"}},
	{domain.PlatformShopee, "SHP-2003", "Bamboo Cutting Board", "Home", 8.80, 0, 60, 0, 4.1, 45, []string{"kitchen", "bamboo", "board"}},
	{domain.PlatformShopee, "SHP-2004", "Yoga Mat", "Sports", 15.00, -0.001, 200, -0.01, 4.0, 300, []string{"yoga", "fitness", "mat"}},
	{domain.PlatformTikTok, "TT-3001", "Lip Tint Set", "Beauty", 9.99, 0, 400, 0.1, 4.4, 650, []string{"makeup", "lip", "tint"}},
	{domain.PlatformTikTok, "TT-3002", "Mini Projector", "Electronics", 129.00, -0.005, 40, 0.06, 3.9, 120, []string{"projector", "portable", "movie"}},
	{domain.PlatformTikTok, "TT-3003", "Oversized Hoodie", "Fashion", 24.99, 0.002, 250, 0.03, 4.2, 380, []string{"hoodie", "streetwear", "cotton"}},
	{domain.PlatformTikTok, "TT-3004", "Vitamin C Serum", "Beauty", 14.99, 0, 320, -0.03, 4.5, 900, []string{"skincare", "serum", "vitamin"}},
}

// Stats reports how much was written.
type Stats struct {
	Products  int
	Snapshots int
}

// Products returns the demo catalog as current records collected at now,
// carrying the values of the last seeded day.
func Products(now time.Time, days int) []*domain.ProductRecord {
	if days <= 0 {
		days = DefaultDays
	}
	out := make([]*domain.ProductRecord, 0, len(catalog))
	for _, it := range catalog {
		p := &domain.ProductRecord{
			Platform:     it.platform,
			ProductID:    it.id,
			Name:         it.name,
			Description:  fmt.Sprintf("%s in %s", it.name, it.category),
			URL:          fmt.Sprintf("https://%s.example.com/item/%s", it.platform, it.id),
			Price:        it.priceOn(days - 1),
			Currency:     domain.DefaultCurrency,
			SalesVolume:  it.salesOn(days - 1),
			Rating:       it.rating,
			ReviewsCount: it.reviews,
			Category:     it.category,
			Keywords:     append([]string(nil), it.keywords...),
			CollectedAt:  now.UTC(),
		}
		scoring.Apply(p)
		out = append(out, p)
	}
	return out
}

// Snapshots returns one snapshot per product per day, the last day being
// the UTC day of now. Snapshots are taken at noon UTC.
func Snapshots(now time.Time, days int) []*domain.HistorySnapshot {
	if days <= 0 {
		days = DefaultDays
	}
	now = now.UTC()
	last := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC)

	out := make([]*domain.HistorySnapshot, 0, len(catalog)*days)
	for d := 0; d < days; d++ {
		date := last.AddDate(0, 0, d-days+1)
		for _, it := range catalog {
			out = append(out, &domain.HistorySnapshot{
				SnapshotID:   idhash.SnapshotID(it.platform, it.id, date),
				ProductID:    it.id,
				Platform:     it.platform,
				Category:     it.category,
				Date:         date,
				Price:        it.priceOn(d),
				SalesVolume:  it.salesOn(d),
				Rating:       it.rating,
				ReviewsCount: it.reviews,
			})
		}
	}
	return out
}

// Seed writes the catalog and its history. Existing snapshots are skipped.
func Seed(ctx context.Context, products storage.ProductStore, history storage.HistoryStore, now time.Time, days int) (Stats, error) {
	var stats Stats
	for _, p := range Products(now, days) {
		if err := products.Upsert(ctx, p); err != nil {
			return stats, fmt.Errorf("seed product %s: %w", p.Key(), err)
		}
		stats.Products++
	}
	if history == nil {
		return stats, nil
	}
	for _, s := range Snapshots(now, days) {
		if err := history.Append(ctx, s); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			return stats, fmt.Errorf("seed snapshot %s: %w", s.SnapshotID, err)
		}
		stats.Snapshots++
	}
	return stats, nil
}

func (it item) salesOn(day int) int64 {
	return int64(math.Round(it.sales * math.Pow(1+it.growth, float64(day))))
}

func (it item) priceOn(day int) float64 {
	return math.Round(it.price*(1+it.priceDrift*float64(day))*100) / 100
}
