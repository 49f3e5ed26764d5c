package domain

import (
	"errors"
	"math"
	"time"
)

// Platform identifiers known to the collectors.
const (
	PlatformTikTok = "tiktok"
	PlatformAmazon = "amazon"
	PlatformShopee = "shopee"
)

// DefaultCurrency is applied when a collector reports no currency.
const DefaultCurrency = "CNY"

// ErrMalformedRecord is returned by Validate for records that cannot be scored.
var ErrMalformedRecord = errors.New("malformed record")

// ProductRecord is the current state of a marketplace listing.
// Identity is (Platform, ProductID).
type ProductRecord struct {
	Platform        string    `json:"platform"`
	ProductID       string    `json:"product_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	URL             string    `json:"url,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
	SalesVolume     int64     `json:"sales_volume"`
	Rating          float64   `json:"rating"`
	ReviewsCount    int64     `json:"reviews_count"`
	Category        string    `json:"category"`
	PopularityScore float64   `json:"popularity_score"` // derived, never taken from input
	PriceTier       string    `json:"price_tier,omitempty"`
	SentimentScore  *float64  `json:"sentiment_score,omitempty"`
	Keywords        []string  `json:"keywords"` // ordered, deduplicated
	CollectedAt     time.Time `json:"collected_at"`
}

// Key returns the identity key used to group records and snapshots.
func (p *ProductRecord) Key() string {
	return IdentityKey(p.Platform, p.ProductID)
}

// Clone returns a deep copy so stores can hand out records without sharing slices.
func (p *ProductRecord) Clone() *ProductRecord {
	c := *p
	if p.Keywords != nil {
		c.Keywords = append([]string(nil), p.Keywords...)
	}
	if p.SentimentScore != nil {
		v := *p.SentimentScore
		c.SentimentScore = &v
	}
	return &c
}

// Validate reports whether the record carries the fields ranking depends on.
func (p *ProductRecord) Validate() error {
	switch {
	case p == nil:
		return ErrMalformedRecord
	case p.Platform == "" || p.ProductID == "":
		return ErrMalformedRecord
	case math.IsNaN(p.Price) || math.IsInf(p.Price, 0):
		return ErrMalformedRecord
	case math.IsNaN(p.Rating) || math.IsInf(p.Rating, 0):
		return ErrMalformedRecord
	case p.Price < 0 || p.SalesVolume < 0 || p.ReviewsCount < 0:
		return ErrMalformedRecord
	}
	return nil
}

// IdentityKey joins platform and product id into a single map key.
func IdentityKey(platform, productID string) string {
	return platform + "|" + productID
}
