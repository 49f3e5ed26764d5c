package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// RawRecord is a product listing as delivered by a scraper feed.
// Numeric fields are pointers so missing values can be told apart from zero.
type RawRecord struct {
	Platform     string     `json:"platform"`
	ProductID    string     `json:"product_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	URL          string     `json:"url"`
	ImageURL     string     `json:"image_url"`
	Price        *float64   `json:"price"`
	Currency     string     `json:"currency"`
	SalesVolume  *int64     `json:"sales_volume"`
	Rating       *float64   `json:"rating"`
	ReviewsCount *int64     `json:"reviews_count"`
	Category     string     `json:"category"`
	Keywords     []string   `json:"keywords"`
	CollectedAt  *time.Time `json:"collected_at"`
}

// Source delivers batches of raw records until ctx is cancelled or the
// source is exhausted, at which point the channel is closed.
type Source interface {
	Batches(ctx context.Context) (<-chan []RawRecord, error)
}

// DecodeBatch parses one feed message. A message carries either a single
// record object or an array of records.
func DecodeBatch(data []byte) ([]RawRecord, error) {
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []RawRecord
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}

	var one RawRecord
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []RawRecord{one}, nil
}
