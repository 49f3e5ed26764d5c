package ingestion

import (
	"errors"
	"html"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ecommerce-trend-lab/internal/domain"
)

// ErrEmptyRecord is returned for records without platform or product id.
var ErrEmptyRecord = errors.New("record has no platform or product id")

var (
	htmlTag    = regexp.MustCompile(`<[^>]*>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Cleaner normalizes raw feed records into product records.
type Cleaner struct {
	now   func() time.Time
	title cases.Caser
}

// NewCleaner creates a cleaner. now may be nil.
func NewCleaner(now func() time.Time) *Cleaner {
	if now == nil {
		now = time.Now
	}
	return &Cleaner{now: now, title: cases.Title(language.Und)}
}

// Clean converts raw into a product record. Out-of-range numbers are clamped
// rather than rejected.
func (c *Cleaner) Clean(raw RawRecord) (*domain.ProductRecord, error) {
	platform := strings.ToLower(strings.TrimSpace(raw.Platform))
	productID := strings.TrimSpace(raw.ProductID)
	if platform == "" || productID == "" {
		return nil, ErrEmptyRecord
	}

	p := &domain.ProductRecord{
		Platform:     platform,
		ProductID:    productID,
		Name:         cleanText(raw.Name),
		Description:  cleanText(raw.Description),
		URL:          strings.TrimSpace(raw.URL),
		ImageURL:     strings.TrimSpace(raw.ImageURL),
		Currency:     strings.ToUpper(strings.TrimSpace(raw.Currency)),
		Category:     c.category(raw.Category),
		Keywords:     normalizeKeywords(raw.Keywords),
		CollectedAt:  c.now().UTC(),
		Price:        clampFloat(raw.Price, 0, math.MaxFloat64),
		Rating:       clampFloat(raw.Rating, 0, 5),
		SalesVolume:  clampInt(raw.SalesVolume),
		ReviewsCount: clampInt(raw.ReviewsCount),
	}
	if p.Currency == "" {
		p.Currency = domain.DefaultCurrency
	}
	if raw.CollectedAt != nil && !raw.CollectedAt.IsZero() {
		p.CollectedAt = raw.CollectedAt.UTC()
	}
	return p, nil
}

func (c *Cleaner) category(s string) string {
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}
	return c.title.String(s)
}

// cleanText strips markup and control characters and collapses whitespace.
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(htmlTag.ReplaceAllString(s, " "))
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func clampFloat(v *float64, lo, hi float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	return math.Max(lo, math.Min(*v, hi))
}

func clampInt(v *int64) int64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

// normalizeKeywords lower-cases, trims and deduplicates keeping first occurrence.
func normalizeKeywords(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
