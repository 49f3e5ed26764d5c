package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ecommerce-trend-lab/internal/domain"
)

// errorResponse is the body of every 4xx/5xx reply.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(400, errorResponse{Error: err.Error(), RequestID: c.GetString(requestIDKey)})
}

func serverError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(500, errorResponse{Error: err.Error(), RequestID: c.GetString(requestIDKey)})
}

func unavailable(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(503, errorResponse{Error: msg, RequestID: c.GetString(requestIDKey)})
}

// intQuery parses an optional integer query parameter. Missing values give def.
func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return v, nil
}

func platformQuery(c *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(c.Query("platform")))
}

func categoryQuery(c *gin.Context) string {
	return strings.TrimSpace(c.Query("category"))
}

func scopeQuery(c *gin.Context) domain.TrendScope {
	return domain.TrendScope{
		ProductID: strings.TrimSpace(c.Query("product_id")),
		Platform:  platformQuery(c),
		Category:  categoryQuery(c),
	}
}

func productFilter(c *gin.Context) (domain.ProductFilter, error) {
	f := domain.ProductFilter{
		Platform: platformQuery(c),
		Category: categoryQuery(c),
	}
	minRaw, maxRaw := c.Query("min_price"), c.Query("max_price")
	if minRaw == "" && maxRaw == "" {
		return f, nil
	}
	r := &domain.PriceRange{}
	if minRaw != "" {
		v, err := strconv.ParseFloat(minRaw, 64)
		if err != nil || v < 0 {
			return f, fmt.Errorf("min_price must be a non-negative number")
		}
		r.Min = v
	}
	if maxRaw != "" {
		v, err := strconv.ParseFloat(maxRaw, 64)
		if err != nil || v <= r.Min {
			return f, fmt.Errorf("max_price must be a number above min_price")
		}
		r.Max = &v
	}
	f.PriceRange = r
	return f, nil
}

// parseBuckets reads "label:min-max,label:min-" definitions. An empty
// string returns nil so the configured buckets apply.
func parseBuckets(raw string) ([]domain.PriceBucket, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var buckets []domain.PriceBucket
	for _, part := range strings.Split(raw, ",") {
		label, bounds, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok || label == "" {
			return nil, fmt.Errorf("bucket %q must look like label:min-max", part)
		}
		lo, hi, ok := strings.Cut(bounds, "-")
		if !ok {
			return nil, fmt.Errorf("bucket %q must look like label:min-max", part)
		}
		minV, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		if err != nil {
			return nil, fmt.Errorf("bucket %q has an invalid min", part)
		}
		b := domain.PriceBucket{Label: label, Range: domain.PriceRange{Min: minV}}
		if hi = strings.TrimSpace(hi); hi != "" {
			maxV, err := strconv.ParseFloat(hi, 64)
			if err != nil {
				return nil, fmt.Errorf("bucket %q has an invalid max", part)
			}
			b.Range.Max = &maxV
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}
