package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-trend-lab/internal/analytics"
	"ecommerce-trend-lab/internal/fixtures"
	"ecommerce-trend-lab/internal/llm"
	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/observability"
	"ecommerce-trend-lab/internal/ranking"
	"ecommerce-trend-lab/internal/storage/memory"
	"ecommerce-trend-lab/internal/summary"
	"ecommerce-trend-lab/internal/trend"
)

var testNow = time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)

func setupRouter(t *testing.T) (*gin.Engine, *observability.Metrics) {
	t.Helper()
	return setupRouterWithAssistant(t, nil)
}

func setupRouterWithAssistant(t *testing.T, assistant Assistant) (*gin.Engine, *observability.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := memory.NewProductStore()
	history := memory.NewHistoryStore()
	_, err := fixtures.Seed(context.Background(), products, history, testNow, 30)
	require.NoError(t, err)

	clock := func() time.Time { return testNow }
	logger := logging.Discard()
	metrics := observability.NewMetricsWith(prometheus.NewRegistry(), "test")

	engine := ranking.NewEngine(products, history, ranking.DefaultConfig(),
		ranking.WithClock(clock), ranking.WithLogger(logger), ranking.WithMetrics(metrics))
	analyzer := trend.NewAnalyzer(history, trend.DefaultConfig(),
		trend.WithClock(clock), trend.WithLogger(logger), trend.WithMetrics(metrics))

	r := NewRouter(Dependencies{
		Products:  products,
		Rankings:  engine,
		Trends:    analyzer,
		Summaries: summary.NewComposer(analyzer, engine, 3, logger),
		Analytics: analytics.NewService(products),
		Assistant: assistant,
		Logger:    logger,
		Metrics:   metrics,
	})
	return r, metrics
}

func get(t *testing.T, r http.Handler, url string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	r, metrics := setupRouter(t)

	w := get(t, r, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = get(t, r, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/health", "200")))
}

func TestRequestIDPropagation(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestHotProducts(t *testing.T) {
	r, _ := setupRouter(t)

	var resp struct {
		Products []struct {
			Rank     int    `json:"rank"`
			Platform string `json:"platform"`
		} `json:"products"`
		Count int `json:"count"`
	}
	w := get(t, r, "/api/v1/rankings/hot?platform=Amazon&limit=2&time_range=month", &resp)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Products, 2)
	assert.Equal(t, 1, resp.Products[0].Rank)
	assert.Equal(t, "amazon", resp.Products[1].Platform)
}

func TestBadParameters(t *testing.T) {
	r, _ := setupRouter(t)

	for _, url := range []string{
		"/api/v1/rankings/hot?limit=abc",
		"/api/v1/rankings/rising?days=-1",
		"/api/v1/rankings/price-ranges?buckets=nonsense",
		"/api/v1/trends/sales?days=x",
		"/api/v1/analytics/price-distribution?min_price=-5",
		"/api/v1/analytics/rating-distribution?min_price=10&max_price=5",
	} {
		w := get(t, r, url, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, url)

		var body errorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Error, url)
		assert.NotEmpty(t, body.RequestID, url)
	}
}

func TestGroupedRankings(t *testing.T) {
	r, _ := setupRouter(t)

	var resp groupedResponse
	w := get(t, r, "/api/v1/rankings/price-ranges?buckets=cheap:0-20,rest:20-&limit=3", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, resp.Groups, "cheap")
	require.Contains(t, resp.Groups, "rest")
	assert.LessOrEqual(t, len(resp.Groups["cheap"]), 3)
	for _, e := range resp.Groups["cheap"] {
		assert.Less(t, e.Price, 20.0)
	}

	resp = groupedResponse{}
	w = get(t, r, "/api/v1/rankings/cross-platform?category=Electronics", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Groups, 3)

	resp = groupedResponse{}
	w = get(t, r, "/api/v1/rankings/categories?platform=shopee&limit=1", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Groups, 4)
}

func TestCategories(t *testing.T) {
	r, _ := setupRouter(t)

	var resp struct {
		Categories []string `json:"categories"`
	}
	w := get(t, r, "/api/v1/categories", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Beauty", "Electronics", "Fashion", "Home", "Sports"}, resp.Categories)
}

func TestTrendEndpoints(t *testing.T) {
	r, _ := setupRouter(t)

	var breakdown struct {
		Keys  []string    `json:"keys"`
		Dates []time.Time `json:"dates"`
	}
	w := get(t, r, "/api/v1/trends/categories?days=7", &breakdown)
	require.Equal(t, http.StatusOK, w.Code)
	assert.LessOrEqual(t, len(breakdown.Keys), 5)
	assert.Len(t, breakdown.Dates, 8)

	var series struct {
		Metric string `json:"metric"`
		Points []any  `json:"points"`
	}
	w = get(t, r, "/api/v1/trends/sales?platform=tiktok&days=7", &series)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sales", series.Metric)
	assert.NotEmpty(t, series.Points)

	var s struct {
		OverallDirection string `json:"overall_direction"`
		TopProducts      []any  `json:"top_products"`
		Narrative        string `json:"narrative"`
	}
	w = get(t, r, "/api/v1/trends/summary?days=14", &s)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, s.OverallDirection)
	assert.Len(t, s.TopProducts, 3)
	assert.NotEmpty(t, s.Narrative)

	for _, url := range []string{
		"/api/v1/trends/rating?days=7",
		"/api/v1/trends/price?category=Home",
		"/api/v1/trends/platforms",
		"/api/v1/trends/breakdown?platform=amazon",
		"/api/v1/attributes?top_k=3",
		"/api/v1/rankings/rising",
		"/api/v1/rankings/value?limit=5",
	} {
		w := get(t, r, url, nil)
		assert.Equal(t, http.StatusOK, w.Code, url)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	r, _ := setupRouter(t)

	var dist analytics.PriceDistribution
	w := get(t, r, "/api/v1/analytics/price-distribution?platform=amazon", &dist)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, dist.Count)
	assert.LessOrEqual(t, dist.Min, dist.Median)

	var ratings struct {
		Buckets []analytics.RatingBucket `json:"buckets"`
	}
	w = get(t, r, "/api/v1/analytics/rating-distribution", &ratings)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, ratings.Buckets, 5)

	var kw analytics.KeywordReport
	w = get(t, r, "/api/v1/analytics/keywords?limit=5", &kw)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, kw.Keywords, 5)
	assert.Equal(t, 36, kw.TotalKeywords)

	var platforms struct {
		Platforms []analytics.PlatformStats `json:"platforms"`
	}
	w = get(t, r, "/api/v1/analytics/platforms", &platforms)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, platforms.Platforms, 3)
}

func TestCategoryQueryIsTrimmed(t *testing.T) {
	r, _ := setupRouter(t)

	var hot rankingResponse
	w := get(t, r, "/api/v1/rankings/hot?category=%20Electronics%20", &hot)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, hot.Count)
	for _, e := range hot.Products {
		assert.Equal(t, "Electronics", e.Category)
	}

	var value rankingResponse
	w = get(t, r, "/api/v1/rankings/value?category=Electronics%09", &value)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, value.Count)

	var groups groupedResponse
	w = get(t, r, "/api/v1/rankings/cross-platform?category=%20Electronics", &groups)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, groups.Groups, 3)

	var padded, plain analytics.PriceDistribution
	get(t, r, "/api/v1/analytics/price-distribution?category=%20Home%20", &padded)
	get(t, r, "/api/v1/analytics/price-distribution?category=Home", &plain)
	assert.Equal(t, plain, padded)
	assert.Equal(t, 2, padded.Count)
}

func TestSystemStatsEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	var stats analytics.SystemStats
	w := get(t, r, "/api/v1/stats", &stats)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 12, stats.TotalProducts)
	assert.Equal(t, 5, stats.TotalCategories)
	require.NotNil(t, stats.LastUpdated)
	assert.True(t, testNow.Equal(*stats.LastUpdated))
	assert.Len(t, stats.Platforms, 3)
}

type fakeAssistant struct {
	answer string
	err    error
	asked  string
}

func (f *fakeAssistant) Ask(_ context.Context, question string) (string, error) {
	f.asked = question
	return f.answer, f.err
}

func post(t *testing.T, r http.Handler, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAskEndpoint(t *testing.T) {
	assistant := &fakeAssistant{answer: "Electronics is growing fastest."}
	r, _ := setupRouterWithAssistant(t, assistant)

	w := post(t, r, "/api/v1/ask", `{"question":"What sells best?"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "What sells best?", resp.Question)
	assert.Equal(t, "Electronics is growing fastest.", resp.Answer)
	assert.Equal(t, "What sells best?", assistant.asked)

	w = post(t, r, "/api/v1/ask", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = post(t, r, "/api/v1/ask", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskEndpointErrors(t *testing.T) {
	r, _ := setupRouter(t)
	w := post(t, r, "/api/v1/ask", `{"question":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	r, _ = setupRouterWithAssistant(t, &fakeAssistant{err: llm.ErrEmptyQuestion})
	w = post(t, r, "/api/v1/ask", `{"question":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	r, _ = setupRouterWithAssistant(t, &fakeAssistant{err: errors.New("upstream timeout")})
	w = post(t, r, "/api/v1/ask", `{"question":"hi"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "upstream timeout", body.Error)
}
