// Package api exposes rankings, trends and analytics over HTTP with gin.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ecommerce-trend-lab/internal/analytics"
	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/observability"
	"ecommerce-trend-lab/internal/ranking"
	"ecommerce-trend-lab/internal/storage"
	"ecommerce-trend-lab/internal/summary"
	"ecommerce-trend-lab/internal/trend"
)

// Assistant answers free-form business questions.
type Assistant interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Dependencies are the components served by the router. Assistant is
// optional; without it /api/v1/ask answers 503.
type Dependencies struct {
	Products    storage.ProductStore
	Rankings    *ranking.Engine
	Trends      *trend.Analyzer
	Summaries   *summary.Composer
	Analytics   *analytics.Service
	Assistant   Assistant
	Logger      *slog.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
}

// Handler serves the HTTP endpoints.
type Handler struct {
	products  storage.ProductStore
	rankings  *ranking.Engine
	trends    *trend.Analyzer
	summaries *summary.Composer
	analytics *analytics.Service
	assistant Assistant
	logger    *slog.Logger
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(deps Dependencies) *gin.Engine {
	logger := logging.Component(deps.Logger, "api")
	h := &Handler{
		products:  deps.Products,
		rankings:  deps.Rankings,
		trends:    deps.Trends,
		summaries: deps.Summaries,
		analytics: deps.Analytics,
		assistant: deps.Assistant,
		logger:    logger,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(logger))
	r.Use(Metrics(deps.Metrics))
	r.Use(corsMiddleware(deps.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	v1 := r.Group("/api/v1")
	{
		rankings := v1.Group("/rankings")
		rankings.GET("/hot", h.HotProducts)
		rankings.GET("/rising", h.RisingProducts)
		rankings.GET("/categories", h.CategoryRankings)
		rankings.GET("/price-ranges", h.PriceRangeRankings)
		rankings.GET("/cross-platform", h.CrossPlatform)
		rankings.GET("/value", h.ValueRanking)

		v1.GET("/attributes", h.PopularAttributes)
		v1.GET("/categories", h.Categories)
		v1.GET("/stats", h.SystemStats)
		v1.POST("/ask", h.Ask)

		trends := v1.Group("/trends")
		trends.GET("/sales", h.SalesTrend)
		trends.GET("/rating", h.RatingTrend)
		trends.GET("/price", h.PriceTrend)
		trends.GET("/categories", h.CategoryTrend)
		trends.GET("/platforms", h.PlatformTrend)
		trends.GET("/breakdown", h.SalesBreakdown)
		trends.GET("/summary", h.Summary)

		stats := v1.Group("/analytics")
		stats.GET("/price-distribution", h.PriceDistribution)
		stats.GET("/rating-distribution", h.RatingDistribution)
		stats.GET("/keywords", h.Keywords)
		stats.GET("/platforms", h.PlatformStats)
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
