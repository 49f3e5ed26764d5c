package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ecommerce-trend-lab/internal/analytics"
	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/llm"
)

type rankingResponse struct {
	Products []domain.RankingEntry `json:"products"`
	Count    int                   `json:"count"`
}

type groupedResponse struct {
	Groups map[string][]domain.RankingEntry `json:"groups"`
}

func listResponse(entries []domain.RankingEntry) rankingResponse {
	if entries == nil {
		entries = []domain.RankingEntry{}
	}
	return rankingResponse{Products: entries, Count: len(entries)}
}

// HotProducts serves GET /api/v1/rankings/hot.
func (h *Handler) HotProducts(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	entries := h.rankings.HotProducts(c.Request.Context(), platformQuery(c), categoryQuery(c), c.Query("time_range"), limit)
	c.JSON(200, listResponse(entries))
}

// RisingProducts serves GET /api/v1/rankings/rising.
func (h *Handler) RisingProducts(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	days, err := intQuery(c, "days", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	entries := h.rankings.RisingProducts(c.Request.Context(), platformQuery(c), categoryQuery(c), days, limit)
	c.JSON(200, listResponse(entries))
}

// CategoryRankings serves GET /api/v1/rankings/categories.
func (h *Handler) CategoryRankings(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(200, groupedResponse{Groups: h.rankings.CategoryRankings(c.Request.Context(), platformQuery(c), limit)})
}

// PriceRangeRankings serves GET /api/v1/rankings/price-ranges.
func (h *Handler) PriceRangeRankings(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	buckets, err := parseBuckets(c.Query("buckets"))
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(200, groupedResponse{Groups: h.rankings.PriceRangeRankings(c.Request.Context(), platformQuery(c), buckets, limit)})
}

// CrossPlatform serves GET /api/v1/rankings/cross-platform.
func (h *Handler) CrossPlatform(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(200, groupedResponse{Groups: h.rankings.CrossPlatformComparison(c.Request.Context(), categoryQuery(c), limit)})
}

// ValueRanking serves GET /api/v1/rankings/value.
func (h *Handler) ValueRanking(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(200, listResponse(h.rankings.ValueRanking(c.Request.Context(), platformQuery(c), categoryQuery(c), limit)))
}

// PopularAttributes serves GET /api/v1/attributes.
func (h *Handler) PopularAttributes(c *gin.Context) {
	topK, err := intQuery(c, "top_k", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(200, h.rankings.PopularAttributes(c.Request.Context(), platformQuery(c), categoryQuery(c), topK))
}

// Categories serves GET /api/v1/categories.
func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.products.DistinctCategories(c.Request.Context(), platformQuery(c))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list categories failed", "error", err)
		serverError(c, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(200, gin.H{"categories": categories})
}

func (h *Handler) days(c *gin.Context) (int, bool) {
	days, err := intQuery(c, "days", 0)
	if err != nil {
		badRequest(c, err)
		return 0, false
	}
	return days, true
}

// SalesTrend serves GET /api/v1/trends/sales.
func (h *Handler) SalesTrend(c *gin.Context) {
	if days, ok := h.days(c); ok {
		c.JSON(200, h.trends.SalesTrend(c.Request.Context(), scopeQuery(c), days))
	}
}

// RatingTrend serves GET /api/v1/trends/rating.
func (h *Handler) RatingTrend(c *gin.Context) {
	if days, ok := h.days(c); ok {
		c.JSON(200, h.trends.RatingTrend(c.Request.Context(), scopeQuery(c), days))
	}
}

// PriceTrend serves GET /api/v1/trends/price.
func (h *Handler) PriceTrend(c *gin.Context) {
	if days, ok := h.days(c); ok {
		c.JSON(200, h.trends.PriceTrend(c.Request.Context(), scopeQuery(c), days))
	}
}

// CategoryTrend serves GET /api/v1/trends/categories.
func (h *Handler) CategoryTrend(c *gin.Context) {
	if days, ok := h.days(c); ok {
		c.JSON(200, h.trends.CategoryTrend(c.Request.Context(), platformQuery(c), days))
	}
}

// PlatformTrend serves GET /api/v1/trends/platforms.
func (h *Handler) PlatformTrend(c *gin.Context) {
	if days, ok := h.days(c); ok {
		c.JSON(200, h.trends.PlatformTrend(c.Request.Context(), categoryQuery(c), days))
	}
}

// SalesBreakdown serves GET /api/v1/trends/breakdown.
func (h *Handler) SalesBreakdown(c *gin.Context) {
	if days, ok := h.days(c); ok {
		c.JSON(200, h.trends.SalesBreakdown(c.Request.Context(), platformQuery(c), categoryQuery(c), days))
	}
}

// Summary serves GET /api/v1/trends/summary.
func (h *Handler) Summary(c *gin.Context) {
	if days, ok := h.days(c); ok {
		c.JSON(200, h.summaries.Compose(c.Request.Context(), platformQuery(c), days))
	}
}

// PriceDistribution serves GET /api/v1/analytics/price-distribution.
func (h *Handler) PriceDistribution(c *gin.Context) {
	filter, err := productFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	dist, err := h.analytics.PriceDistribution(c.Request.Context(), filter)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(200, dist)
}

// RatingDistribution serves GET /api/v1/analytics/rating-distribution.
func (h *Handler) RatingDistribution(c *gin.Context) {
	filter, err := productFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	buckets, err := h.analytics.RatingDistribution(c.Request.Context(), filter)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(200, gin.H{"buckets": buckets})
}

// Keywords serves GET /api/v1/analytics/keywords.
func (h *Handler) Keywords(c *gin.Context) {
	filter, err := productFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	limit, err := intQuery(c, "limit", 20)
	if err != nil {
		badRequest(c, err)
		return
	}
	report, err := h.analytics.Keywords(c.Request.Context(), filter, limit)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(200, report)
}

// PlatformStats serves GET /api/v1/analytics/platforms.
func (h *Handler) PlatformStats(c *gin.Context) {
	stats, err := h.analytics.PlatformStats(c.Request.Context(), categoryQuery(c))
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(200, gin.H{"platforms": stats})
}

// SystemStats serves GET /api/v1/stats.
func (h *Handler) SystemStats(c *gin.Context) {
	stats, err := h.analytics.SystemStats(c.Request.Context())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "system stats failed", "error", err)
		serverError(c, err)
		return
	}
	if stats.Platforms == nil {
		stats.Platforms = []analytics.PlatformStats{}
	}
	c.JSON(200, stats)
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

// Ask serves POST /api/v1/ask.
func (h *Handler) Ask(c *gin.Context) {
	if h.assistant == nil {
		unavailable(c, "assistant is not enabled")
		return
	}
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errors.New("body must be {\"question\": \"...\"}"))
		return
	}
	answer, err := h.assistant.Ask(c.Request.Context(), req.Question)
	switch {
	case errors.Is(err, llm.ErrEmptyQuestion):
		badRequest(c, err)
	case err != nil:
		c.AbortWithStatusJSON(502, errorResponse{Error: err.Error(), RequestID: c.GetString(requestIDKey)})
	default:
		c.JSON(200, gin.H{"question": req.Question, "answer": answer})
	}
}
