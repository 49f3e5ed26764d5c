package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/summary"
)

// questionHotProducts is how many hot products are quoted to the model.
const questionHotProducts = 10

// ErrEmptyQuestion is returned for blank questions.
var ErrEmptyQuestion = errors.New("question is empty")

// QuestionContext is the market data quoted alongside a business question.
type QuestionContext struct {
	HotProducts []domain.RankingEntry
	Summary     *summary.Summary
	Categories  []string
}

// AnswerQuestion asks the model a business question grounded on qc.
func (c *Client) AnswerQuestion(ctx context.Context, question string, qc QuestionContext) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	return c.Complete(ctx, questionPrompt(question, qc))
}

func questionPrompt(question string, qc QuestionContext) string {
	var b strings.Builder
	b.WriteString("Answer the business question below using the current market data. ")
	b.WriteString("Say so plainly when the data does not cover it.\n\n")

	if len(qc.HotProducts) > 0 {
		b.WriteString("Hot products:\n")
		for _, e := range qc.HotProducts {
			fmt.Fprintf(&b, "%d. %s (%s, %s) price %.2f, sales %d, rating %.1f\n",
				e.Rank, e.Name, e.Platform, e.Category, e.Price, e.SalesVolume, e.Rating)
		}
		b.WriteString("\n")
	}
	if qc.Summary != nil && qc.Summary.Narrative != "" {
		b.WriteString("Trend summary:\n")
		b.WriteString(qc.Summary.Narrative)
		b.WriteString("\n\n")
	}
	if len(qc.Categories) > 0 {
		b.WriteString("Categories: ")
		b.WriteString(strings.Join(qc.Categories, ", "))
		b.WriteString("\n\n")
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

// HotSource supplies the hot ranking.
type HotSource interface {
	HotProducts(ctx context.Context, platform, category, timeRange string, limit int) []domain.RankingEntry
}

// SummarySource supplies the composed trend summary.
type SummarySource interface {
	Compose(ctx context.Context, platform string, days int) summary.Summary
}

// CategorySource lists known categories.
type CategorySource interface {
	DistinctCategories(ctx context.Context, platform string) ([]string, error)
}

// Advisor answers business questions over the live rankings and trends.
type Advisor struct {
	client     *Client
	hot        HotSource
	summaries  SummarySource
	categories CategorySource
	logger     *slog.Logger
}

// NewAdvisor wires an advisor.
func NewAdvisor(client *Client, hot HotSource, summaries SummarySource, categories CategorySource, logger *slog.Logger) *Advisor {
	return &Advisor{
		client:     client,
		hot:        hot,
		summaries:  summaries,
		categories: categories,
		logger:     logging.Component(logger, "advisor"),
	}
}

// Gather collects the hot top 10, the default-window summary and the
// category list. A failing category listing is logged and left out.
func (a *Advisor) Gather(ctx context.Context) QuestionContext {
	s := a.summaries.Compose(ctx, "", 0)
	qc := QuestionContext{
		HotProducts: a.hot.HotProducts(ctx, "", "", "", questionHotProducts),
		Summary:     &s,
	}
	categories, err := a.categories.DistinctCategories(ctx, "")
	if err != nil {
		a.logger.WarnContext(ctx, "list categories failed", "error", err)
	}
	qc.Categories = categories
	return qc
}

// Ask answers question with freshly gathered context.
func (a *Advisor) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}
	answer, err := a.client.AnswerQuestion(ctx, question, a.Gather(ctx))
	if err != nil {
		a.logger.ErrorContext(ctx, "answer question failed", "error", err)
		return "", err
	}
	return answer, nil
}
