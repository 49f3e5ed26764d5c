package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/summary"
)

type stubHot struct {
	limit int
}

func (s *stubHot) HotProducts(_ context.Context, _, _, _ string, limit int) []domain.RankingEntry {
	s.limit = limit
	return []domain.RankingEntry{
		{Rank: 1, ProductRecord: domain.ProductRecord{Name: "Air Fryer", Platform: "amazon", Category: "Home", Price: 89.9, SalesVolume: 1200, Rating: 4.6}},
	}
}

type stubSummaries struct{}

func (stubSummaries) Compose(context.Context, string, int) summary.Summary {
	return summary.Summary{Narrative: "Overall sales are rising."}
}

type stubCategories struct {
	err error
}

func (s stubCategories) DistinctCategories(context.Context, string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []string{"Electronics", "Home"}, nil
}

func TestAdvisor_Ask(t *testing.T) {
	server := newTestServer(t, func(prompt string) (int, string) {
		assert.Contains(t, prompt, "1. Air Fryer (amazon, Home) price 89.90, sales 1200, rating 4.6")
		assert.Contains(t, prompt, "Overall sales are rising.")
		assert.Contains(t, prompt, "Categories: Electronics, Home")
		assert.True(t, strings.HasSuffix(prompt, "Question: Which category should I stock?"))
		return http.StatusOK, "Stock more Home products."
	})
	defer server.Close()

	hot := &stubHot{}
	advisor := NewAdvisor(testClient(server.URL, 0), hot, stubSummaries{}, stubCategories{}, logging.Discard())

	got, err := advisor.Ask(context.Background(), "  Which category should I stock? ")
	require.NoError(t, err)
	assert.Equal(t, "Stock more Home products.", got)
	assert.Equal(t, 10, hot.limit)
}

func TestAdvisor_CategoryFailureLeavesCategoriesOut(t *testing.T) {
	server := newTestServer(t, func(prompt string) (int, string) {
		assert.NotContains(t, prompt, "Categories:")
		assert.Contains(t, prompt, "Hot products:")
		return http.StatusOK, "ok"
	})
	defer server.Close()

	advisor := NewAdvisor(testClient(server.URL, 0), &stubHot{}, stubSummaries{}, stubCategories{err: errors.New("down")}, logging.Discard())

	got, err := advisor.Ask(context.Background(), "anything?")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestAdvisor_EmptyQuestion(t *testing.T) {
	advisor := NewAdvisor(testClient("http://127.0.0.1:1", 0), &stubHot{}, stubSummaries{}, stubCategories{}, logging.Discard())

	_, err := advisor.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAdvisor_PropagatesCompletionError(t *testing.T) {
	server := newTestServer(t, func(string) (int, string) {
		return http.StatusBadRequest, "context too long"
	})
	defer server.Close()

	advisor := NewAdvisor(testClient(server.URL, 0), &stubHot{}, stubSummaries{}, stubCategories{}, logging.Discard())

	_, err := advisor.Ask(context.Background(), "why?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context too long")
}

func TestClient_AnswerQuestionWithoutContext(t *testing.T) {
	server := newTestServer(t, func(prompt string) (int, string) {
		assert.NotContains(t, prompt, "Hot products:")
		assert.NotContains(t, prompt, "Trend summary:")
		return http.StatusOK, "No data yet."
	})
	defer server.Close()

	got, err := testClient(server.URL, 0).AnswerQuestion(context.Background(), "How is the market?", QuestionContext{})
	require.NoError(t, err)
	assert.Equal(t, "No data yet.", got)
}
