package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-trend-lab/internal/domain"
)

func reply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
}

func newTestServer(t *testing.T, handler func(prompt string) (int, string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "test-model", req.Model)

		status, content := handler(req.Messages[1].Content)
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"` + content + `"}}`))
			return
		}
		reply(w, content)
	}))
}

func testClient(url string, retries int) *Client {
	return NewClient(Config{BaseURL: url + "/", APIKey: "test-key", Model: "test-model", Timeout: 5 * time.Second, MaxRetries: retries})
}

func TestClient_Complete(t *testing.T) {
	server := newTestServer(t, func(prompt string) (int, string) {
		return http.StatusOK, "  hello  "
	})
	defer server.Close()

	got, err := testClient(server.URL, 0).Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestClient_APIError(t *testing.T) {
	server := newTestServer(t, func(string) (int, string) {
		return http.StatusUnauthorized, "bad key"
	})
	defer server.Close()

	_, err := testClient(server.URL, 0).Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "bad key")
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := newTestServer(t, func(string) (int, string) {
		if calls.Add(1) == 1 {
			return http.StatusServiceUnavailable, "busy"
		}
		return http.StatusOK, "ok"
	})
	defer server.Close()

	got, err := testClient(server.URL, 2).Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_EmptyCompletion(t *testing.T) {
	server := newTestServer(t, func(string) (int, string) { return http.StatusOK, "   " })
	defer server.Close()

	_, err := testClient(server.URL, 0).Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestClient_Annotate(t *testing.T) {
	server := newTestServer(t, func(prompt string) (int, string) {
		switch {
		case strings.Contains(prompt, "Product name: Desk Lamp"):
			assert.Contains(t, prompt, "Category: Home")
			return http.StatusOK, "A bright LED desk lamp."
		case strings.Contains(prompt, "SEO keywords"):
			return http.StatusOK, "1. desk lamp\n2. LED, \"reading light\""
		}
		return http.StatusBadRequest, "unexpected prompt"
	})
	defer server.Close()

	ann, err := testClient(server.URL, 0).Annotate(context.Background(), &domain.ProductRecord{Name: "Desk Lamp", Category: "Home"})
	require.NoError(t, err)
	assert.Equal(t, "A bright LED desk lamp.", ann.Description)
	assert.Equal(t, []string{"desk lamp", "LED", "reading light"}, ann.Keywords)
	assert.Nil(t, ann.Sentiment)
}

func TestClient_AnnotateScoresListingSentiment(t *testing.T) {
	server := newTestServer(t, func(prompt string) (int, string) {
		switch {
		case strings.Contains(prompt, "overall sentiment"):
			assert.Contains(t, prompt, "- Sturdy kettle, customers love it")
			return http.StatusOK, "82"
		case strings.Contains(prompt, "SEO keywords"):
			return http.StatusOK, "kettle, steel"
		case strings.Contains(prompt, "Sturdy kettle, customers love it"):
			return http.StatusOK, "A sturdy steel kettle loved by customers."
		}
		return http.StatusBadRequest, "unexpected prompt"
	})
	defer server.Close()

	p := &domain.ProductRecord{Name: "Kettle", Category: "Home", Description: "Sturdy kettle, customers love it"}
	ann, err := testClient(server.URL, 0).Annotate(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "A sturdy steel kettle loved by customers.", ann.Description)
	assert.Equal(t, []string{"kettle", "steel"}, ann.Keywords)
	require.NotNil(t, ann.Sentiment)
	assert.Equal(t, 82.0, *ann.Sentiment)
}

func TestClient_AnnotateIgnoresSentimentFailure(t *testing.T) {
	server := newTestServer(t, func(prompt string) (int, string) {
		switch {
		case strings.Contains(prompt, "overall sentiment"):
			return http.StatusOK, "neutral"
		case strings.Contains(prompt, "SEO keywords"):
			return http.StatusOK, "kettle"
		}
		return http.StatusOK, "Enhanced."
	})
	defer server.Close()

	ann, err := testClient(server.URL, 0).Annotate(context.Background(), &domain.ProductRecord{Name: "Kettle", Description: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "Enhanced.", ann.Description)
	assert.Nil(t, ann.Sentiment)
}

func TestClient_AnalyzeSentiment(t *testing.T) {
	server := newTestServer(t, func(prompt string) (int, string) {
		assert.Contains(t, prompt, "- great value")
		return http.StatusOK, "Score: 87"
	})
	defer server.Close()

	got, err := testClient(server.URL, 0).AnalyzeSentiment(context.Background(), []string{"great value"})
	require.NoError(t, err)
	assert.Equal(t, 87.0, got)

	_, err = testClient(server.URL, 0).AnalyzeSentiment(context.Background(), nil)
	assert.Error(t, err)
}

func TestParseScore(t *testing.T) {
	v, err := ParseScore("about 250 points")
	require.NoError(t, err)
	assert.Equal(t, 100.0, v)

	v, err = ParseScore("72.5")
	require.NoError(t, err)
	assert.Equal(t, 72.5, v)

	_, err = ParseScore("neutral")
	assert.Error(t, err)
}

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, []string{"5G router", "wifi", "mesh"}, ParseKeywords("- 5G router; wifi，mesh\n\n"))
	assert.Empty(t, ParseKeywords("  "))
}
