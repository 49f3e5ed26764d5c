// Package llm talks to an OpenAI-compatible chat completion API to enrich
// product listings with descriptions, keywords and sentiment, and to answer
// business questions over the current rankings.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/ingestion"
)

const systemPrompt = "You are an e-commerce product and market analyst."

// Config configures the client.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Client calls the chat completion endpoint.
type Client struct {
	http  *resty.Client
	model string
}

// ErrEmptyCompletion is returned when the API answers without content.
var ErrEmptyCompletion = errors.New("empty completion")

// NewClient creates a client. Requests are retried with exponential backoff
// on transport errors, 429 and 5xx responses.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(8 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == 429 || r.StatusCode() >= 500
		})

	return &Client{http: client, model: cfg.Model}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends prompt and returns the trimmed reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var out chatResponse
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: prompt},
			},
			Temperature: 0.7,
			MaxTokens:   1000,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("chat completion: status %d: %s", resp.StatusCode(), msg)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// GenerateDescription writes a listing description from the product name.
func (c *Client) GenerateDescription(ctx context.Context, name, category string) (string, error) {
	prompt := "Write an appealing product description highlighting the main features.\nProduct name: " + name
	if category != "" {
		prompt += "\nCategory: " + category
	}
	return c.Complete(ctx, prompt)
}

// EnhanceDescription rewrites a description to be more persuasive without
// adding claims.
func (c *Client) EnhanceDescription(ctx context.Context, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", nil
	}
	prompt := "Improve the following product description. Keep it accurate and do not invent facts.\n\n" + description
	return c.Complete(ctx, prompt)
}

var (
	firstNumber = regexp.MustCompile(`\d+(\.\d+)?`)
	listMarker  = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)
)

// AnalyzeSentiment scores texts from 0 (very negative) to 100 (very positive).
func (c *Client) AnalyzeSentiment(ctx context.Context, texts []string) (float64, error) {
	if len(texts) == 0 {
		return 0, errors.New("no text to analyze")
	}
	var b strings.Builder
	b.WriteString("Rate the overall sentiment of these reviews from 0 (very negative) to 100 (very positive). Reply with the number only.\n")
	for _, t := range texts {
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteString("\n")
	}

	reply, err := c.Complete(ctx, b.String())
	if err != nil {
		return 0, err
	}
	return ParseScore(reply)
}

// ExtractKeywords asks for five to ten SEO keywords.
func (c *Client) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	reply, err := c.Complete(ctx, "Extract 5-10 important SEO keywords from the text below. Reply with a comma-separated list.\n\n"+text)
	if err != nil {
		return nil, err
	}
	return ParseKeywords(reply), nil
}

// Annotate implements ingestion.Annotator. Description failures fail the
// annotation; keyword failures only drop the keywords.
func (c *Client) Annotate(ctx context.Context, p *domain.ProductRecord) (ingestion.Annotation, error) {
	var (
		desc string
		err  error
	)
	if p.Description != "" {
		desc, err = c.EnhanceDescription(ctx, p.Description)
	} else if p.Name != "" {
		desc, err = c.GenerateDescription(ctx, p.Name, p.Category)
	}
	if err != nil {
		return ingestion.Annotation{}, err
	}

	ann := ingestion.Annotation{Description: desc}
	ann.Keywords, _ = c.ExtractKeywords(ctx, strings.TrimSpace(p.Name+" "+desc))

	// Generated copy says nothing about buyers, so only listing text is scored.
	if text := strings.TrimSpace(p.Description); text != "" {
		if score, err := c.AnalyzeSentiment(ctx, []string{text}); err == nil {
			ann.Sentiment = &score
		}
	}
	return ann, nil
}

// ParseScore reads the first number in reply and clamps it to [0, 100].
func ParseScore(reply string) (float64, error) {
	m := firstNumber.FindString(reply)
	if m == "" {
		return 0, fmt.Errorf("no score in reply %q", reply)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, err
	}
	switch {
	case v < 0:
		return 0, nil
	case v > 100:
		return 100, nil
	}
	return v, nil
}

// ParseKeywords splits a comma, semicolon or newline separated list.
// List markers and surrounding quotes are dropped.
func ParseKeywords(reply string) []string {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '，' || r == '、'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = listMarker.ReplaceAllString(strings.TrimSpace(f), "")
		f = strings.TrimSpace(strings.Trim(f, "\"'"))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

var _ ingestion.Annotator = (*Client)(nil)
