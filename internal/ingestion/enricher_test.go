package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/scoring"
)

type fakeAnnotator struct {
	calls atomic.Int32
	fail  string
}

func (f *fakeAnnotator) Annotate(_ context.Context, p *domain.ProductRecord) (Annotation, error) {
	f.calls.Add(1)
	if p.ProductID == f.fail {
		return Annotation{}, errors.New("llm unavailable")
	}
	// Stagger completion so out-of-order finishes would show up.
	if p.ProductID == "p0" {
		time.Sleep(20 * time.Millisecond)
	}
	return Annotation{
		Description: "Better " + p.Name,
		Keywords:    []string{"Gift", "mouse"},
		Sentiment:   ptr(140.0),
	}, nil
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("Wireless Mouse 2.4G 无线鼠标 a mouse")
	assert.Equal(t, []string{"wireless", "mouse", "无线鼠标"}, got)

	long := ExtractKeywords("aa bb cc dd ee ff gg hh ii jj kk ll")
	assert.Len(t, long, maxKeywords)
	assert.Equal(t, "jj", long[9])
}

func TestEnricher_Enrich(t *testing.T) {
	e := NewEnricher(nil, 0, logging.Discard(), nil)
	in := &domain.ProductRecord{
		Platform: "amazon", ProductID: "1", Name: "Wireless Mouse",
		Rating: 4, SalesVolume: 500, ReviewsCount: 100, Price: 20,
		Keywords: []string{"usb"},
	}

	out := e.Enrich(context.Background(), in)

	assert.Equal(t, []string{"usb", "wireless", "mouse"}, out.Keywords)
	assert.Equal(t, scoring.Popularity(in), out.PopularityScore)
	assert.Equal(t, scoring.PriceTier(in), out.PriceTier)
	require.NotNil(t, out.SentimentScore)
	assert.InDelta(t, 80.0, *out.SentimentScore, 1e-9)
	assert.Equal(t, []string{"usb"}, in.Keywords, "input must not be mutated")
}

func TestEnricher_Annotator(t *testing.T) {
	ann := &fakeAnnotator{fail: "bad"}
	e := NewEnricher(ann, 2, logging.Discard(), nil)

	good := e.Enrich(context.Background(), &domain.ProductRecord{Platform: "a", ProductID: "ok", Name: "Mouse"})
	assert.Equal(t, "Better Mouse", good.Description)
	assert.Equal(t, []string{"mouse", "gift"}, good.Keywords)
	require.NotNil(t, good.SentimentScore)
	assert.Equal(t, 100.0, *good.SentimentScore)

	bad := e.Enrich(context.Background(), &domain.ProductRecord{Platform: "a", ProductID: "bad", Name: "Mouse", Description: "plain"})
	assert.Equal(t, "plain", bad.Description)
	assert.Equal(t, []string{"mouse", "plain"}, bad.Keywords)
	assert.Nil(t, bad.SentimentScore)
}

func TestEnricher_BatchPreservesOrder(t *testing.T) {
	ann := &fakeAnnotator{}
	e := NewEnricher(ann, 3, logging.Discard(), nil)

	var in []*domain.ProductRecord
	for i := 0; i < 8; i++ {
		in = append(in, &domain.ProductRecord{Platform: "amazon", ProductID: fmt.Sprintf("p%d", i), Name: "Item"})
	}

	out, err := e.EnrichBatch(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].ProductID, out[i].ProductID)
	}
	assert.Equal(t, int32(8), ann.calls.Load())
}

func TestEnricher_BatchCancelled(t *testing.T) {
	e := NewEnricher(nil, 1, logging.Discard(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.EnrichBatch(ctx, []*domain.ProductRecord{{Platform: "a", ProductID: "1"}})
	assert.ErrorIs(t, err, context.Canceled)
}
