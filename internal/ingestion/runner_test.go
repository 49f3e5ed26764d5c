package ingestion_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/ingestion"
	"ecommerce-trend-lab/internal/ingestion/stub"
	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/storage/memory"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestRunner_Run(t *testing.T) {
	day1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	source := stub.NewStaticSource(
		[]ingestion.RawRecord{
			{Platform: "Amazon", ProductID: "a1", Name: "Desk Lamp", Price: f64(30), SalesVolume: i64(100), Rating: f64(4.5), Category: "home", CollectedAt: &day1},
			{Platform: "amazon", ProductID: ""},
		},
		[]ingestion.RawRecord{
			{Platform: "amazon", ProductID: "a1", Name: "Desk Lamp", Price: f64(28), SalesVolume: i64(180), Rating: f64(4.6), Category: "home", CollectedAt: &day2},
			{Platform: "amazon", ProductID: "a1", Name: "Desk Lamp", Price: f64(28), SalesVolume: i64(180), Rating: f64(4.6), Category: "home", CollectedAt: &day2},
			{Platform: "shopee", ProductID: "s1", Name: "Phone Case", Price: f64(5), CollectedAt: &day2},
		},
	)

	products := memory.NewProductStore()
	history := memory.NewHistoryStore()
	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Source:   source,
		Recorder: ingestion.NewRecorder(products, history, nil),
		Logger:   logging.Discard(),
	})

	stats, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ingestion.Stats{Received: 5, Rejected: 1, Stored: 4, SnapshotsSkipped: 1}, stats)
	assert.Equal(t, 2, products.Count())

	lamp, err := products.Get(context.Background(), "amazon", "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(180), lamp.SalesVolume)
	assert.Equal(t, "Home", lamp.Category)
	assert.Equal(t, []string{"desk", "lamp"}, lamp.Keywords)
	assert.Greater(t, lamp.PopularityScore, 0.0)

	snaps, err := history.QueryHistory(context.Background(), domain.HistoryFilter{ProductID: "a1"})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(100), snaps[0].SalesVolume)
	assert.Equal(t, int64(180), snaps[1].SalesVolume)
}

func TestRunner_NoSource(t *testing.T) {
	runner := ingestion.NewRunner(ingestion.RunnerOptions{Logger: logging.Discard()})
	_, err := runner.Run(context.Background())
	assert.Error(t, err)
}

func TestStats_Add(t *testing.T) {
	s := ingestion.Stats{Received: 1, Stored: 1}
	s.Add(ingestion.Stats{Received: 2, Rejected: 1, Failed: 1})
	assert.Equal(t, ingestion.Stats{Received: 3, Rejected: 1, Stored: 1, Failed: 1}, s)
}
