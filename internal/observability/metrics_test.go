package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry(), "test")

	m.ObserveOperation("hot_products", time.Now())
	m.ObserveOperation("hot_products", time.Now())
	m.RecordDegraded("rising_products")
	m.RecordRejected("missing_id")
	m.RecordStored(true)
	m.RecordStored(false)
	m.RecordDBQuery("postgres", "query_current", 0.01, errors.New("boom"))
	m.RecordReport("csv")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("hot_products")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DegradedResults.WithLabelValues("rising_products")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsRejected.WithLabelValues("missing_id")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsStored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotsStored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotsSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("postgres", "query_current")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsGenerated.WithLabelValues("csv")))
	assert.Greater(t, testutil.ToFloat64(m.LastSuccessfulIngestion), 0.0)
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("x", time.Now())
		m.RecordDegraded("x")
		m.RecordStored(true)
		m.RecordHTTPRequest("GET", "/", "200", 0.1)
	})
}
