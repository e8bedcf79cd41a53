package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsRegistry_IsolatedRegistries(t *testing.T) {
	a := NewMetricsRegistry(prometheus.NewRegistry())
	b := NewMetricsRegistry(prometheus.NewRegistry())

	a.RowsIngestedTotal.Add(3)
	a.BatchesFailedTotal.WithLabelValues("INVALID_TIMESTAMP").Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(a.RowsIngestedTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RowsIngestedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.BatchesFailedTotal.WithLabelValues("INVALID_TIMESTAMP")))
}

func TestNewMetricsRegistry_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetricsRegistry(reg)

	assert.Panics(t, func() { NewMetricsRegistry(reg) })
}

func TestNewMetricsRegistry_Collects(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsRegistry(reg)
	m.AliasCacheHitsTotal.Inc()
	m.HTTPRequestsTotal.WithLabelValues("/api/v1/columns", "GET", "200").Inc()

	count, err := testutil.GatherAndCount(reg, "logbook_alias_cache_hits_total", "logbook_http_requests_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}
