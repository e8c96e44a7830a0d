package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementIssued()
	m.IncrementIssued()
	m.IncrementHostFallback()
	m.IncrementResolve("redirect")
	m.IncrementCheck("empty")
	m.ObserveStoreOp("read", 2*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.TokensIssued), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HostEncodingFallbacks), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ResolveOutcomes.WithLabelValues("redirect")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.ResolveOutcomes.WithLabelValues("render")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CheckOutcomes.WithLabelValues("empty")), 0)

	count, err := testutil.GatherAndCount(reg, "qrpass_store_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementIssued()
		m.IncrementHostFallback()
		m.IncrementResolve("render")
		m.IncrementCheck("found")
		m.ObserveStoreOp("write", time.Millisecond)
	})
}
