package prometheus

import (
	"testing"
	"time"

	"github.com/logiclink/logiclink/pkg/bufpool"
	"github.com/logiclink/logiclink/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gather returns the metric families of reg by name.
func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

// ============================================================================
// Acquisition Metrics
// ============================================================================

func TestNewAcquisitionMetrics_NilRegisterer(t *testing.T) {
	m := NewAcquisitionMetrics(nil)
	assert.Nil(t, m)

	// Package helpers accept the nil value.
	require.NotPanics(t, func() {
		metrics.ObserveBlock(m, 10, time.Millisecond)
		metrics.RecordDiscarded(m, 1)
		metrics.RecordOverruns(m, 1)
		metrics.RecordError(m, "store")
	})
}

func TestNilReceiver(t *testing.T) {
	var m *acquisitionMetrics
	require.NotPanics(t, func() {
		m.ObserveBlock(1, time.Second)
		m.RecordDiscarded(1)
		m.RecordOverruns(1)
		m.RecordError("rearrange")
		m.SetQueueDepth(1)
		m.SetChannelLength(0, 1)
		m.SetThroughput(1)
	})
}

func TestAcquisitionMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAcquisitionMetrics(reg)
	require.NotNil(t, m)

	m.ObserveBlock(4096, 2*time.Millisecond)
	m.ObserveBlock(1024, time.Millisecond)
	metrics.RecordDiscarded(m, 3)
	metrics.RecordDiscarded(m, 0)
	m.RecordOverruns(2)
	m.RecordError("decompress")
	m.RecordError("decompress")
	m.SetQueueDepth(5)
	m.SetChannelLength(1, 8192)
	m.SetThroughput(42.5)

	f := gather(t, reg)

	assert.Equal(t, 2.0, f["logiclink_blocks_processed_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 5120.0, f["logiclink_bytes_processed_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, uint64(2), f["logiclink_block_duration_milliseconds"].GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, 3.0, f["logiclink_blocks_discarded_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 2.0, f["logiclink_overruns_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 5.0, f["logiclink_queue_depth"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 42.5, f["logiclink_transport_throughput_mbps"].GetMetric()[0].GetGauge().GetValue())

	errs := f["logiclink_block_errors_total"].GetMetric()
	require.Len(t, errs, 1)
	assert.Equal(t, "stage", errs[0].GetLabel()[0].GetName())
	assert.Equal(t, "decompress", errs[0].GetLabel()[0].GetValue())
	assert.Equal(t, 2.0, errs[0].GetCounter().GetValue())

	lengths := f["logiclink_channel_length_samples"].GetMetric()
	require.Len(t, lengths, 1)
	assert.Equal(t, "1", lengths[0].GetLabel()[0].GetValue())
	assert.Equal(t, 8192.0, lengths[0].GetGauge().GetValue())
}

func TestAcquisitionMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewAcquisitionMetrics(reg)
	assert.Panics(t, func() { NewAcquisitionMetrics(reg) })
}

// ============================================================================
// Buffer Pool
// ============================================================================

func TestRegisterBufferPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	pool := bufpool.NewPool(bufpool.Config{Sizes: []int{64}})
	require.NoError(t, RegisterBufferPool(reg, pool.Stats))

	pool.Put(pool.Get(10))
	pool.Get(100)

	f := gather(t, reg)
	assert.Equal(t, 2.0, f["logiclink_bufpool_gets_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, f["logiclink_bufpool_puts_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, f["logiclink_bufpool_oversized_total"].GetMetric()[0].GetCounter().GetValue())

	assert.Error(t, RegisterBufferPool(reg, pool.Stats))
	assert.NoError(t, RegisterBufferPool(nil, pool.Stats))
}
