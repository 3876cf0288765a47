// Package prometheus implements the metrics interfaces with the Prometheus
// client library.
package prometheus

import (
	"strconv"
	"time"

	"github.com/logiclink/logiclink/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// acquisitionMetrics is the Prometheus implementation of
// metrics.AcquisitionMetrics.
type acquisitionMetrics struct {
	blocks        prometheus.Counter
	bytes         prometheus.Counter
	blockDuration prometheus.Histogram
	blockSize     prometheus.Histogram
	discarded     prometheus.Counter
	overruns      prometheus.Counter
	errors        *prometheus.CounterVec
	queueDepth    prometheus.Gauge
	channelLength *prometheus.GaugeVec
	throughput    prometheus.Gauge
}

// NewAcquisitionMetrics registers acquisition metrics with reg. It returns
// nil when reg is nil, which disables collection.
func NewAcquisitionMetrics(reg prometheus.Registerer) metrics.AcquisitionMetrics {
	if reg == nil {
		return nil
	}

	return &acquisitionMetrics{
		blocks: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "logiclink_blocks_processed_total",
				Help: "Total number of raw blocks stored",
			},
		),
		bytes: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "logiclink_bytes_processed_total",
				Help: "Total number of raw bytes stored",
			},
		),
		blockDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "logiclink_block_duration_milliseconds",
				Help: "Time to decompress, rearrange and store one raw block",
				Buckets: []float64{
					0.05, // 50us - small blocks
					0.1,
					0.5,
					1,
					5,
					10,
					50,
					100, // 100ms - consumer falling behind
				},
			},
		),
		blockSize: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "logiclink_block_size_bytes",
				Help: "Distribution of raw block sizes",
				Buckets: []float64{
					16384,   // 16KB - one bulk transfer
					65536,   // 64KB
					262144,  // 256KB
					1048576, // 1MB
					4194304, // 4MB
				},
			},
		),
		discarded: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "logiclink_blocks_discarded_total",
				Help: "Total number of raw blocks dropped in discard mode",
			},
		),
		overruns: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "logiclink_overruns_total",
				Help: "Total number of device buffer overruns reported by the transport",
			},
		),
		errors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "logiclink_block_errors_total",
				Help: "Total number of raw blocks that failed, by pipeline stage",
			},
			[]string{"stage"}, // "decompress", "rearrange", "store"
		),
		queueDepth: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "logiclink_queue_depth",
				Help: "Number of raw blocks waiting to be processed",
			},
		),
		channelLength: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "logiclink_channel_length_samples",
				Help: "Samples stored per channel, by group",
			},
			[]string{"group"},
		),
		throughput: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "logiclink_transport_throughput_mbps",
				Help: "Last throughput reported by the transport in MB/s",
			},
		),
	}
}

func (m *acquisitionMetrics) ObserveBlock(bytes int, duration time.Duration) {
	if m == nil {
		return
	}
	m.blocks.Inc()
	m.bytes.Add(float64(bytes))
	m.blockSize.Observe(float64(bytes))
	m.blockDuration.Observe(duration.Seconds() * 1000)
}

func (m *acquisitionMetrics) RecordDiscarded(n uint64) {
	if m == nil {
		return
	}
	m.discarded.Add(float64(n))
}

func (m *acquisitionMetrics) RecordOverruns(n uint64) {
	if m == nil {
		return
	}
	m.overruns.Add(float64(n))
}

func (m *acquisitionMetrics) RecordError(stage string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(stage).Inc()
}

func (m *acquisitionMetrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *acquisitionMetrics) SetChannelLength(group int, samples uint64) {
	if m == nil {
		return
	}
	m.channelLength.WithLabelValues(strconv.Itoa(group)).Set(float64(samples))
}

func (m *acquisitionMetrics) SetThroughput(mbps float64) {
	if m == nil {
		return
	}
	m.throughput.Set(mbps)
}
