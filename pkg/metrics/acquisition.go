package metrics

import "time"

// AcquisitionMetrics observes the consumer side of a capture session.
//
// A nil AcquisitionMetrics disables collection; use the package helpers,
// which check for nil, when the value may be unset.
//
// Example usage:
//
//	m := prometheus.NewAcquisitionMetrics(metrics.GetRegistry())
//	session, err := acquisition.New(cfg, b, acquisition.WithMetrics(m))
type AcquisitionMetrics interface {
	// ObserveBlock records one processed raw block.
	//
	// Parameters:
	//   - bytes: Raw size of the block as received
	//   - duration: Time from dequeue to stored
	ObserveBlock(bytes int, duration time.Duration)

	// RecordDiscarded counts raw blocks dropped by the discard mode.
	RecordDiscarded(n uint64)

	// RecordOverruns counts overruns reported by the transport.
	RecordOverruns(n uint64)

	// RecordError counts a failed pipeline stage ("decompress",
	// "rearrange", "store").
	RecordError(stage string)

	// SetQueueDepth reports the number of raw blocks waiting.
	SetQueueDepth(n int)

	// SetChannelLength reports the samples stored per channel of a group.
	SetChannelLength(group int, samples uint64)

	// SetThroughput reports the transport throughput in MB/s.
	SetThroughput(mbps float64)
}

// ObserveBlock records a processed block if m is not nil.
func ObserveBlock(m AcquisitionMetrics, bytes int, duration time.Duration) {
	if m != nil {
		m.ObserveBlock(bytes, duration)
	}
}

// RecordDiscarded counts discarded blocks if m is not nil.
func RecordDiscarded(m AcquisitionMetrics, n uint64) {
	if m != nil && n > 0 {
		m.RecordDiscarded(n)
	}
}

// RecordOverruns counts overruns if m is not nil.
func RecordOverruns(m AcquisitionMetrics, n uint64) {
	if m != nil && n > 0 {
		m.RecordOverruns(n)
	}
}

// RecordError counts a failed stage if m is not nil.
func RecordError(m AcquisitionMetrics, stage string) {
	if m != nil {
		m.RecordError(stage)
	}
}
