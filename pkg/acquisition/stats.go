package acquisition

import "time"

// Stats summarises a session.
type Stats struct {
	Start time.Time
	Stop  time.Time

	Bytes     uint64 // raw bytes received in processed blocks
	Blocks    uint64 // blocks stored
	Corrupt   uint64 // blocks that failed to decompress
	Discarded uint64 // blocks dropped by the queue
	Overruns  uint64 // latest running total reported by the transport
	Samples   uint64 // samples per channel rearranged

	// Throughput is the last transfer rate reported by the transport in
	// MB/s.
	Throughput float64
}

// Duration returns how long the session ran, or has been running.
func (s Stats) Duration() time.Duration {
	if s.Start.IsZero() {
		return 0
	}
	if s.Stop.IsZero() {
		return time.Since(s.Start)
	}
	return s.Stop.Sub(s.Start)
}

// Mbps returns the overall rate of processed raw data in megabits per
// second.
func (s Stats) Mbps() float64 {
	d := s.Duration().Seconds()
	if d <= 0 {
		return 0
	}
	return float64(s.Bytes) * 8 / d / 1e6
}
