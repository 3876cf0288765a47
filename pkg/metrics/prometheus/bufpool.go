package prometheus

import (
	"github.com/logiclink/logiclink/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterBufferPool exposes buffer pool counters, read from stats at
// scrape time.
func RegisterBufferPool(reg prometheus.Registerer, stats metrics.PoolStats) error {
	if reg == nil {
		return nil
	}

	counters := []struct {
		name, help string
		value      func() float64
	}{
		{"logiclink_bufpool_gets_total", "Buffers handed out by the raw block pool", func() float64 { return float64(stats().Gets) }},
		{"logiclink_bufpool_puts_total", "Buffers returned to the raw block pool", func() float64 { return float64(stats().Puts) }},
		{"logiclink_bufpool_oversized_total", "Requests larger than every pool tier", func() float64 { return float64(stats().Oversized) }},
	}

	for _, c := range counters {
		if err := reg.Register(prometheus.NewCounterFunc(
			prometheus.CounterOpts{Name: c.name, Help: c.help},
			c.value,
		)); err != nil {
			return err
		}
	}
	return nil
}
