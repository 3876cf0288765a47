// Package metrics defines the observability hooks of the capture pipeline.
//
// Components accept a metrics interface and treat nil as "disabled"; the
// prometheus subpackage provides the implementation. The process-wide
// registry is created by InitRegistry and served by the API server.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the process-wide registry with Go runtime and
// process collectors. Calling it again replaces the registry.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mu.Lock()
	registry = reg
	mu.Unlock()
	return reg
}

// GetRegistry returns the process-wide registry, or nil before
// InitRegistry.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// IsEnabled reports whether InitRegistry was called.
func IsEnabled() bool {
	return GetRegistry() != nil
}

// Reset drops the process-wide registry.
func Reset() {
	mu.Lock()
	registry = nil
	mu.Unlock()
}
