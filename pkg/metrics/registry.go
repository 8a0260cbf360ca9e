// Package metrics provides the engine's Prometheus metrics surface. Callers
// must invoke InitRegistry before constructing any concrete metrics struct;
// until then every constructor returns nil, and every metrics method is
// nil-receiver safe, giving zero overhead when metrics are disabled.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	enabled  atomic.Bool
	registry atomic.Pointer[prometheus.Registry]
)

// InitRegistry enables metrics collection against reg. Passing nil creates a
// fresh prometheus.NewRegistry().
func InitRegistry(reg *prometheus.Registry) *prometheus.Registry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	registry.Store(reg)
	enabled.Store(true)
	return reg
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return enabled.Load()
}

// GetRegistry returns the active registry, or nil if metrics are disabled.
func GetRegistry() *prometheus.Registry {
	return registry.Load()
}
