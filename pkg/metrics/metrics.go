// Package metrics holds the process-wide Prometheus registry and the
// observability interfaces Stardust components accept, following the
// teacher's metrics/prometheus split: a plain interface here, a
// promauto-backed implementation under metrics/prometheus, nil-safe so
// passing nil disables collection with zero overhead.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry creates the process-wide registry. Call once at startup
// when config.MetricsConfig.Enabled is true.
func InitRegistry() *prometheus.Registry {
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the process-wide registry, or nil if metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}
