package metrics

import (
	"maps"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager before its collectors are registered.
type Option func(*Manager)

// WithScope prefixes every collector name with namespace_subsystem_. Empty
// parts keep the defaults.
func WithScope(namespace, subsystem string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithLatencyBuckets sets exponential millisecond buckets for the request,
// queue and error latency histograms. Invalid shapes are ignored.
func WithLatencyBuckets(start, factor float64, count int) Option {
	return func(m *Manager) {
		if start <= 0 || factor <= 1 || count < 1 {
			return
		}
		m.histogramBuckets = prometheus.ExponentialBuckets(start, factor, count)
	}
}

// WithConstLabels attaches a copy of labels to every collector.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.constLabels = prometheus.Labels(maps.Clone(labels))
		}
	}
}

// WithRegistry registers the collectors on r instead of the default registerer.
func WithRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}
