package api

import (
	"net/http"
	"strings"

	"github.com/okian/motionlab/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider reports service counters for /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// ListenerCounter reports how many progress streams are open.
type ListenerCounter interface {
	Len() int
}

// HealthHandler serves /healthz: the metrics exposition by default, or a
// small liveness document when the caller asks for JSON.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler creates a health handler over the service registry.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	h.metrics.ServeHTTP(w, r)
}

// StatsHandler serves /stats.
type StatsHandler struct {
	provider  StatsProvider
	listeners ListenerCounter
}

// NewStatsHandler creates a stats handler. listeners may be nil.
func NewStatsHandler(provider StatsProvider, listeners ListenerCounter) *StatsHandler {
	return &StatsHandler{provider: provider, listeners: listeners}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	stats := map[string]interface{}{}
	if h.provider != nil {
		stats = h.provider.GetStats()
	}
	if h.listeners != nil {
		stats["progressListeners"] = h.listeners.Len()
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, stats)
}
