package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// remoteOps counts remote store round trips by backend, operation and result
	remoteOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pap_remote_operations_total",
		Help: "Remote store operations by backend, operation and result",
	}, []string{"backend", "operation", "result"})

	remoteLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pap_remote_operation_duration_seconds",
		Help:    "Remote store operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
	}, []string{"backend", "operation"})

	// analyses counts claim analyses by the source that produced them
	analyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pap_analyses_total",
		Help: "Claim analyses by source and fallback reason",
	}, []string{"source", "reason"})

	cacheWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pap_cache_writes_total",
		Help: "Local cache writes by collection and result",
	}, []string{"collection", "result"})

	demoMode = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pap_demo_mode",
		Help: "1 while the session runs on seed data with outbound sync suppressed",
	})
)

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// ObserveRemote records one remote store operation
func ObserveRemote(backend, op string, ok bool, elapsed time.Duration) {
	remoteOps.WithLabelValues(backend, op, result(ok)).Inc()
	remoteLatency.WithLabelValues(backend, op).Observe(elapsed.Seconds())
}

// ObserveAnalysis records which path produced an analysis; reason is empty for AI results
func ObserveAnalysis(source, reason string) {
	analyses.WithLabelValues(source, reason).Inc()
}

// ObserveCacheWrite records a local cache write outcome
func ObserveCacheWrite(collection string, ok bool) {
	cacheWrites.WithLabelValues(collection, result(ok)).Inc()
}

// SetDemoMode flips the demo mode gauge
func SetDemoMode(on bool) {
	if on {
		demoMode.Set(1)
		return
	}
	demoMode.Set(0)
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
