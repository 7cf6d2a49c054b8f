package launch

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the Prometheus instruments the orchestrator updates
// around each launch attempt. Grounded on the teacher's use of
// client_golang counters/histograms for operation timing; this
// package's domain has no prior art in the teacher beyond the
// dependency itself, so the instrument set is derived directly from
// SPEC_FULL.md's launch protocol steps (readiness wait, driver
// launch/attach, overall launch outcome).
type Metrics struct {
	LaunchTotal          *prometheus.CounterVec
	LaunchDuration       prometheus.Histogram
	ReadinessWaitSeconds prometheus.Histogram
	AttachFallbackTotal  prometheus.Counter
}

// NewMetrics constructs Metrics registered against reg. A nil reg uses
// the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		LaunchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airlock",
			Subsystem: "launch",
			Name:      "total",
			Help:      "Total launch attempts by outcome.",
		}, []string{"outcome"}),
		LaunchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "airlock",
			Subsystem: "launch",
			Name:      "duration_seconds",
			Help:      "Total wall time of a launch attempt.",
			Buckets:   prometheus.DefBuckets,
		}),
		ReadinessWaitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "airlock",
			Subsystem: "launch",
			Name:      "readiness_wait_seconds",
			Help:      "Time spent waiting for dev server readiness.",
			Buckets:   prometheus.DefBuckets,
		}),
		AttachFallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airlock",
			Subsystem: "launch",
			Name:      "attach_fallback_total",
			Help:      "Total launches that fell back to CDP attach.",
		}),
	}
	reg.MustRegister(m.LaunchTotal, m.LaunchDuration, m.ReadinessWaitSeconds, m.AttachFallbackTotal)
	return m
}
