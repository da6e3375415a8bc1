//go:build prometheus

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewRecorder returns a Recorder backed by github.com/prometheus/client_golang,
// registered against the default registry.
func NewRecorder() Recorder {
	return &promRecorder{
		accepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mhttpd_connections_accepted_total",
			Help: "Total number of accepted client connections.",
		}),
		evicted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mhttpd_connections_evicted_total",
			Help: "Total number of evicted client connections, by reason.",
		}, []string{"reason"}),
		active: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mhttpd_active_connections",
			Help: "Number of connections currently held by the reactor.",
		}),
		tick: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mhttpd_tick_duration_seconds",
			Help:    "Duration of a single reactor tick (Process call).",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

type promRecorder struct {
	accepted prometheus.Counter
	evicted  *prometheus.CounterVec
	active   prometheus.Gauge
	tick     prometheus.Histogram
}

func (r *promRecorder) ConnectionAccepted() {
	r.accepted.Inc()
}

func (r *promRecorder) ConnectionEvicted(reason string) {
	r.evicted.WithLabelValues(reason).Inc()
}

func (r *promRecorder) ActiveConnections(n int) {
	r.active.Set(float64(n))
}

func (r *promRecorder) TickDuration(seconds float64) {
	r.tick.Observe(seconds)
}
