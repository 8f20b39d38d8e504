// Package metrics registers the Prometheus collectors the exchange engine
// updates as exchanges progress through their state machine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the engine's collectors, registered against a private
// registry so callers choose when/whether to expose them.
type Metrics struct {
	Registry *prometheus.Registry

	ExchangesStarted  prometheus.Counter
	ExchangesTerminal *prometheus.CounterVec
	WriteStallSeconds prometheus.Histogram
}

// New builds and registers a fresh collector set.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		ExchangesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gohttpcore_exchanges_started_total",
			Help: "Total exchanges that entered READING_HEAD.",
		}),
		ExchangesTerminal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gohttpcore_exchanges_terminal_total",
			Help: "Total exchanges that reached a terminal state, by state.",
		}, []string{"state"}),
		WriteStallSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gohttpcore_write_stall_seconds",
			Help:    "Time spent blocked writing a response body under backpressure.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.ExchangesStarted, m.ExchangesTerminal, m.WriteStallSeconds)
	return m
}
