// metrics.go - prometheus counters for block-level transport activity.
package transport

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus collectors a THandle reports block and
// handshake activity to. A nil *Metrics is handled by every call site;
// counting is simply skipped. A non-nil Metrics must have every field set,
// as NewMetrics does.
type Metrics struct {
	BlocksSent     prometheus.Counter
	BlocksReceived prometheus.Counter
	AuthFailures   prometheus.Counter
	Handshakes     prometheus.Counter
}

// NewMetrics registers and returns a Metrics bound to reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		BlocksSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "transport", Name: "blocks_sent_total",
			Help: "Number of AES-GCM blocks written to the channel.",
		}),
		BlocksReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "transport", Name: "blocks_received_total",
			Help: "Number of AES-GCM blocks read from the channel.",
		}),
		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "transport", Name: "auth_failures_total",
			Help: "Number of blocks that failed AES-GCM authentication.",
		}),
		Handshakes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "transport", Name: "handshakes_total",
			Help: "Number of completed client handshakes.",
		}),
	}
	reg.MustRegister(m.BlocksSent, m.BlocksReceived, m.AuthFailures, m.Handshakes)
	return m
}
