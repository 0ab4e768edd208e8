// metrics.go - prometheus counters for the multiplexed client.
package client

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus collectors a Client reports command
// activity to. The zero value (nil *Metrics) is handled by every call
// site; counting is simply skipped.
type Metrics struct {
	CommandsSent  prometheus.Counter
	CommandErrors prometheus.Counter
}

// NewMetrics registers and returns a Metrics bound to reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		CommandsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "client", Name: "commands_sent_total",
			Help: "Number of SMP commands sent to the broker.",
		}),
		CommandErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "client", Name: "command_errors_total",
			Help: "Number of SMP commands that resolved to an error response.",
		}),
	}
	reg.MustRegister(m.CommandsSent, m.CommandErrors)
	return m
}
