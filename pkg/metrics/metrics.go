package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"avicbot/pkg/bus"
)

const namespace = "avicbot"

// Metrics holds the chat loop counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// MessagesReceived counts chat messages handed to the responder.
	MessagesReceived prometheus.Counter

	// RepliesTotal counts replies by kind (command, keyword, usage) and trigger.
	RepliesTotal *prometheus.CounterVec

	// LinesSent counts chat lines across all replies.
	LinesSent prometheus.Counter

	// Connected is 1 while the chat loop is running.
	Connected prometheus.Gauge
}

// New registers the bot collectors plus the Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		MessagesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Chat messages read from the channel",
		}),
		RepliesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_total",
			Help:      "Replies produced by kind and trigger",
		}, []string{"kind", "trigger"}),
		LinesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reply_lines_total",
			Help:      "Chat lines queued for sending",
		}),
		Connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "Whether the chat loop is running (1) or stopped (0)",
		}),
	}
}

// ObserveReply records one produced reply.
func (m *Metrics) ObserveReply(reply bus.OutboundMessage) {
	if m == nil {
		return
	}

	m.RepliesTotal.WithLabelValues(reply.Kind, reply.Trigger).Inc()
	m.LinesSent.Add(float64(len(reply.Lines)))
}

// SetConnected flips the connection gauge.
func (m *Metrics) SetConnected(up bool) {
	if m == nil {
		return
	}

	if up {
		m.Connected.Set(1)
		return
	}
	m.Connected.Set(0)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
