package widget

import (
	"chat-widget/internal/bridge"
	"chat-widget/internal/visibility"
	"chat-widget/internal/widgeterr"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors shared by every controller of a process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	transitions *prometheus.CounterVec
	messages    *prometheus.CounterVec
	errors      *prometheus.CounterVec
	mounted     prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_widget_transitions_total",
				Help: "Surface transitions by direction and outcome.",
			},
			[]string{"direction", "result"},
		),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_widget_messages_total",
				Help: "Messages received from the chat surface by kind.",
			},
			[]string{"kind"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_widget_errors_total",
				Help: "Errors reported to the host by kind.",
			},
			[]string{"kind"},
		),
		mounted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_widget_mounted",
			Help: "Number of currently mounted chat surfaces.",
		}),
	}
	reg.MustRegister(m.transitions, m.messages, m.errors, m.mounted)
	return m
}

func (m *Metrics) transition(dir visibility.Direction, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(dir.String(), result).Inc()
}

func (m *Metrics) message(kind bridge.Kind) {
	if m == nil {
		return
	}
	label := string(kind)
	switch {
	case kind == "":
		label = "invalid"
	case !kind.Known():
		label = "unknown"
	}
	m.messages.WithLabelValues(label).Inc()
}

func (m *Metrics) reported(rec widgeterr.Record) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(string(rec.Kind)).Inc()
}

func (m *Metrics) mount(delta float64) {
	if m == nil {
		return
	}
	m.mounted.Add(delta)
}
