package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	wsSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_widget_ws_sessions",
			Help: "Current number of connected renderer sessions.",
		},
	)
	wsFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_widget_ws_frames_total",
			Help: "Websocket frames by direction and type.",
		},
		[]string{"direction", "type"},
	)
	wsIntents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_widget_ws_remote_intents_total",
			Help: "Remote visibility intents by routing result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(wsSessions, wsFrames, wsIntents)
}

func incSessions() {
	wsSessions.Inc()
}

func decSessions() {
	wsSessions.Dec()
}

func countFrame(direction string, t FrameType) {
	wsFrames.WithLabelValues(direction, string(t)).Inc()
}

func countIntent(result string) {
	wsIntents.WithLabelValues(result).Inc()
}
