package metrics

import "github.com/prometheus/client_golang/prometheus"

// RealtimeMetrics tracks websocket fan-out.
type RealtimeMetrics struct {
	clients   prometheus.Gauge
	published *prometheus.CounterVec
	dropped   *prometheus.CounterVec
}

func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	if reg == nil {
		return &RealtimeMetrics{}
	}
	clients := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "realtime",
		Name:      "connected_clients",
		Help:      "Websocket clients currently connected.",
	})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "realtime",
		Name:      "events_published_total",
		Help:      "Events handed to the hub, by event name.",
	}, []string{"event"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "realtime",
		Name:      "events_dropped_total",
		Help:      "Per-client deliveries dropped because the send buffer was full.",
	}, []string{"event"})
	reg.MustRegister(clients, published, dropped)
	return &RealtimeMetrics{clients: clients, published: published, dropped: dropped}
}

func (m *RealtimeMetrics) ClientConnected() {
	if m == nil || m.clients == nil {
		return
	}
	m.clients.Inc()
}

func (m *RealtimeMetrics) ClientDisconnected() {
	if m == nil || m.clients == nil {
		return
	}
	m.clients.Dec()
}

func (m *RealtimeMetrics) IncPublished(event string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(event)).Inc()
}

func (m *RealtimeMetrics) IncDropped(event string) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(normalizeLabel(event)).Inc()
}
