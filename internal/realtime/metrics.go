package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for the sent and dropped counters.
const (
	kindUnicast   = "unicast"
	kindBroadcast = "broadcast"
	kindConnected = "connected"

	reasonNotRegistered = "not_registered"
	reasonNotReady      = "not_ready"
	reasonEncode        = "encode_error"
)

type Metrics struct {
	Registered prometheus.Gauge
	Sockets    prometheus.Gauge
	Sent       *prometheus.CounterVec
	Dropped    *prometheus.CounterVec
}

// NewMetrics creates the hub collectors and registers them with reg. A nil
// reg leaves them unregistered, which tests rely on.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registered: f.NewGauge(prometheus.GaugeOpts{
			Name: "saree_ws_connections",
			Help: "Authenticated WebSocket connections in the registry.",
		}),
		Sockets: f.NewGauge(prometheus.GaugeOpts{
			Name: "saree_ws_sockets",
			Help: "Open WebSocket connections, authenticated or not.",
		}),
		Sent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "saree_ws_notifications_sent_total",
			Help: "Frames handed to a connection's send queue.",
		}, []string{"kind"}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "saree_ws_notifications_dropped_total",
			Help: "Frames that were not delivered.",
		}, []string{"reason"}),
	}
}
