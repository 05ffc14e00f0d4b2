package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "watchparty_connections_open",
		Help: "Currently open websocket connections.",
	})
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "watchparty_events_total",
		Help: "Client events handled, by type.",
	}, []string{"type"})
)

// RegisterRoomGauge exposes the live room count straight from the directory.
func RegisterRoomGauge(count func() int) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "watchparty_rooms_live",
		Help: "Rooms currently present in the directory.",
	}, func() float64 { return float64(count()) }))
}
