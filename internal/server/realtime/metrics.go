package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// hubClients is the current number of connected websocket clients.
	hubClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "itemsync_server_ws_clients",
		Help: "Current number of connected websocket clients",
	})

	// hubMessages counts outbound messages by type.
	hubMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itemsync_server_ws_messages_total",
		Help: "Total number of websocket messages sent by type",
	}, []string{"type"})

	// hubSignals counts inbound client signals by type.
	hubSignals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itemsync_server_ws_signals_total",
		Help: "Total number of client signals received by type",
	}, []string{"type"})

	// hubLocks is the current number of held editing locks.
	hubLocks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "itemsync_server_edit_locks",
		Help: "Current number of items locked for editing",
	})
)
