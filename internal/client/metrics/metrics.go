// Package metrics exposes Prometheus metrics of the sync layer.
//
// Metrics are package-level and registered in the default registry, so
// every component records into the same set without wiring a registry
// through constructors. Serve them with Handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// cacheRequests counts intercepted GET requests by strategy and outcome.
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itemsync_cache_requests_total",
		Help: "Total number of intercepted GET requests by strategy and outcome",
	}, []string{"strategy", "outcome"})

	// requestRetries counts executor retries of direct calls.
	requestRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "itemsync_request_retries_total",
		Help: "Total number of request retries performed by the executor",
	})

	// queuePending is the current number of queued actions.
	queuePending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "itemsync_queue_pending",
		Help: "Current number of actions waiting in the offline queue",
	})

	// replayResults counts replay outcomes of queued actions.
	replayResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itemsync_replay_results_total",
		Help: "Total number of queued action replays by outcome",
	}, []string{"outcome"})

	// realtimeState is the current realtime transport state.
	realtimeState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "itemsync_realtime_state",
		Help: "Realtime transport state (0 disconnected, 1 connecting, 2 connected, 3 reconnecting)",
	})

	// realtimeEvents counts inbound realtime events by tag.
	realtimeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itemsync_realtime_events_total",
		Help: "Total number of inbound realtime events by type",
	}, []string{"type"})

	// realtimeReconnects counts reconnect attempts.
	realtimeReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "itemsync_realtime_reconnects_total",
		Help: "Total number of realtime reconnect attempts",
	})

	// signalsDropped counts outbound signals dropped by the rate limiter or a full buffer.
	signalsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "itemsync_realtime_signals_dropped_total",
		Help: "Total number of outbound realtime signals dropped",
	})

	// networkOnline is 1 while the network monitor considers the client online.
	networkOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "itemsync_network_online",
		Help: "1 if the client is online, 0 otherwise",
	})
)

// RecordCacheResult records the outcome of an intercepted request.
func RecordCacheResult(strategy, outcome string) {
	cacheRequests.WithLabelValues(strategy, outcome).Inc()
}

// RecordRequestRetry records one executor retry.
func RecordRequestRetry() {
	requestRetries.Inc()
}

// SetQueuePending sets the number of queued actions.
func SetQueuePending(n int) {
	queuePending.Set(float64(n))
}

// RecordReplay records the outcome of one queued action replay.
func RecordReplay(outcome string) {
	replayResults.WithLabelValues(outcome).Inc()
}

// SetRealtimeState sets the realtime transport state.
func SetRealtimeState(state int) {
	realtimeState.Set(float64(state))
}

// RecordRealtimeEvent records one inbound event.
func RecordRealtimeEvent(tag string) {
	realtimeEvents.WithLabelValues(tag).Inc()
}

// RecordReconnect records one reconnect attempt.
func RecordReconnect() {
	realtimeReconnects.Inc()
}

// RecordSignalDropped records one dropped outbound signal.
func RecordSignalDropped() {
	signalsDropped.Inc()
}

// SetOnline sets the online gauge.
func SetOnline(online bool) {
	if online {
		networkOnline.Set(1)
		return
	}
	networkOnline.Set(0)
}

// Handler serves the default registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
