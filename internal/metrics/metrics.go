// Package metrics provides Prometheus instrumentation for the economy
// engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WagersTotal counts resolved wagers, partitioned by game and outcome.
	WagersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "economy_wagers_total",
		Help: "Total number of wagers resolved",
	}, []string{"game", "outcome"})

	// WagerVolume accumulates wagered amounts per game.
	WagerVolume = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "economy_wager_volume_total",
		Help: "Cumulative wagered amount per game",
	}, []string{"game"})

	// TradesTotal counts executed buys and sells per asset class.
	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "economy_trades_total",
		Help: "Total number of trades executed",
	}, []string{"class", "side"})

	// TradeVolume accumulates cash traded per asset class.
	TradeVolume = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "economy_trade_volume_total",
		Help: "Cumulative cash value traded per asset class",
	}, []string{"class"})

	// TransfersTotal counts completed account-to-account transfers.
	TransfersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "economy_transfers_total",
		Help: "Total number of balance transfers",
	})

	// WebSocketClients tracks connected event-feed clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "economy_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// CommandsTotal counts handled bot commands by name and status.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "economy_commands_total",
		Help: "Total bot commands handled",
	}, []string{"command", "status"})

	// HTTPRequestsTotal counts ops-server requests by method, path, status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "economy_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks ops-server request duration.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "economy_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
