package main

import (
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics use only bounded-cardinality labels (no per-tank or per-player
// ids) to keep the debug endpoint safe to scrape.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tank_game_tick_duration_seconds",
		Help:    "Time spent executing one fixed-delta simulation step",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.0167, 0.05},
	})

	skippedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tank_game_skipped_frames_total",
		Help: "Accumulator catch-up steps dropped after exceeding the cap",
	})

	aiFrameSkipRatio = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tank_game_ai_frame_skip_ratio",
		Help: "Fraction of ticks in which AI controllers were skipped",
	})

	tankCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tank_game_tank_count",
		Help: "Current number of tanks in the arena, alive or awaiting respawn",
	})

	shellCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tank_game_shell_count",
		Help: "Current number of live shells",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tank_game_connection_rejected_total",
		Help: "Connections rejected before WebSocket upgrade",
	}, []string{"reason"}) // bounded: "rate_limit", "origin"

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tank_game_ws_connections_active",
		Help: "Currently active WebSocket connections",
	})
)

// ObservabilityConfig configures the loopback-only debug server.
type ObservabilityConfig struct {
	Enabled    bool
	ListenAddr string // forced to loopback unless TANKSERVER_ALLOW_DEBUG_EXTERNAL=true
}

const fallbackDebugAddr = "127.0.0.1:6060"

// isLoopbackAddr reports whether addr's host resolves to the loopback
// interface (empty host, "localhost", or a loopback IP literal).
func isLoopbackAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	if host == "" || host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// StartDebugServer starts the /metrics + /healthz debug listener.
// CRITICAL: binds to loopback only by default — never expose externally.
func StartDebugServer(cfg ObservabilityConfig) {
	if !cfg.Enabled {
		return
	}
	addr := cfg.ListenAddr
	if !isLoopbackAddr(addr) && os.Getenv("TANKSERVER_ALLOW_DEBUG_EXTERNAL") != "true" {
		log.Warn("debug server addr is not loopback, forcing fallback (set TANKSERVER_ALLOW_DEBUG_EXTERNAL=true to override)", map[string]interface{}{"requested": addr, "addr": fallbackDebugAddr})
		addr = fallbackDebugAddr
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	go func() {
		log.Info("debug server starting", map[string]interface{}{"addr": addr})
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Warn("debug server stopped", map[string]interface{}{"error": err.Error()})
		}
	}()
}

func RecordTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

func RecordSkippedFrame() {
	skippedFrames.Inc()
}

func UpdateAIFrameSkipRatio(ratio float64) {
	aiFrameSkipRatio.Set(ratio)
}

func UpdateEntityCounts(tanks, shells int) {
	tankCount.Set(float64(tanks))
	shellCount.Set(float64(shells))
}

func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

func UpdateWSConnections(n int) {
	wsConnectionsActive.Set(float64(n))
}
