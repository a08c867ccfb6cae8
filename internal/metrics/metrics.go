package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	restarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gatewayctl",
			Subsystem: "restart",
			Name:      "runs_total",
			Help:      "Number of restart runs performed.",
		}, []string{"name"},
	)
	escalations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gatewayctl",
			Subsystem: "restart",
			Name:      "escalations_total",
			Help:      "Number of stops that needed a forced kill after the grace period.",
		}, []string{"name"},
	)
	stopFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gatewayctl",
			Subsystem: "restart",
			Name:      "stop_failures_total",
			Help:      "Number of stops where the process survived the forced kill.",
		}, []string{"name"},
	)
	launchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gatewayctl",
			Subsystem: "restart",
			Name:      "launch_failures_total",
			Help:      "Number of failed gateway launches.",
		}, []string{"name"},
	)
	lastRestart = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "gatewayctl",
			Subsystem: "restart",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last restart run.",
		}, []string{"name"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{restarts, escalations, stopFailures, launchFailures, lastRestart}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// RegisterDefault registers with the default Prometheus registry.
func RegisterDefault() error { return Register(prometheus.DefaultRegisterer) }

// Handler returns an http.Handler serving the DefaultGatherer.
func Handler() http.Handler { return promhttp.Handler() }

// Serve starts a standalone metrics listener on addr at /metrics.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	return server.ListenAndServe()
}

// Helpers below no-op until Register has been called.

func IncRestart(name string, when float64) {
	if regOK.Load() {
		restarts.WithLabelValues(name).Inc()
		lastRestart.WithLabelValues(name).Set(when)
	}
}

func IncEscalation(name string) {
	if regOK.Load() {
		escalations.WithLabelValues(name).Inc()
	}
}

func IncStopFailure(name string) {
	if regOK.Load() {
		stopFailures.WithLabelValues(name).Inc()
	}
}

func IncLaunchFailure(name string) {
	if regOK.Load() {
		launchFailures.WithLabelValues(name).Inc()
	}
}
