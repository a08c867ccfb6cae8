// Package gatewayctl locates, stops, and relaunches the nanobot gateway
// process. This file is the embedding facade; the CLI in cmd/gatewayctl is
// a thin layer over it.
package gatewayctl

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SmallVagetable/nanobot-hyc/internal/config"
	"github.com/SmallVagetable/nanobot-hyc/internal/history"
	"github.com/SmallVagetable/nanobot-hyc/internal/history/factory"
	"github.com/SmallVagetable/nanobot-hyc/internal/inspector"
	"github.com/SmallVagetable/nanobot-hyc/internal/logger"
	"github.com/SmallVagetable/nanobot-hyc/internal/metrics"
	"github.com/SmallVagetable/nanobot-hyc/internal/restarter"
	"github.com/SmallVagetable/nanobot-hyc/internal/server"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = config.Config

type Status = restarter.Status

type Inspector = inspector.Inspector

type HistorySink = history.Sink

// Restarter is a thin facade over internal/restarter.Restarter.
type Restarter = restarter.Restarter

// DefaultConfig returns the configuration matching the original restart
// script's constants (port 18790, "python run.py gateway", gateway.log).
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads a TOML config file, merging it over the defaults.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// New builds a Restarter against the live OS process and port tables.
func New(cfg Config, log *slog.Logger) *Restarter {
	return restarter.New(cfg, inspector.OS{}, log)
}

// NewWithInspector builds a Restarter against a custom Inspector (tests,
// embedding).
func NewWithInspector(cfg Config, insp Inspector, log *slog.Logger) *Restarter {
	return restarter.New(cfg, insp, log)
}

// NewLogger builds the colored slog diagnostic logger used by the CLI.
func NewLogger(debug bool) *slog.Logger { return logger.New(debug) }

// NewHistorySink creates an audit sink from a DSN (sqlite path or
// postgres URL).
func NewHistorySink(dsn string) (HistorySink, error) { return factory.NewSinkFromDSN(dsn) }

// RegisterMetricsDefault registers restart metrics with the default
// Prometheus registry.
func RegisterMetricsDefault() error { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts a blocking /metrics listener on addr.
func ServeMetrics(addr string) error { return metrics.Serve(addr) }

// NewHTTPServer starts the REST trigger server on addr.
func NewHTTPServer(addr, basePath string, r *Restarter) (*http.Server, error) {
	return server.NewServer(addr, basePath, r)
}

// Restart runs the full resolve/stop/launch flow once.
func Restart(ctx context.Context, cfg Config, log *slog.Logger) error {
	return New(cfg, log).Run(ctx)
}
