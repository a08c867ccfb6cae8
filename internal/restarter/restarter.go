package restarter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SmallVagetable/nanobot-hyc/internal/config"
	"github.com/SmallVagetable/nanobot-hyc/internal/history"
	"github.com/SmallVagetable/nanobot-hyc/internal/inspector"
	"github.com/SmallVagetable/nanobot-hyc/internal/launcher"
	"github.com/SmallVagetable/nanobot-hyc/internal/lookup"
	"github.com/SmallVagetable/nanobot-hyc/internal/metrics"
)

// Restarter stops any running instance of the gateway and starts a fresh
// one. Lookups, signaling and sleeping all go through injected
// capabilities so the flow is testable without touching live processes.
type Restarter struct {
	cfg   config.Config
	insp  inspector.Inspector
	log   *slog.Logger
	sink  history.Sink        // optional audit sink
	sleep func(time.Duration) // injectable clock
}

func New(cfg config.Config, insp inspector.Inspector, log *slog.Logger) *Restarter {
	if log == nil {
		log = slog.Default()
	}
	return &Restarter{cfg: cfg, insp: insp, log: log, sleep: time.Sleep}
}

// SetSink attaches an audit sink for restart events.
func (r *Restarter) SetSink(s history.Sink) { r.sink = s }

// SetSleep replaces the timed-wait implementation (tests).
func (r *Restarter) SetSleep(f func(time.Duration)) {
	if f != nil {
		r.sleep = f
	}
}

// Status is the result of a resolve-only probe.
type Status struct {
	Name       string `json:"name"`
	Running    bool   `json:"running"`
	PID        int    `json:"pid,omitempty"`
	DetectedBy string `json:"detected_by,omitempty"`
}

// strategies returns the fixed-order lookup chain: exact launch
// invocation, listening port, loose keyword.
func (r *Restarter) strategies() []lookup.Strategy {
	return []lookup.Strategy{
		lookup.CommandPattern{Inspector: r.insp, Pattern: r.cfg.CommandPattern},
		lookup.PortOwner{Inspector: r.insp, Port: r.cfg.Port},
		lookup.CommandPattern{Inspector: r.insp, Pattern: r.cfg.KeywordPattern},
	}
}

// Resolve finds the running gateway, if any. No side effects.
func (r *Restarter) Resolve() (lookup.Result, bool, error) {
	return lookup.First(r.strategies())
}

// Status probes for the gateway without touching it.
func (r *Restarter) Status() Status {
	res, ok, _ := r.Resolve()
	if !ok {
		return Status{Name: r.cfg.Name}
	}
	return Status{Name: r.cfg.Name, Running: true, PID: res.PID, DetectedBy: res.DetectedBy}
}

// Stop asks pid to terminate, waits the grace period, and escalates to a
// forced kill exactly once if it is still alive. Returns an error when the
// process survives even the kill.
func (r *Restarter) Stop(ctx context.Context, pid int) error {
	r.log.Info("stopping gateway", "pid", pid, "signal", inspector.SigTerm.String())
	if err := r.insp.Signal(pid, inspector.SigTerm); err != nil {
		r.log.Warn("graceful signal failed", "pid", pid, "error", err)
	}
	r.record(ctx, history.EventStop, pid, "")
	r.sleep(r.cfg.GracePeriod)

	if !r.insp.Alive(pid) {
		r.log.Info("gateway exited within grace period", "pid", pid)
		return nil
	}

	r.log.Warn("gateway ignored graceful stop, escalating", "pid", pid, "signal", inspector.SigKill.String())
	metrics.IncEscalation(r.cfg.Name)
	if err := r.insp.Signal(pid, inspector.SigKill); err != nil {
		r.log.Warn("kill signal failed", "pid", pid, "error", err)
	}
	r.record(ctx, history.EventKill, pid, "")
	r.sleep(r.cfg.KillWait)

	if r.insp.Alive(pid) {
		return fmt.Errorf("process %d survived forced kill", pid)
	}
	r.log.Info("gateway terminated after forced kill", "pid", pid)
	return nil
}

// Launch starts a fresh gateway instance detached from this process.
// When HealthCheckWindow is set, it additionally waits for the port to be
// bound before reporting success.
func (r *Restarter) Launch(ctx context.Context) (int, error) {
	spec := launcher.Spec{
		Name:    r.cfg.Name,
		Command: r.cfg.Command,
		WorkDir: r.cfg.WorkDir,
		Env:     r.cfg.Env,
		Log:     r.cfg.Log,
	}
	pid, err := spec.Launch()
	if err != nil {
		metrics.IncLaunchFailure(r.cfg.Name)
		r.record(ctx, history.EventLaunchFailed, 0, err.Error())
		return 0, err
	}
	r.log.Info("gateway launched", "pid", pid, "command", r.cfg.Command, "log", r.cfg.Log.Path)
	r.record(ctx, history.EventLaunch, pid, r.cfg.Command)

	if r.cfg.HealthCheckWindow > 0 {
		if err := launcher.WaitListening(r.insp, r.cfg.Port, r.cfg.HealthCheckWindow, r.sleep); err != nil {
			metrics.IncLaunchFailure(r.cfg.Name)
			r.record(ctx, history.EventLaunchFailed, pid, err.Error())
			return pid, fmt.Errorf("gateway started but unhealthy: %w", err)
		}
		r.log.Info("gateway healthy", "port", r.cfg.Port)
	}
	return pid, nil
}

// Run performs the full restart flow: resolve, stop when found, then
// launch. Launch is attempted even when the old instance was not found or
// could not be stopped; in the latter case the old process may still hold
// the port and a warning is logged.
func (r *Restarter) Run(ctx context.Context) error {
	res, ok, err := r.Resolve()
	if err != nil {
		r.log.Warn("lookup probes reported errors", "error", err)
	}
	if !ok {
		r.log.Info("no running gateway found, nothing to stop", "name", r.cfg.Name)
		r.log.Info("to check manually", "hint",
			fmt.Sprintf("lsof -i :%d  or  pgrep -f %q", r.cfg.Port, r.cfg.CommandPattern))
	} else {
		r.log.Info("gateway resolved", "pid", res.PID, "via", res.DetectedBy)
		r.record(ctx, history.EventResolved, res.PID, res.DetectedBy)
		if err := r.Stop(ctx, res.PID); err != nil {
			metrics.IncStopFailure(r.cfg.Name)
			r.record(ctx, history.EventStopFailed, res.PID, err.Error())
			r.log.Error("failed to stop old gateway, it may still hold the port", "pid", res.PID, "error", err)
		}
	}

	if _, err := r.Launch(ctx); err != nil {
		return err
	}
	metrics.IncRestart(r.cfg.Name, float64(time.Now().Unix()))
	return nil
}

// record sends an audit event to the sink, best-effort.
func (r *Restarter) record(ctx context.Context, t history.EventType, pid int, detail string) {
	if r.sink == nil {
		return
	}
	e := history.Event{Type: t, OccurredAt: time.Now(), Name: r.cfg.Name, PID: pid, Detail: detail}
	if err := r.sink.Send(ctx, e); err != nil {
		r.log.Warn("history sink error", "event", string(t), "error", err)
	}
}
