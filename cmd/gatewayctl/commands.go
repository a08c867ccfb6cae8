package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	gatewayctl "github.com/SmallVagetable/nanobot-hyc"
)

type command struct {
	global *GlobalFlags
}

// loadConfig merges the config file (or defaults) with per-command flag
// overrides. Only flags the user actually set are applied.
func (c command) loadConfig(cmd *cobra.Command, f *TargetFlags) (gatewayctl.Config, error) {
	cfg, err := gatewayctl.LoadConfig(c.global.ConfigPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("name") {
		cfg.Name = f.Name
	}
	if flags.Changed("command") {
		cfg.Command = f.CommandStr
	}
	if flags.Changed("work-dir") {
		cfg.WorkDir = f.WorkDir
	}
	if flags.Changed("pattern") {
		cfg.CommandPattern = f.CommandPattern
	}
	if flags.Changed("keyword") {
		cfg.KeywordPattern = f.KeywordPattern
	}
	if flags.Changed("port") {
		cfg.Port = f.Port
	}
	if flags.Changed("log") {
		cfg.Log.Path = f.LogPath
	}
	if flags.Changed("grace") {
		cfg.GracePeriod = f.GracePeriod
	}
	if flags.Changed("kill-wait") {
		cfg.KillWait = f.KillWait
	}
	if flags.Changed("wait-healthy") {
		cfg.HealthCheckWindow = f.WaitHealthy
	}
	if flags.Changed("history-dsn") {
		cfg.HistoryDSN = f.HistoryDSN
	}
	return cfg, cfg.Validate()
}

// newRestarter builds a Restarter against the live OS, wiring the audit
// sink when a history DSN is configured. The returned closer is never nil.
func (c command) newRestarter(cfg gatewayctl.Config) (*gatewayctl.Restarter, func(), error) {
	log := gatewayctl.NewLogger(c.global.Debug)
	rst := gatewayctl.New(cfg, log)
	closer := func() {}
	if cfg.HistoryDSN != "" {
		sink, err := gatewayctl.NewHistorySink(cfg.HistoryDSN)
		if err != nil {
			return nil, closer, fmt.Errorf("open history sink: %w", err)
		}
		rst.SetSink(sink)
		closer = func() { _ = sink.Close() }
	}
	return rst, closer, nil
}

// Restart runs the full resolve/stop/launch flow once.
func (c command) Restart(cmd *cobra.Command, f *TargetFlags) error {
	cfg, err := c.loadConfig(cmd, f)
	if err != nil {
		return err
	}
	rst, done, err := c.newRestarter(cfg)
	if err != nil {
		return err
	}
	defer done()
	if err := rst.Run(context.Background()); err != nil {
		return err
	}
	fmt.Printf("%s restarted, output appended to %s\n", cfg.Name, cfg.Log.Path)
	return nil
}

// Resolve prints the result of the lookup chain without touching anything.
func (c command) Resolve(cmd *cobra.Command, f *TargetFlags) error {
	cfg, err := c.loadConfig(cmd, f)
	if err != nil {
		return err
	}
	rst, done, err := c.newRestarter(cfg)
	if err != nil {
		return err
	}
	defer done()
	st := rst.Status()
	if !st.Running {
		fmt.Printf("%s: not running\n", cfg.Name)
		fmt.Printf("check manually: lsof -i :%d  or  pgrep -f %q\n", cfg.Port, cfg.CommandPattern)
		return nil
	}
	fmt.Printf("%s: running, pid %d (via %s)\n", st.Name, st.PID, st.DetectedBy)
	return nil
}

// Stop resolves and stops the gateway without relaunching it.
func (c command) Stop(cmd *cobra.Command, f *TargetFlags) error {
	cfg, err := c.loadConfig(cmd, f)
	if err != nil {
		return err
	}
	rst, done, err := c.newRestarter(cfg)
	if err != nil {
		return err
	}
	defer done()
	res, ok, rerr := rst.Resolve()
	if rerr != nil {
		fmt.Fprintf(os.Stderr, "warning: lookup probes reported errors: %v\n", rerr)
	}
	if !ok {
		fmt.Printf("%s: not running, nothing to stop\n", cfg.Name)
		return nil
	}
	if err := rst.Stop(context.Background(), res.PID); err != nil {
		return fmt.Errorf("stop %s: %w", cfg.Name, err)
	}
	fmt.Printf("%s stopped (pid %d)\n", cfg.Name, res.PID)
	return nil
}

// Start launches a fresh gateway without stopping anything first.
func (c command) Start(cmd *cobra.Command, f *TargetFlags) error {
	cfg, err := c.loadConfig(cmd, f)
	if err != nil {
		return err
	}
	rst, done, err := c.newRestarter(cfg)
	if err != nil {
		return err
	}
	defer done()
	pid, err := rst.Launch(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%s launched, pid %d, output appended to %s\n", cfg.Name, pid, cfg.Log.Path)
	return nil
}

// Serve runs the REST trigger daemon until SIGINT/SIGTERM.
func (c command) Serve(cmd *cobra.Command, f *TargetFlags, sf *ServeFlags) error {
	cfg, err := c.loadConfig(cmd, f)
	if err != nil {
		return err
	}
	listen := sf.Listen
	basePath := sf.BasePath
	if cfg.Server != nil {
		if !cmd.Flags().Changed("listen") && cfg.Server.Listen != "" {
			listen = cfg.Server.Listen
		}
		if !cmd.Flags().Changed("base-path") && cfg.Server.BasePath != "" {
			basePath = cfg.Server.BasePath
		}
	}

	if err := gatewayctl.RegisterMetricsDefault(); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	metricsListen := sf.MetricsListen
	if metricsListen == "" && cfg.Metrics != nil && cfg.Metrics.Enabled {
		metricsListen = cfg.Metrics.Listen
	}
	if metricsListen != "" {
		go func() {
			if err := gatewayctl.ServeMetrics(metricsListen); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server error: %v\n", err)
			}
		}()
	}

	rst, done, err := c.newRestarter(cfg)
	if err != nil {
		return err
	}
	defer done()
	server, err := gatewayctl.NewHTTPServer(listen, basePath, rst)
	if err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	fmt.Printf("gatewayctl serving on %s%s\n", listen, basePath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	fmt.Println("shutting down...")
	return server.Close()
}
