package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SmallVagetable/nanobot-hyc/internal/config"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command and wires all subcommands.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	gatewayCommand := command{global: globalFlags}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createRestartCommand(gatewayCommand),
		createResolveCommand(gatewayCommand),
		createStopCommand(gatewayCommand),
		createStartCommand(gatewayCommand),
		createServeCommand(gatewayCommand),
	)
	return root
}

func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "gatewayctl",
		Short: "Restart tool for the nanobot gateway process",
		Long: `Gatewayctl locates the running nanobot gateway process, stops it
gracefully (escalating to a forced kill when needed), and relaunches it as
a detached background process with output appended to a log file.

Examples:
  gatewayctl restart                      # stop any running gateway, start a fresh one
  gatewayctl resolve                      # show which process would be acted on
  gatewayctl restart --port=18790 --log=gateway.log
  gatewayctl serve --listen=127.0.0.1:8318  # REST trigger daemon`,
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	root.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "enable debug logging")
	return root
}

// addTargetFlags registers the shared target-override flags on cmd.
func addTargetFlags(cmd *cobra.Command, f *TargetFlags) {
	cmd.Flags().StringVar(&f.Name, "name", config.DefaultName, "service name used in logs, metrics and history")
	cmd.Flags().StringVar(&f.CommandStr, "command", config.DefaultCommand, "launch command")
	cmd.Flags().StringVar(&f.WorkDir, "work-dir", "", "working directory for the launched process")
	cmd.Flags().StringVar(&f.CommandPattern, "pattern", config.DefaultCommandPattern, "command-line substring of the known launch invocation (lookup 1)")
	cmd.Flags().IntVar(&f.Port, "port", config.DefaultPort, "listening TCP port of the gateway (lookup 2)")
	cmd.Flags().StringVar(&f.KeywordPattern, "keyword", config.DefaultKeywordPattern, "loose command-line keyword (lookup 3)")
	cmd.Flags().StringVar(&f.LogPath, "log", config.DefaultLogPath, "log file receiving the gateway's stdout and stderr")
	cmd.Flags().DurationVar(&f.GracePeriod, "grace", config.DefaultGracePeriod, "wait after the graceful stop request")
	cmd.Flags().DurationVar(&f.KillWait, "kill-wait", config.DefaultKillWait, "wait after the forced kill")
	cmd.Flags().DurationVar(&f.WaitHealthy, "wait-healthy", 0, "wait up to this long for the port to be bound after launch (0 disables)")
	cmd.Flags().StringVar(&f.HistoryDSN, "history-dsn", "", "record restart events (sqlite path or postgres URL)")
}

func createRestartCommand(gatewayCommand command) *cobra.Command {
	f := &TargetFlags{}
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Stop any running gateway and start a fresh one",
		Long: `Resolve the running gateway, stop it (TERM, then KILL after the grace
period), and launch a new detached instance. The launch happens whether or
not an old instance was found or successfully stopped.

Examples:
  gatewayctl restart
  gatewayctl restart --grace=5s --wait-healthy=10s
  gatewayctl restart --config=gatewayctl.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return gatewayCommand.Restart(cmd, f)
		},
	}
	addTargetFlags(cmd, f)
	return cmd
}

func createResolveCommand(gatewayCommand command) *cobra.Command {
	f := &TargetFlags{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show which process the lookup chain would act on",
		RunE: func(cmd *cobra.Command, args []string) error {
			return gatewayCommand.Resolve(cmd, f)
		},
	}
	addTargetFlags(cmd, f)
	return cmd
}

func createStopCommand(gatewayCommand command) *cobra.Command {
	f := &TargetFlags{}
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running gateway without relaunching it",
		Long: `Resolve and stop the gateway. Escalates to a forced kill when the
process survives the grace period.

Examples:
  gatewayctl stop
  gatewayctl stop --grace=5s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return gatewayCommand.Stop(cmd, f)
		},
	}
	addTargetFlags(cmd, f)
	return cmd
}

func createStartCommand(gatewayCommand command) *cobra.Command {
	f := &TargetFlags{}
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Launch a fresh gateway without stopping anything",
		Long: `Launch the gateway as a detached background process with stdout and
stderr appended to the log file.

Examples:
  gatewayctl start
  gatewayctl start --wait-healthy=10s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return gatewayCommand.Start(cmd, f)
		},
	}
	addTargetFlags(cmd, f)
	return cmd
}

func createServeCommand(gatewayCommand command) *cobra.Command {
	f := &TargetFlags{}
	sf := &ServeFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a daemon exposing restart/status over REST",
		Long: `Run gatewayctl as a daemon. Restarts are triggered via REST:

  POST {base}/restart
  GET  {base}/status
  GET  {base}/healthz

Example:
  gatewayctl serve --listen=127.0.0.1:8318 --base-path=/api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return gatewayCommand.Serve(cmd, f, sf)
		},
	}
	addTargetFlags(cmd, f)
	cmd.Flags().StringVar(&sf.Listen, "listen", "127.0.0.1:8318", "address for the REST listener")
	cmd.Flags().StringVar(&sf.BasePath, "base-path", "", "base path for REST endpoints")
	cmd.Flags().StringVar(&sf.MetricsListen, "metrics-listen", "", "address for the Prometheus /metrics listener (optional)")
	return cmd
}
