package main

import "time"

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
	Debug      bool
}

// TargetFlags holds per-command overrides of the configured target.
type TargetFlags struct {
	Name           string
	CommandStr     string
	WorkDir        string
	CommandPattern string
	KeywordPattern string
	Port           int
	LogPath        string
	GracePeriod    time.Duration
	KillWait       time.Duration
	WaitHealthy    time.Duration
	HistoryDSN     string
}

// ServeFlags holds flags for the serve command.
type ServeFlags struct {
	Listen        string
	BasePath      string
	MetricsListen string
}
