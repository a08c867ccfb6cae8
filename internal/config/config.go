package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/SmallVagetable/nanobot-hyc/internal/logger"
)

// Defaults reproduce the constants of the original restart script.
const (
	DefaultName           = "gateway"
	DefaultCommand        = "python run.py gateway"
	DefaultCommandPattern = "run.py gateway"
	DefaultKeywordPattern = "gateway"
	DefaultPort           = 18790
	DefaultLogPath        = "gateway.log"
	DefaultGracePeriod    = 2 * time.Second
	DefaultKillWait       = 1 * time.Second
)

// Config is the top-level TOML structure.
type Config struct {
	Name           string        `toml:"name" mapstructure:"name"`
	Command        string        `toml:"command" mapstructure:"command"`
	WorkDir        string        `toml:"work_dir" mapstructure:"work_dir"`
	Env            []string      `toml:"env" mapstructure:"env"`
	CommandPattern string        `toml:"command_pattern" mapstructure:"command_pattern"`
	KeywordPattern string        `toml:"keyword_pattern" mapstructure:"keyword_pattern"`
	Port           int           `toml:"port" mapstructure:"port"`
	GracePeriod    time.Duration `toml:"grace_period" mapstructure:"grace_period"`
	KillWait       time.Duration `toml:"kill_wait" mapstructure:"kill_wait"`
	// HealthCheckWindow > 0 enables the opt-in post-launch listener check.
	HealthCheckWindow time.Duration  `toml:"health_check_window" mapstructure:"health_check_window"`
	HistoryDSN        string         `toml:"history_dsn" mapstructure:"history_dsn"`
	Log               logger.Config  `toml:"log" mapstructure:"log"`
	Metrics           *MetricsConfig `toml:"metrics" mapstructure:"metrics"`
	Server            *ServerConfig  `toml:"server" mapstructure:"server"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Listen  string `toml:"listen" mapstructure:"listen"`
}

type ServerConfig struct {
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

// Default returns a Config matching the original script's behavior.
func Default() Config {
	return Config{
		Name:           DefaultName,
		Command:        DefaultCommand,
		CommandPattern: DefaultCommandPattern,
		KeywordPattern: DefaultKeywordPattern,
		Port:           DefaultPort,
		GracePeriod:    DefaultGracePeriod,
		KillWait:       DefaultKillWait,
		Log:            logger.Config{Path: DefaultLogPath},
	}
}

// Load reads a TOML config file and merges it over Default().
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the restarter cannot act on.
func (c Config) Validate() error {
	if c.Command == "" {
		return fmt.Errorf("command must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.GracePeriod < 0 || c.KillWait < 0 {
		return fmt.Errorf("grace_period and kill_wait must not be negative")
	}
	return nil
}
