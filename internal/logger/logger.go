package logger

import (
	"log/slog"
	"os"
	"path/filepath"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters for the captured gateway log.
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes the log file that captures the launched gateway's
// stdout and stderr. Both streams are appended interleaved to one file.
// Rotation parameters follow lumberjack semantics.
type Config struct {
	Path       string `json:"path" mapstructure:"path"`
	MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress" mapstructure:"compress"`
}

// Open returns an append-mode file handle for the gateway log, rotating
// the current file through lumberjack first when it has outgrown
// MaxSizeMB. The raw *os.File is handed to the launched process as its
// stdout/stderr, so the descriptor is inherited and writes keep landing
// after this process exits. Returns nil when no path is configured.
func (c Config) Open() (*os.File, error) {
	if c.Path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(c.Path); dir != "." {
		_ = os.MkdirAll(dir, 0o750)
	}
	c.rotateIfOversized()
	return os.OpenFile(c.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// rotateIfOversized moves an oversized log aside before the next launch.
// Rotation cannot happen while the detached child owns the descriptor, so
// it runs between launches instead.
func (c Config) rotateIfOversized() {
	info, err := os.Stat(c.Path)
	if err != nil {
		return
	}
	if info.Size() < int64(valOr(c.MaxSizeMB, DefaultMaxSizeMB))<<20 {
		return
	}
	l := &lj.Logger{
		Filename:   c.Path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
	_ = l.Rotate()
	_ = l.Close()
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// New builds the tool's own diagnostic logger writing to stderr.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := NewColorTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
