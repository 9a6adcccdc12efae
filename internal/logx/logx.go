// Package logx builds the zerolog logger used across labclock.
//
// The TUI owns the terminal, so by default events go to a JSON log file in
// the data directory. Console output is only for plain (line) mode.
package logx

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "15:04:05"

// Config selects where and how much to log.
type Config struct {
	Level   string
	Path    string    // JSON log file; empty disables file logging
	Console io.Writer // human-readable console sink; nil disables it
}

// New returns a logger and a close function for the underlying file.
// With neither a path nor a console the logger is a no-op.
func New(cfg Config) (zerolog.Logger, func() error, error) {
	zerolog.ErrorFieldName = "err"

	var writers []io.Writer
	closeFn := func() error { return nil }

	if strings.TrimSpace(cfg.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return zerolog.Nop(), closeFn, err
		}
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closeFn, err
		}
		writers = append(writers, f)
		closeFn = f.Close
	}
	if cfg.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: cfg.Console, TimeFormat: consoleTimeFormat})
	}
	if len(writers) == 0 {
		return zerolog.Nop(), closeFn, nil
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg.Level, zerolog.InfoLevel)).
		With().Timestamp().Logger()
	return zl, closeFn, nil
}

// ParseLevel maps a level name to a zerolog level, returning def when the
// name is blank or unknown.
func ParseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return def
	}
}

// DefaultPath returns labclock.log inside dataDir.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "labclock.log")
}
