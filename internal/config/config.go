package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configurable labclock settings.
type Config struct {
	OutputDir    string `json:"output_dir"`    // where exported schedules are written
	CatalogPath  string `json:"catalog_path"`  // empty → built-in protocol
	HistoryPath  string `json:"history_path"`  // sqlite archive of completed sessions
	LogPath      string `json:"log_path"`
	LogLevel     string `json:"log_level"`     // "debug" | "info" | "warn" | "error"
	LogConsole   bool   `json:"log_console"`   // also log to stderr in plain mode
	ExportFormat string `json:"export_format"` // "csv" | "json"
	TickInterval string `json:"tick_interval"` // refresh cadence, e.g. "1s"
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		OutputDir:    ".",
		LogLevel:     "info",
		ExportFormat: "csv",
		TickInterval: "1s",
	}
}

// Tick parses TickInterval, falling back to one second when it is unset or
// not a positive duration.
func (c Config) Tick() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// LoadGlobal reads ~/.config/labclock/config.json (or config.yaml).
// Returns defaults if no file is present.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".config", "labclock")
	return loadFirst(true,
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.yml"),
	)
}

// LoadProject reads .labclock.json (or .labclock.yaml) in the current
// working directory. Returns nil (no error) if no file is present.
func LoadProject() (*Config, error) {
	return loadFirst(false, ".labclock.json", ".labclock.yaml", ".labclock.yml")
}

// loadFirst parses the first of paths that exists.
// If returnDefaults is true, returns defaults when none exist; otherwise nil.
func loadFirst(returnDefaults bool, paths ...string) (*Config, error) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		var cfg Config
		if err := Decode(path, data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if returnDefaults {
		d := Defaults()
		return &d, nil
	}
	return nil, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	apply(&result, global)
	apply(&result, project)
	return result
}

func apply(dst *Config, src *Config) {
	if src == nil {
		return
	}
	if src.OutputDir != "" {
		dst.OutputDir = src.OutputDir
	}
	if src.CatalogPath != "" {
		dst.CatalogPath = src.CatalogPath
	}
	if src.HistoryPath != "" {
		dst.HistoryPath = src.HistoryPath
	}
	if src.LogPath != "" {
		dst.LogPath = src.LogPath
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogConsole {
		dst.LogConsole = true
	}
	if src.ExportFormat != "" {
		dst.ExportFormat = src.ExportFormat
	}
	if src.TickInterval != "" {
		dst.TickInterval = src.TickInterval
	}
}

// DataDir returns the labclock-specific XDG data directory.
// Path: $XDG_DATA_HOME/labclock or ~/.local/share/labclock
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "labclock"), nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
