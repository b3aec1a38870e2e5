// Package logging builds the structured loggers used across corefsieve.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Config selects level, format and destination.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text, json or logfmt.
	Format string `yaml:"format"`
	// File, when set, receives the log instead of stderr.
	File string `yaml:"file"`
	// Timestamps adds a time to each line.
	Timestamps bool `yaml:"timestamps"`
}

// DefaultConfig logs info and above as text to stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text", Timestamps: true}
}

// Validate checks level and format.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(levelOrDefault(c.Level)); err != nil {
		return fmt.Errorf("invalid log level %q", c.Level)
	}
	if _, err := formatter(c.Format); err != nil {
		return err
	}
	return nil
}

func levelOrDefault(s string) string {
	if s == "" {
		return "info"
	}
	return strings.ToLower(s)
}

func formatter(s string) (log.Formatter, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	}
	return 0, fmt.Errorf("invalid log format %q", s)
}

// New returns a logger for cfg and a closer for its file, if any.
func New(cfg Config) (*log.Logger, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	}
	return NewWriter(w, cfg), closer, nil
}

// NewWriter builds a logger writing to w. Invalid settings fall back to
// info-level text.
func NewWriter(w io.Writer, cfg Config) *log.Logger {
	level, err := log.ParseLevel(levelOrDefault(cfg.Level))
	if err != nil {
		level = log.InfoLevel
	}
	f, err := formatter(cfg.Format)
	if err != nil {
		f = log.TextFormatter
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: cfg.Timestamps,
		TimeFormat:      time.RFC3339,
		Level:           level,
		Formatter:       f,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
