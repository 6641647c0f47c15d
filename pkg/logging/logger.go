// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component names used as the "component" field.
const (
	ComponentClient = "users-client"
	ComponentView   = "users-view"
	ComponentCLI    = "users-pager"
	ComponentServer = "metrics-server"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	// Unknown values fall back to info.
	Level string

	// Pretty switches from JSON lines to console output.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer

	// Fields are attached to every entry, e.g. {"service": "users-pager"}.
	Fields map[string]string
}

// DefaultConfig returns info level JSON logging to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	level, err := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	ctx := zerolog.New(out).With().Timestamp()
	for k, v := range cfg.Fields {
		ctx = ctx.Str(k, v)
	}
	logger := ctx.Logger()

	log.Logger = logger

	if err != nil {
		logger.Warn().Err(err).Msg("Falling back to info level")
	}

	return logger
}

// ParseLevel maps a level name to a zerolog level. Empty means info;
// "warning" is accepted for warn.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// NewLogger derives a logger from the global one tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Level guidelines:
//
// Debug: request URLs and queries, superseded responses, ignored steps
// Info: pages loaded, server startup and shutdown
// Warn: retries, malformed bodies, 4xx/5xx responses
// Error: failed pages after retries, configuration errors
//
// Common fields:
//   - component: see the Component constants
//   - endpoint: request path
//   - page, total_pages, window_start: view position
//   - error_class: client, server, rate_limit, network, decode, unexpected
