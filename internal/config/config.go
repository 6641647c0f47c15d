// Package config loads the users-pager settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/Sternrassler/users-pagination/pkg/client"
	"github.com/Sternrassler/users-pagination/pkg/logging"
	"github.com/Sternrassler/users-pagination/pkg/viewmodel"
)

// Config holds the process configuration.
type Config struct {
	APIURL    string `env:"USERS_API_URL" envDefault:"http://localhost:8080" validate:"required,http_url"`
	UsersPath string `env:"USERS_API_PATH" envDefault:"/api/v1/users" validate:"required,startswith=/"`
	UserAgent string `env:"USER_AGENT" envDefault:"users-pagination/0.1.0" validate:"required"`

	PageSize   int `env:"PAGE_SIZE" envDefault:"10" validate:"gt=0,lte=1000"`
	WindowSize int `env:"WINDOW_SIZE" envDefault:"10" validate:"gt=0,lte=100"`

	// Retries are off unless MAX_RETRIES > 0.
	MaxRetries   int           `env:"MAX_RETRIES" envDefault:"0" validate:"gte=0,lte=10"`
	RetryBackoff time.Duration `env:"RETRY_BACKOFF" envDefault:"1s" validate:"gt=0"`

	// RequestTimeout bounds each navigation action; 0 disables it.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"0s" validate:"gte=0"`

	// MetricsAddr enables the /metrics and /health server, e.g. ":9090".
	MetricsAddr string `env:"METRICS_ADDR"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn warning error"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

var validate = validator.New()

// Load reads an optional .env file from the working directory, then parses
// and validates the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Parse builds a Config from environ instead of the process environment.
func Parse(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ClientConfig returns the HTTP client settings.
func (c Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig(c.APIURL)
	cfg.UsersPath = c.UsersPath
	cfg.UserAgent = c.UserAgent
	cfg.MaxRetries = c.MaxRetries
	cfg.InitialBackoff = c.RetryBackoff
	return cfg
}

// ComposerConfig returns the view settings.
func (c Config) ComposerConfig() viewmodel.Config {
	return viewmodel.Config{
		PageSize:   c.PageSize,
		WindowSize: c.WindowSize,
	}
}

// LoggingConfig returns the logger settings.
func (c Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Pretty = c.LogPretty
	cfg.Fields = map[string]string{"service": logging.ComponentCLI}
	return cfg
}
