// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/shablon/internal/logging"
	"github.com/caarlos0/env/v11"
)

// Config is the process configuration. Command-line flags override it.
type Config struct {
	DBPath    string        `env:"SHABLON_DB" envDefault:"shablon.db"`
	LogLevel  string        `env:"SHABLON_LOG_LEVEL" envDefault:"info"`
	LogFormat string        `env:"SHABLON_LOG_FORMAT" envDefault:"text"`
	HTTPAddr  string        `env:"SHABLON_HTTP_ADDR" envDefault:":8080"`
	RedisAddr string        `env:"SHABLON_REDIS_ADDR"`
	LockTTL   time.Duration `env:"SHABLON_LOCK_TTL" envDefault:"30s"`
	OwnerID   int64         `env:"SHABLON_OWNER_ID" envDefault:"1"`
}

// Load parses the process environment into a Config.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses an explicit environment, e.g. in tests.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Logger builds the logger described by LogLevel and LogFormat.
func (c Config) Logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return nil, err
	}
	return logging.New(level, format), nil
}
