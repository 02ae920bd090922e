package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port             int           `envconfig:"PORT" default:"8080"`
	AllowedOrigins   string        `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	MaxDiagrams      int           `envconfig:"MAX_DIAGRAMS" default:"1000"`
	SampleCacheSize  int           `envconfig:"SAMPLE_CACHE_SIZE" default:"512"`
	MaxSamplingDepth int           `envconfig:"MAX_SAMPLING_DEPTH" default:"16"`
	ReadTimeout      time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout     time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	if c.MaxDiagrams < 1 {
		return fmt.Errorf("config: MAX_DIAGRAMS must be positive, got %d", c.MaxDiagrams)
	}
	if c.SampleCacheSize < 0 {
		return fmt.Errorf("config: SAMPLE_CACHE_SIZE must not be negative, got %d", c.SampleCacheSize)
	}
	if c.MaxSamplingDepth < 1 || c.MaxSamplingDepth > 20 {
		return fmt.Errorf("config: MAX_SAMPLING_DEPTH must be in [1, 20], got %d", c.MaxSamplingDepth)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LOG_LEVEL.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return level, nil
}
