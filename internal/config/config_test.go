package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/graphpad/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 1000, cfg.MaxDiagrams)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_SAMPLING_DEPTH", "12")
	t.Setenv("WRITE_TIMEOUT", "1m")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 12, cfg.MaxSamplingDepth)
	assert.Equal(t, time.Minute, cfg.WriteTimeout)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"port", "PORT", "0"},
		{"port type", "PORT", "http"},
		{"diagrams", "MAX_DIAGRAMS", "0"},
		{"cache", "SAMPLE_CACHE_SIZE", "-1"},
		{"depth", "MAX_SAMPLING_DEPTH", "21"},
		{"level", "LOG_LEVEL", "chatty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.Load()
			require.Error(t, err)
		})
	}
}
