package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console", "text"} {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			var buf bytes.Buffer
			logger, err := NewLogger(Config{Format: format, Level: level, Output: &buf})
			require.NoError(t, err)
			logger.Error().Msg("heartbeat")
			assert.Contains(t, buf.String(), "heartbeat")
		}
	}
	{ // Bad settings
		_, err := NewLogger(Config{Level: "loud"})
		assert.Error(t, err)
		_, err = NewLogger(Config{Format: "xml"})
		assert.Error(t, err)
	}
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Config{Format: "json", Level: "info", Output: &buf})
	require.NoError(t, err)
	logger.Debug().Msg("hidden")
	logger.Info().Int("nodes", 12).Str("mesh", "wing").Msg("loaded")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loaded", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, float64(12), entry["nodes"])
	assert.Equal(t, "wing", entry["mesh"])
}

func TestConfigFromEnv(t *testing.T) {
	{ // Defaults
		_ = os.Unsetenv("ADBINTERP_LOG_LEVEL")
		_ = os.Unsetenv("ADBINTERP_LOG_FORMAT")
		cfg, err := ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "console", cfg.Format)
	}
	{ // Overrides
		t.Setenv("ADBINTERP_LOG_LEVEL", "debug")
		t.Setenv("ADBINTERP_LOG_FORMAT", "json")
		cfg, err := ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Level)
		assert.Equal(t, "json", cfg.Format)
		assert.Equal(t, os.Stderr, cfg.Output)
	}
}
