package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/geocalc/internal/config"
)

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info().Str("shape", "cube").Msg("calculated")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "calculated", line["message"])
	assert.Equal(t, "cube", line["shape"])
	assert.Equal(t, "info", line["level"])
	assert.Contains(t, line, "time")
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "debug"}, &buf)
	require.NoError(t, err)

	logger.Debug().Str("component", "tracker").Msg("flushed")
	assert.Contains(t, buf.String(), "flushed")
	assert.Contains(t, buf.String(), "component=tracker")
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "verbose"}, &bytes.Buffer{})
	assert.Error(t, err)
}
