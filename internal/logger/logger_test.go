package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"debug level", "debug", "console"},
		{"info level", "info", "console"},
		{"warn level", "warn", "console"},
		{"error level", "error", "console"},
		{"json format", "info", "json"},
		{"uppercase level", "DEBUG", "console"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup should not panic
			Setup(nil, tt.level, tt.format)
			require.NotNil(t, Log)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("Error"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

func TestJSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "json")

	l.Debug("opened container", "path", "net.safetensors", "tensors", 3, "err", errors.New("boom"))

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "debug", event["level"])
	assert.Equal(t, "opened container", event["message"])
	assert.Equal(t, "net.safetensors", event["path"])
	assert.Equal(t, 3.0, event["tensors"])
	assert.Equal(t, "boom", event["err"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "json")

	l.Info("hidden")
	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLoggerWithOddArgs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "json").With("component", "reader", "dangling")

	l.Info("odd", "key")
	assert.Contains(t, buf.String(), `"component":"reader"`)
	assert.NotContains(t, buf.String(), "dangling")
}

func TestSetup_ReplacesGlobal(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	var buf bytes.Buffer
	Setup(&buf, "warn", "json")

	Log.Info("hidden")
	Log.Warn("tensor is shorter than requested", "tensor", "bias")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"tensor":"bias"`)
}
