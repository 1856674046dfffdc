package logger

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewJSONDefaults(t *testing.T) {
	buf := &strings.Builder{}
	log, err := New(Config{}, zapcore.AddSync(buf))
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("run finished", zap.Int("applied", 3))
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "run finished", entry["msg"])
	assert.Equal(t, float64(3), entry["applied"])
}

func TestNewDebugConsole(t *testing.T) {
	buf := &strings.Builder{}
	log, err := New(Config{Level: "debug", Format: "console"}, zapcore.AddSync(buf))
	require.NoError(t, err)

	log.Debug("record rejected")
	assert.Contains(t, buf.String(), "record rejected")
	assert.Contains(t, buf.String(), "DEBUG")
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(Config{Level: "loud"}, zapcore.AddSync(&strings.Builder{}))
	assert.Error(t, err)

	_, err = New(Config{Format: "xml"}, zapcore.AddSync(&strings.Builder{}))
	assert.Error(t, err)
}
