package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		line := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		lines = append(lines, line)
	}
	return lines
}

func TestLogger_InfoCarriesAppFieldsAndCaller(t *testing.T) {
	var buf bytes.Buffer
	l := NewZapLoggerWithOptions(Options{AppName: "city-weather", AppEnv: "test", Level: "info"}, &buf)

	l.Info("fetched weather", map[string]any{"city": "kyiv"})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "fetched weather", lines[0]["msg"])
	assert.Equal(t, "city-weather", lines[0]["app_name"])
	assert.Equal(t, "test", lines[0]["app_env"])
	assert.Equal(t, "kyiv", lines[0]["city"])
	assert.Contains(t, lines[0]["caller_file"], "zaplogger_test.go")
}

func TestLogger_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewZapLoggerWithOptions(Options{AppName: "city-weather", Level: "warn"}, &buf)

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warning("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestLogger_ErrorAddsErrorField(t *testing.T) {
	var buf bytes.Buffer
	l := NewZapLogger("city-weather", &buf)

	l.Error(errors.New("bucket unreachable"), map[string]any{"cause": errors.New("dial tcp")})
	l.Error(nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, "bucket unreachable", lines[0]["error"])
	assert.Equal(t, "dial tcp", lines[0]["cause"])
	assert.NotEmpty(t, lines[0]["stack"])
}

func TestLogger_WithStampsChildLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewZapLogger("city-weather", &buf).With(map[string]any{"component": "snapshots"})

	l.Info("stored")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "snapshots", lines[0]["component"])
}

func TestLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewZapLoggerWithOptions(Options{AppName: "city-weather", Level: "chatty"}, &buf)

	l.Debug("hidden")
	l.Info("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.NoError(t, l.Stop())
}
