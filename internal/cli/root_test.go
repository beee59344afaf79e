package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name  string
		debug bool
		quiet bool
		want  slog.Level
	}{
		{"default", false, false, slog.LevelInfo},
		{"quiet", false, true, slog.LevelWarn},
		{"debug", true, false, slog.LevelDebug},
		{"debug wins", true, true, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, level(tt.debug, tt.quiet))
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, slog.LevelInfo, false, false)

	log.Debug("hidden")
	log.Info("request served", "pid", 42)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "request served", record["msg"])

	group, ok := record["forkd"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), group["pid"])
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, slog.LevelWarn, true, true)

	log.Info("hidden")
	log.Warn("accept failed", "worker", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "forkd.worker=1")
	assert.Contains(t, out, "source=")
}
