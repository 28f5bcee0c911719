package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHandler_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	handler := buildHandler(&buf, &Config{Level: "debug", Format: "json"})
	log := slog.New(handler)

	log.Debug("queue depth sampled", slog.Int("depth", 3))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "queue depth sampled", entry["msg"])
	assert.Equal(t, float64(3), entry["depth"])
	assert.Contains(t, entry, "time")
}

func TestBuildHandler_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLines int
	}{
		{name: "info drops debug", level: "info", wantLines: 3},
		{name: "warn drops info", level: "warn", wantLines: 2},
		{name: "error drops warn", level: "error", wantLines: 1},
		{name: "unknown level defaults to info", level: "verbose", wantLines: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(buildHandler(&buf, &Config{Level: tt.level, Format: "json"}))

			log.Debug("d")
			log.Info("i")
			log.Warn("w")
			log.Error("e")

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			assert.Len(t, lines, tt.wantLines)
		})
	}
}

func TestBuildHandler_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(buildHandler(&buf, &Config{Level: "info", Format: "console"}))

	log.Info("worker started", slog.String("worker_id", "w-1"))

	out := buf.String()
	assert.Contains(t, out, "worker started")
	assert.Contains(t, out, "w-1")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	base := &Logger{Logger: slog.New(buildHandler(&buf, &Config{Format: "json"}))}

	base.With("job_id", "j-1").Info("processing")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "j-1", entry["job_id"])
}

func TestNewDefault(t *testing.T) {
	log := NewDefault()
	require.NotNil(t, log)
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))
}
