package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vetting-tracker/internal/common"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNewWithWriter_JSONWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(common.LogConfig{Level: "info", Format: "json"}, &buf)

	ctx := common.WithRequestID(context.Background(), "req-1")
	WithContext(ctx, logger).Info("delay.query.start", "planhead", "CE/1/2024")
	logger.Debug("suppressed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "delay.query.start", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "CE/1/2024", entry["planhead"])
}

func TestNewWithWriter_Formats(t *testing.T) {
	for _, format := range []string{"text", "console"} {
		var buf bytes.Buffer
		NewWithWriter(common.LogConfig{Level: "debug", Format: format}, &buf).Debug("pipeline.ocr.ok", "chars", 10)
		assert.Contains(t, buf.String(), "pipeline.ocr.ok", format)
	}
}
