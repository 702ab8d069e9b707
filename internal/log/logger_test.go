package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/bmharper/pdfrotate/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = config.LogFormatJSON
	cfg.LogLevel = "DEBUG"

	logger := NewLogger(&buf, cfg)
	logger.Debug("resolved", "pages", 3)
	logger.Info("written", "output", "a.pdf")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "resolved", rec["msg"])
	assert.Equal(t, float64(3), rec["pages"])
}

func TestNewLogger_PrettyFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogLevel = "WARN"

	logger := NewLogger(&buf, cfg)
	logger.Info("hidden")
	logger.Warn("clamped angle", "clause", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "clamped angle")
	assert.Contains(t, out, "clause=")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestTerminalHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTerminalHandler(&buf, nil)).With("file", "in.pdf").WithGroup("page")
	logger.Info("rotated", "index", 4)

	out := buf.String()
	assert.Contains(t, out, " \x1b[2mfile=")
	assert.Contains(t, out, "in.pdf")
	assert.Contains(t, out, "page.index=")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("Error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}
