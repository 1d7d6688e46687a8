package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/foogie/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestInit_ConsoleText(t *testing.T) {
	var buf bytes.Buffer
	l := Init(config.LogConfig{Level: "info"}, Options{Stderr: &buf})

	l.Info("meal logged", "calories", 500)
	l.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "msg=\"meal logged\"")
	assert.Contains(t, out, "calories=500")
	assert.NotContains(t, out, "hidden")
}

func TestInit_QuietSuppressesWarnings(t *testing.T) {
	var buf bytes.Buffer
	l := Init(config.LogConfig{Level: "debug"}, Options{Stderr: &buf, Quiet: true})

	l.Warn("failed to sync meal with server")
	assert.Empty(t, buf.String())

	l.Error("boom")
	assert.Contains(t, buf.String(), "boom")
}

func TestInit_FileGetsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foogie.log")
	var buf bytes.Buffer
	l := Init(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, Options{Stderr: &buf, Quiet: true})

	l.Warn("failed to sync meal with server", "endpoint", "http://x")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	require.NotEmpty(t, line)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "failed to sync meal with server", rec["msg"])
	assert.Equal(t, "http://x", rec["endpoint"])
	assert.Empty(t, buf.String())
}
