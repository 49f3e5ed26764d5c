package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Options{Level: "info", Format: "json"})

	Component(logger, "ranking").Info("hot products", "items", 3)
	logger.Debug("dropped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hot products", entry["msg"])
	assert.Equal(t, "ranking", entry["component"])
	assert.Equal(t, float64(3), entry["items"])
	assert.NotContains(t, buf.String(), "dropped")
}

func TestNew_FileOutput(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.Output = "file"
	opts.FilePath = filepath.Join(dir, "nested", "app.log")

	logger, err := New(opts)
	require.NoError(t, err)
	logger.Info("written")

	data, err := os.ReadFile(opts.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}

func TestNew_FileOutputRequiresPath(t *testing.T) {
	_, err := New(Options{Output: "file"})
	assert.Error(t, err)
}
