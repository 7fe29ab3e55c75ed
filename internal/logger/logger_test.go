package logger

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
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf, "warn", "json")
	l.Info("dropped")
	l.Warn("boundary_load_failed", "err", "status 404")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "boundary_load_failed", rec["msg"])
	assert.Equal(t, "status 404", rec["err"])
	assert.Same(t, l, L())
}

func TestSetupText(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "debug", "text").Debug("base_layer_changed", "layer", "satellite")
	assert.Contains(t, buf.String(), "msg=base_layer_changed layer=satellite")
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lakemap.log")
	w, c, err := Open(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("line\n"))
	require.NoError(t, err)
	require.NoError(t, c.Close())
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(got))

	w, c, err = Open("-")
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)
	assert.NoError(t, c.Close())

	_, _, err = Open(filepath.Join(t.TempDir(), "no", "such", "dir.log"))
	assert.Error(t, err)
}
