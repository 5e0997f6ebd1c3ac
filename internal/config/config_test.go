package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/advlogic/internal/config"
)

func TestParseKeepsDefaultsForOmittedKeys(t *testing.T) {
	cfg, err := config.Parse([]byte(`
log_level: debug
canvas:
  grid_snap: false
  grid_size: 10
ids:
  style: uuid
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Canvas.GridSnap)
	assert.Equal(t, 10, cfg.Canvas.GridSize)
	assert.Equal(t, 3, cfg.Canvas.DragThreshold)
	assert.Equal(t, 240, cfg.Canvas.DefaultNodeWidth)
	assert.Equal(t, "uuid", cfg.IDs.Style)
	assert.Equal(t, "node_", cfg.IDs.Prefix)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := config.Parse([]byte("canvas:\n  grid: 5\n"))
	assert.Error(t, err)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "loud"
	cfg.LogFormat = "xml"
	cfg.Canvas.GridSize = -1
	cfg.Canvas.DragThreshold = -2
	cfg.IDs.Style = "random"

	err := config.Validate(cfg)
	var verr *config.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 5)
	assert.Contains(t, err.Error(), "ids.style")

	assert.NoError(t, config.Validate(config.Default()))
}

func TestLoaderReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advlogic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))

	l, err := config.NewLoader(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "info", l.Config().LogLevel)

	var seen []string
	l.OnChange(func(c *config.Config) { seen = append(seen, c.LogLevel) })

	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))
	_, err = l.Reload()
	require.NoError(t, err)
	assert.Equal(t, []string{"warn"}, seen)

	// An invalid file keeps the previous config.
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))
	_, err = l.Reload()
	assert.Error(t, err)
	assert.Equal(t, "warn", l.Config().LogLevel)
}

func TestLoaderWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advlogic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))
	l, err := config.NewLoader(path, nil)
	require.NoError(t, err)

	stop, err := l.Watch()
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))
	assert.Eventually(t, func() bool { return l.Config().LogLevel == "warn" }, 5*time.Second, 20*time.Millisecond)
}

func TestLoaderWithoutFile(t *testing.T) {
	l, err := config.NewLoader("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), l.Config())

	_, err = config.NewLoader(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}
