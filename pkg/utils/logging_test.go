package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l := Configure(path, "debug")
	l.Debug("forest ready")
	_ = l.Sync()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"forest ready"`)
	assert.Same(t, l, Logger())
}

func TestConfigureLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := Configure(path, "warn")
	l.Info("hidden")
	l.Warn("shown")
	_ = l.Sync()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hidden")
	assert.Contains(t, string(b), "shown")
}
