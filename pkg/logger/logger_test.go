package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_WritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")

	lg, err := NewLogger(Config{Level: "info", File: file, Production: true})
	require.NoError(t, err)

	lg.Debug("hidden")
	lg.Info("download served", zap.String(FieldResource, "abc.zip"))
	_ = lg.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "download served")
	assert.Contains(t, string(data), `"resource":"abc.zip"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewLogger_BadLevelFallsBackToWarn(t *testing.T) {
	lg, err := NewLogger(Config{Level: "loud"})
	require.NoError(t, err)
	assert.False(t, lg.Core().Enabled(zap.InfoLevel))
	assert.True(t, lg.Core().Enabled(zap.WarnLevel))
}
