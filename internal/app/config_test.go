package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_FillsDefaults(t *testing.T) {
	path := writeConfig(t, `
security:
  auth-token-key: auth-secret
  link-token-key: link-secret
delivery:
  max-ttl: 10m
limiter:
  max: 3
`)

	cfg, realpath, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, realpath)
	assert.Equal(t, path, cfg.File)

	assert.Equal(t, ":9000", cfg.Server.HttpPort)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, storage.LOCAL, cfg.Storage.Type)
	assert.Equal(t, 15*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, "memory", cfg.Limiter.Driver)

	svc := cfg.GetServiceConfig()
	assert.Equal(t, 60*time.Second, svc.Delivery.DefaultTTL)
	assert.Equal(t, 10*time.Minute, svc.Delivery.MaxTTL)
	assert.Equal(t, 10*time.Second, svc.Delivery.AccessTTL)

	wc := cfg.GetWindowConfig()
	assert.Equal(t, 3, wc.Max)
	assert.Equal(t, time.Minute, wc.Window)

	assert.Equal(t, 7*24*time.Hour, cfg.GetTokenExpiry())
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"shared signing key", `
security:
  auth-token-key: same
  link-token-key: same
`},
		{"unknown storage", `
security:
  auth-token-key: a
  link-token-key: b
storage:
  type: ftp
`},
		{"unknown limiter driver", `
security:
  auth-token-key: a
  link-token-key: b
limiter:
  driver: memcached
`},
		{"malformed yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestAppConfig_SaveRoundTrip(t *testing.T) {
	path := writeConfig(t, `
security:
  auth-token-key: auth-secret
  link-token-key: link-secret
`)
	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)

	cfg.Limiter.Max = 42
	require.NoError(t, cfg.Save())

	reloaded, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 42, reloaded.Limiter.Max)
	assert.Equal(t, "link-secret", reloaded.Security.LinkTokenKey)
}
