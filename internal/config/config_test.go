package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gtpd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FillsDefaults(t *testing.T) {
	path := writeTempConfig(t, `
node:
  name: gtpd-test
gtp_listener:
  bind_address: 0.0.0.0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gtpd-test", cfg.Node.Name)
	assert.Equal(t, 2152, cfg.GTPListener.Port)
	assert.Equal(t, 65535, cfg.IPListener.SnapLen)
	assert.Equal(t, 1500, cfg.Transport.MTU)
	assert.Equal(t, 9090, cfg.Admin.Port)
	assert.Equal(t, 9098, cfg.Observability.Metrics.Port)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
}

func TestLoad_RespectsExplicitValues(t *testing.T) {
	path := writeTempConfig(t, `
gtp_listener:
  bind_address: 10.0.0.1
  port: 3000
admin:
  bind_address: 127.0.0.1
  port: 8888
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1:3000", cfg.GetGTPAddress())
	assert.Equal(t, "127.0.0.1:8888", cfg.GetAdminAddress())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}
