// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
log_level: DEBUG
control:
  listen: 127.0.0.1:5005
  device_host: 192.168.1.20
  device_port: 5006
session:
  slate: hello
transfer:
  csv_dir: /data/csv
  csv_port: 7000
  video_dir: /data/video
  video_port: 7001
status_memory:
  endpoint: 127.0.0.1:502
  unit_id: 3
  base_slot: 2
  device_name: cam-a
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:5005", cfg.Control.Listen)
	assert.Equal(t, "192.168.1.20", cfg.Control.DeviceHost)
	assert.Equal(t, 5006, cfg.Control.DevicePort)
	assert.Equal(t, "hello", cfg.Session.Slate)
	assert.Equal(t, 7000, cfg.Transfer.CSVPort)
	assert.Equal(t, "/data/video", cfg.Transfer.VideoDir)
	assert.Equal(t, uint8(3), cfg.StatusMemory.UnitID)
	assert.Equal(t, uint16(2), cfg.StatusMemory.BaseSlot)
	assert.True(t, cfg.StatusMemory.Enabled())

	// untouched keys keep defaults
	assert.Equal(t, 1000, cfg.StatusMemory.TimeoutMs)
	assert.False(t, cfg.Control.AutoHandshake)

	require.NoError(t, Validate(cfg))
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:5000", cfg.Control.Listen)
	assert.Equal(t, "recordings/csv", cfg.Transfer.CSVDir)
	assert.False(t, cfg.StatusMemory.Enabled())
	require.NoError(t, Validate(cfg))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("LIVELINK_SESSION_SLATE", "from-env")
	t.Setenv("LIVELINK_TRANSFER_VIDEO_PORT", "7100")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Session.Slate)
	assert.Equal(t, 7100, cfg.Transfer.VideoPort)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	out, err := Marshal(cfg)
	require.NoError(t, err)

	again, err := Load(writeConfig(t, string(out)))
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}
