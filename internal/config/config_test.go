package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8972, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.Library.MaxUploadBytes)
	assert.Empty(t, cfg.Library.ScratchDir)
}

func TestLoadFile(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	content := `
[server]
host = "0.0.0.0"
port = 9000
log_level = "debug"

[library]
max_upload_bytes = 1048576
scratch_dir = "` + tmp + `"

[probe]
ffmpeg = "/opt/ffmpeg/bin/ffmpeg"
ffprobe = "/opt/ffmpeg/bin/ffprobe"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, int64(1048576), cfg.Library.MaxUploadBytes)
	assert.Equal(t, tmp, cfg.Library.ScratchDir)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.Probe.FFmpeg)
	assert.Equal(t, "/opt/ffmpeg/bin/ffprobe", cfg.Probe.FFprobe)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VIDSHELF_PORT", "7777")
	t.Setenv("VIDSHELF_LOG_LEVEL", "warn")
	t.Setenv("VIDSHELF_MAX_UPLOAD", "2048")
	t.Setenv("VIDSHELF_SCRATCH_DIR", "/tmp/vidshelf-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
	assert.Equal(t, int64(2048), cfg.Library.MaxUploadBytes)
	assert.Equal(t, "/tmp/vidshelf-test", cfg.Library.ScratchDir)
}

func TestEnvOverrideRejectsBadPort(t *testing.T) {
	t.Setenv("VIDSHELF_PORT", "not-a-port")

	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VIDSHELF_PORT")
}
