package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "https://api.line.me", cfg.LineAPIBase)
	assert.Contains(t, cfg.StorageConfig, `"provider":"sql"`)
	assert.False(t, cfg.Normalizer().NFKC)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ONBOARDING_NAME_NFKC", "1")
	t.Setenv("LINE_CHANNEL_SECRET", "secret")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Normalizer().NFKC)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOGS_BASE_PATH=/var/log/rclink\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("LOGS_BASE_PATH") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/log/rclink", cfg.LogsBasePath)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LINE_CHANNEL_SECRET")
	assert.Contains(t, err.Error(), "LINE_CHANNEL_ACCESS_TOKEN")

	cfg = &Config{AllowInsecure: true, ChannelAccessToken: "token"}
	assert.NoError(t, cfg.Validate())
}
