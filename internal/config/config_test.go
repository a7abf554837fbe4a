package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolists/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TODOLISTS_SERVER", "TODOLISTS_NETWORK", "TODOLISTS_LEDGER", "TODOLISTS_TIMEOUT",
		"TODOLISTS_TOKEN", "TODOLISTS_LOG_FILE", "TODOLISTS_BREAKER_FAILURES", "TODOLISTS_BREAKER_COOLDOWN",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, config.DefaultServer, cfg.Server)
	assert.Equal(t, config.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, uint32(config.DefaultBreakerFailures), cfg.BreakerFailures)
	assert.Equal(t, "http://localhost:8080/fdb/todo/lists", cfg.BaseURL())
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yaml := `server: https://db.example.com/
network: acme
ledger: tasks
timeout: 2s
log_file: /tmp/todolists.log
breaker:
  failures: 3
  cooldown: 1m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(yaml), 0600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://db.example.com", cfg.Server)
	assert.Equal(t, "https://db.example.com/fdb/acme/tasks", cfg.BaseURL())
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "/tmp/todolists.log", cfg.LogFile)
	assert.Equal(t, uint32(3), cfg.BreakerFailures)
	assert.Equal(t, time.Minute, cfg.BreakerCooldown)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("ledger: fromfile\n"), 0600))
	t.Setenv("TODOLISTS_LEDGER", "fromenv")
	t.Setenv("TODOLISTS_BREAKER_FAILURES", "9")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.Ledger)
	assert.Equal(t, uint32(9), cfg.BreakerFailures)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.EnvFile), []byte("TODOLISTS_TOKEN=s3cret\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("TODOLISTS_TOKEN") })

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Token)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad server":  "server: localhost\n",
		"bad timeout": "timeout: -1s\n",
		"bad yaml":    "server: [\n",
	}
	for name, yaml := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(yaml), 0600))

			_, err := config.Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestNew_XDGConfigHome(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg, err := config.New("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, config.AppName), cfg.Dir)
	assert.Equal(t, filepath.Join(xdg, config.AppName, config.TokenFile), cfg.TokenPath())
}

func TestTokenFileHelpers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg, err := config.New(dir)
	require.NoError(t, err)

	assert.False(t, cfg.HasToken())
	assert.False(t, cfg.HasOAuthClient())

	require.NoError(t, cfg.EnsureDir())
	require.NoError(t, os.WriteFile(cfg.TokenPath(), []byte("{}"), 0600))
	assert.True(t, cfg.HasToken())

	require.NoError(t, cfg.RemoveToken())
	assert.False(t, cfg.HasToken())
}
