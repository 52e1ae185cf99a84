package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.General.User)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadAppliesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `
[general]
user = "ana"
daily-goal = 6

[timer]
preset = "custom"
focus = 40

[server]
addr = "0.0.0.0:9000"
`)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ana", s.User)
	assert.Equal(t, 6, s.DailyGoal)
	assert.Equal(t, DefaultLogLevel, s.LogLevel)
	assert.Equal(t, "custom", s.Timer.Preset)
	assert.Equal(t, 40, s.Timer.FocusMinutes)
	assert.Equal(t, DefaultBreakMinutes, s.Timer.BreakMinutes)
	assert.Equal(t, "0.0.0.0:9000", s.ServerAddr)
	assert.Equal(t, BackendSQLite, s.Store.Backend)
	require.NoError(t, s.Validate())
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `
[general]
user = "ana"
log-level = "warn"
`)
	t.Setenv(EnvUser, "bo")
	t.Setenv(EnvStore, "postgres")
	t.Setenv(EnvPostgresDSN, "postgres://localhost/floe")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bo", s.User)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, BackendPostgres, s.Store.Backend)
	assert.Equal(t, "postgres://localhost/floe", s.Store.PostgresDSN)
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "FLOE_USER=from-dotenv\nFLOE_LOG_LEVEL=debug\n")
	t.Setenv(EnvUser, "from-env")
	// t.Setenv restores the variable on cleanup, so godotenv's write is undone.
	t.Setenv(EnvLogLevel, "")
	require.NoError(t, os.Unsetenv(EnvLogLevel))

	s, err := Load(filepath.Join(dir, "config.toml"), envPath, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", s.User)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestValidate(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.Validate())

	bad := Defaults()
	bad.Store.Backend = "postgres"
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Store.PostgresDSN is required")

	bad = Defaults()
	bad.LogLevel = "loud"
	bad.Timer.FocusMinutes = 0
	err = bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel must be one of")
	assert.Contains(t, err.Error(), "Timer.FocusMinutes must be >= 1")

	bad = Defaults()
	bad.ServerAddr = "nowhere"
	assert.Error(t, bad.Validate())

	bad = Defaults()
	bad.DailyGoal = 0
	err = bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DailyGoal must be >= 1")
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/cfg", "floe", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "floe", "floe.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/data", "floe", "floe.log"), DefaultLogPath())
}
