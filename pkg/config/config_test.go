package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlockhq/airlock/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "standard", cfg.RuntimeMode)
	assert.NotEmpty(t, cfg.ArtifactRoot)
}

func TestLoadFromPath_MergesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
runtime_mode: trusted
artifact_root: /tmp/custom-root
session:
  ttl: 30m
event_log:
  capacity: 50
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "trusted", cfg.RuntimeMode)
	assert.Equal(t, "/tmp/custom-root", cfg.ArtifactRoot)
	assert.Equal(t, 50, cfg.EventLog.Capacity)
}

func TestLoadFromPath_MissingFileErrors(t *testing.T) {
	_, err := config.LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate_RejectsUnknownMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RuntimeMode = "reckless"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonPositiveTunables(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.EventLog.Capacity = 0
	assert.Error(t, cfg.Validate())
}

func TestEnvOverrides_TakePrecedenceOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runtime_mode: safe\n"), 0o644))
	t.Setenv("AIRLOCK_RUNTIME_MODE", "trusted")

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "trusted", cfg.RuntimeMode)
}

func TestDispatchPerToolTimeouts_ConvertsMillisecondsToDuration(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dispatch.PerToolTimeoutMs["navigate"] = 5000
	durations := cfg.DispatchPerToolTimeouts()
	assert.Equal(t, 5_000_000_000.0, float64(durations["navigate"]))
}
