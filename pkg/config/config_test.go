package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/frtrpc/internal/bytesize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Default Configuration Tests
// ============================================================================

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "tcp", cfg.Server.Network)
	assert.Equal(t, ":8001", cfg.Server.Address)
	assert.Equal(t, 64*bytesize.MiB, cfg.Limits.MaxPacketBytes)
	assert.Equal(t, 30*time.Second, cfg.Limits.DefaultTimeout)
	assert.Equal(t, 256, cfg.Limits.MaxPendingInvocations)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 9090, cfg.Metrics.Port)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Network: "tcp4", Address: "127.0.0.1:9001"},
		Limits: LimitsConfig{MaxPacketBytes: 1024},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, "tcp4", cfg.Server.Network)
	assert.Equal(t, "127.0.0.1:9001", cfg.Server.Address)
	assert.Equal(t, bytesize.ByteSize(1024), cfg.Limits.MaxPacketBytes)
	// Untouched fields still pick up their defaults.
	assert.Equal(t, 30*time.Second, cfg.Limits.DefaultTimeout)
}

func TestApplyDefaults_NormalizesLogLevel(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "debug"}}
	ApplyDefaults(cfg)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

// ============================================================================
// Validation Tests
// ============================================================================

func TestValidate(t *testing.T) {
	t.Run("ValidConfigPasses", func(t *testing.T) {
		cfg := GetDefaultConfig()
		assert.NoError(t, Validate(cfg))
	})

	t.Run("RejectsMissingAddress", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Server.Address = ""
		assert.Error(t, Validate(cfg))
	})

	t.Run("RejectsBadLogLevel", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = "TRACE"
		assert.Error(t, Validate(cfg))
	})

	t.Run("RejectsZeroMaxPacketBytes", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Limits.MaxPacketBytes = 0
		assert.Error(t, Validate(cfg))
	})

	t.Run("RejectsOutOfRangeSampleRate", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Telemetry.SampleRate = 1.5
		assert.Error(t, Validate(cfg))
	})
}

// ============================================================================
// Load/Save Round-Trip Tests
// ============================================================================

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Server.Address = ":9999"

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", loaded.Server.Address)
}

func TestSaveConfig_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, SaveConfig(GetDefaultConfig(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

// ============================================================================
// Environment Variable Override Tests
// ============================================================================

func TestLoad_EnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveConfig(GetDefaultConfig(), path))

	t.Setenv("FRT_SERVER_ADDRESS", ":7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Address)
}

// ============================================================================
// Config Directory Tests
// ============================================================================

func TestGetConfigDir_UsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	assert.Equal(t, "/tmp/xdg-test/frt", GetConfigDir())
}

func TestDefaultConfigExists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	assert.False(t, DefaultConfigExists())
}
