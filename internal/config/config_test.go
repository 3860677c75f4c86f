package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, int64(10<<20), cfg.Files.MaxSizeBytes)
	assert.Equal(t, "profiles", cfg.Files.ProfileDir)
	assert.Equal(t, "statement-import.db", cfg.Database.Path)
	assert.Equal(t, 0.7, cfg.Duplicates.LikelyThreshold)
	assert.Equal(t, 0.5, cfg.Duplicates.InclusionThreshold)
	assert.Equal(t, 3, cfg.Duplicates.DateWindowDays)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STMT_LOG_LEVEL", "debug")
	t.Setenv("STMT_DATABASE_PATH", "/tmp/other.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("STMT_LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestLoadRejectsInvertedThresholds(t *testing.T) {
	t.Setenv("STMT_DUPLICATES_LIKELY_THRESHOLD", "0.3")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "likely_threshold")
}
