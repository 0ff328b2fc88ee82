package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.False(t, cfg.Generator.RemoteEnabled)
	assert.Equal(t, "gpt-4", cfg.Generator.Model)
	assert.Equal(t, 4000, cfg.Generator.MaxTokens)
	assert.InDelta(t, 0.2, cfg.Generator.Temperature, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Generator.Timeout)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.Zero(t, cfg.Batch.MaxRetries)
}

func TestLoadKeepsZeroTemperature(t *testing.T) {
	t.Setenv("GENERATOR_TEMPERATURE", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Generator.Temperature)
}

func TestLoadRejectsRemoteGenerationWithoutKey(t *testing.T) {
	t.Setenv("GENERATOR_REMOTE_ENABLED", "true")
	t.Setenv("GENERATOR_API_KEY", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingGeneratorKey)
}

func TestLoadAcceptsRemoteGenerationWithKey(t *testing.T) {
	t.Setenv("GENERATOR_REMOTE_ENABLED", "true")
	t.Setenv("GENERATOR_API_KEY", "sk-test")
	t.Setenv("GENERATOR_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Generator.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Generator.Timeout)
}

func TestLoadRequiresSecretWhenAuthEnabled(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}
