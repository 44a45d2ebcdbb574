package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 9090, cfg.Metrics.Port)
}

func TestLoadParsesYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveConfig(&Config{
		Logging: LoggingConfig{Level: "DEBUG", Format: "json", Output: "stdout"},
		Metrics: MetricsConfig{Enabled: true, Port: 9999},
		Schema:  SchemaConfig{Paths: []string{"/tmp/schemas"}},
	}, path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, 9999, cfg.Metrics.Port)
	assert.Equal(t, []string{"/tmp/schemas"}, cfg.Schema.Paths)
}

func TestMustLoadMissingExplicitPathErrors(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
