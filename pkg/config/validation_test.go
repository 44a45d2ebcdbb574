package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	return cfg
}

func TestValidateDefaultConfigPasses(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "VERBOSE"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsBadMetricsPort(t *testing.T) {
	cfg := validConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 70000
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsEmptySchemaPaths(t *testing.T) {
	cfg := validConfig()
	cfg.Schema.Paths = nil
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsNonPositiveShutdownTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.ShutdownTimeout = 0
	assert.Error(t, Validate(cfg))
}
