package config

import "time"

// ApplyDefaults fills zero-valued fields of cfg with their defaults,
// mirroring the teacher's per-section apply*Defaults split.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
	applySchemaDefaults(&cfg.Schema)
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applySchemaDefaults(cfg *SchemaConfig) {
	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{"/usr/share/stardust/schemas"}
	}
}

// DefaultConfig returns a fully defaulted configuration, used when no
// config file is found.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
