package config

import (
	"strings"

	"github.com/blockpeer/syncengine/internal/bytesize"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", false) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyEngineDefaults(&cfg.Engine)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if cfg.Profiling.Enabled && len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_objects", "inuse_objects"}
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyEngineDefaults sets engine-level defaults.
func applyEngineDefaults(cfg *EngineConfig) {
	if cfg.TempDir == "" {
		cfg.TempDir = "/tmp/syncengine-uploads"
	}
	if cfg.SmallFileThreshold == 0 {
		cfg.SmallFileThreshold = bytesize.ByteSize(bytesize.MiB)
	}
	if cfg.RequestWorkers == 0 {
		cfg.RequestWorkers = 8
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
// The device id defaults to an empty placeholder; a real deployment must
// always set device.id explicitly, since it anchors every version vector
// this engine produces.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Logging:   LoggingConfig{},
		Telemetry: TelemetryConfig{},
		Metrics:   MetricsConfig{},
		Engine:    EngineConfig{},
		Device:    DeviceConfig{},
	}

	ApplyDefaults(cfg)
	return cfg
}
