package config

import (
	"strings"
	"time"

	"github.com/logiclink/logiclink/pkg/codec"
	"github.com/logiclink/logiclink/pkg/params"
	"github.com/logiclink/logiclink/pkg/source/demo"
)

// Default values for the acquisition and storage sections.
const (
	DefaultBlockSize           = ByteSize(16 * 1024)
	DefaultDigitalSampleRate   = 25_000_000
	DefaultDigitalChannels     = 4
	DefaultLevels              = 8
	DefaultZoomOutPerLevel     = 4
	DefaultBlockSizeMultiplier = 4
	DefaultMetricsPort         = 9090
)

// ApplyDefaults sets default values for any unspecified configuration
// fields. Zero values are replaced and explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	applyMetricsDefaults(&cfg.Metrics)
	applyAcquisitionDefaults(&cfg.Acquisition)
	applyStorageDefaults(&cfg.Storage)
	applyDemoDefaults(&cfg.Demo)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	// Sample summaries go to stdout.
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = DefaultMetricsPort
	}
}

// applyAcquisitionDefaults enables four flexio channels when no channel is
// configured at all.
func applyAcquisitionDefaults(cfg *AcquisitionConfig) {
	if cfg.DigitalChannels == 0 && cfg.AnalogChannels == 0 {
		cfg.DigitalChannels = DefaultDigitalChannels
	}
	if cfg.DigitalChannels > 0 {
		if cfg.DigitalEncoding == "" {
			cfg.DigitalEncoding = params.EncodingFlexio
		}
		if cfg.DigitalSampleRate == 0 {
			cfg.DigitalSampleRate = DefaultDigitalSampleRate
		}
	}
	if cfg.AnalogChannels > 0 && cfg.AnalogEncoding == "" {
		cfg.AnalogEncoding = params.EncodingAnalog8Bit
	}
	if cfg.Mode == "" {
		cfg.Mode = params.ModeKeepAll
	}
	if cfg.Codec == "" {
		cfg.Codec = codec.None
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = DefaultBlockSize
	}
}

func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Levels == 0 {
		cfg.Levels = DefaultLevels
	}
	if cfg.ZoomOutPerLevel == 0 {
		cfg.ZoomOutPerLevel = DefaultZoomOutPerLevel
	}
	if cfg.BlockSizeMultiplier == 0 {
		cfg.BlockSizeMultiplier = DefaultBlockSizeMultiplier
	}
}

func applyDemoDefaults(cfg *DemoConfig) {
	if cfg.Generator == "" {
		cfg.Generator = demo.GeneratorSquare
	}
	if cfg.HighSamples == 0 {
		cfg.HighSamples = 16
	}
	if cfg.LowSamples == 0 {
		cfg.LowSamples = 16
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
}

// GetDefaultConfig returns a Config with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Demo: DemoConfig{Blocks: 256},
	}
	ApplyDefaults(cfg)
	return cfg
}
