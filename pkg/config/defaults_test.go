package config

import (
	"testing"
	"time"

	"github.com/logiclink/logiclink/pkg/params"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Expected default log output 'stderr', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_ShutdownTimeout(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %v", cfg.ShutdownTimeout)
	}
}

func TestApplyDefaults_Metrics(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 0 {
		t.Errorf("Expected no port while metrics are disabled, got %d", cfg.Metrics.Port)
	}

	cfg = &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != DefaultMetricsPort {
		t.Errorf("Expected default metrics port %d, got %d", DefaultMetricsPort, cfg.Metrics.Port)
	}
}

func TestApplyDefaults_Acquisition(t *testing.T) {
	t.Run("digital", func(t *testing.T) {
		cfg := &Config{}
		ApplyDefaults(cfg)

		a := cfg.Acquisition
		if a.DigitalChannels != DefaultDigitalChannels {
			t.Errorf("Expected %d channels, got %d", DefaultDigitalChannels, a.DigitalChannels)
		}
		if a.DigitalEncoding != params.EncodingFlexio {
			t.Errorf("Expected flexio, got %q", a.DigitalEncoding)
		}
		if a.DigitalSampleRate != DefaultDigitalSampleRate {
			t.Errorf("Expected sample rate %d, got %d", DefaultDigitalSampleRate, a.DigitalSampleRate)
		}
		if a.BlockSize != DefaultBlockSize {
			t.Errorf("Expected block size %v, got %v", DefaultBlockSize, a.BlockSize)
		}
	})

	t.Run("analog only", func(t *testing.T) {
		cfg := &Config{}
		cfg.Acquisition.AnalogChannels = 2
		ApplyDefaults(cfg)

		a := cfg.Acquisition
		if a.DigitalChannels != 0 {
			t.Errorf("Expected digital channels to stay disabled, got %d", a.DigitalChannels)
		}
		if a.AnalogEncoding != params.EncodingAnalog8Bit {
			t.Errorf("Expected analog8bit, got %q", a.AnalogEncoding)
		}
		if a.DigitalEncoding != "" {
			t.Errorf("Expected no digital encoding, got %q", a.DigitalEncoding)
		}
	})
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "debug",
			Format: "json",
			Output: "/tmp/logiclink.log",
		},
		ShutdownTimeout: time.Minute,
		Storage: StorageConfig{
			Levels:              3,
			ZoomOutPerLevel:     16,
			BlockSizeMultiplier: 2,
		},
		Demo: DemoConfig{Generator: "random", Seed: 42},
	}
	cfg.Acquisition.Codec = "zstd"
	cfg.Acquisition.Mode = params.ModeDiscard

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level normalized to 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Output != "/tmp/logiclink.log" {
		t.Errorf("Logging overwritten: %+v", cfg.Logging)
	}
	if cfg.ShutdownTimeout != time.Minute {
		t.Errorf("Expected shutdown timeout 1m, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Storage != (StorageConfig{Levels: 3, ZoomOutPerLevel: 16, BlockSizeMultiplier: 2}) {
		t.Errorf("Storage overwritten: %+v", cfg.Storage)
	}
	if cfg.Acquisition.Codec != "zstd" || cfg.Acquisition.Mode != params.ModeDiscard {
		t.Errorf("Acquisition overwritten: %+v", cfg.Acquisition)
	}
	if cfg.Demo.Generator != "random" || cfg.Demo.Seed != 42 {
		t.Errorf("Demo overwritten: %+v", cfg.Demo)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Errorf("Default config should be valid, got: %v", err)
	}
}

func TestGetDefaultConfig_HasProfileTypes(t *testing.T) {
	cfg := GetDefaultConfig()
	if len(cfg.Telemetry.Profiling.ProfileTypes) == 0 {
		t.Error("Expected default profile types")
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("Expected sample rate 1.0, got %v", cfg.Telemetry.SampleRate)
	}
}
