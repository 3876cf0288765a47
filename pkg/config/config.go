package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/logiclink/logiclink/pkg/params"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the logiclink configuration.
//
// It is loaded from a YAML file, overridden by LOGICLINK_* environment
// variables, and completed with defaults.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing and profiling
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics controls the Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// ShutdownTimeout is the maximum time to wait for a capture to drain
	// after an interrupt.
	// Default: 10s
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Acquisition describes the device stream
	Acquisition AcquisitionConfig `mapstructure:"acquisition" yaml:"acquisition"`

	// Storage shapes the multi-resolution sample store
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Demo configures the synthetic source used by 'logiclink run'
	Demo DemoConfig `mapstructure:"demo" yaml:"demo"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address
	// Default: localhost:4317
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate is the fraction of sessions traced, 0.0 to 1.0
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig controls the HTTP server exposing /metrics and /health.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP listen port
	// Default: 9090 when enabled
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// AcquisitionConfig describes the raw block stream of a capture.
type AcquisitionConfig struct {
	params.Acquisition `mapstructure:",squash" yaml:",inline"`

	// Codec is the compression of raw blocks: none, lz4 or zstd
	Codec string `mapstructure:"codec" validate:"omitempty,oneof=none lz4 zstd" yaml:"codec"`

	// BlockSize is the decompressed size of one raw block.
	// Accepts human-readable sizes such as "16KiB".
	BlockSize ByteSize `mapstructure:"block_size" validate:"required" yaml:"block_size"`
}

// StorageConfig shapes the zoom levels of the sample store.
type StorageConfig struct {
	// Levels is the number of zoom levels, level 0 included
	Levels int `mapstructure:"levels" validate:"required,min=1,max=32" yaml:"levels"`

	// ZoomOutPerLevel is the reduction factor between adjacent levels
	ZoomOutPerLevel int `mapstructure:"zoom_out_per_level" validate:"required,min=2" yaml:"zoom_out_per_level"`

	// BlockSizeMultiplier is the number of raw blocks collected before
	// they are committed and downsampled
	BlockSizeMultiplier int `mapstructure:"block_size_multiplier" validate:"required,min=1" yaml:"block_size_multiplier"`
}

// DemoConfig configures the synthetic source.
type DemoConfig struct {
	// Generator is "square" or "random"
	Generator string `mapstructure:"generator" validate:"required,oneof=square random" yaml:"generator"`

	// Blocks is the number of raw blocks sent; 0 runs until interrupted
	Blocks int `mapstructure:"blocks" validate:"gte=0" yaml:"blocks"`

	// Interval paces the blocks; 0 sends as fast as possible
	Interval time.Duration `mapstructure:"interval" validate:"gte=0" yaml:"interval"`

	HighSamples int `mapstructure:"high_samples" validate:"gte=0" yaml:"high_samples"`
	LowSamples  int `mapstructure:"low_samples" validate:"gte=0" yaml:"low_samples"`

	Seed int64 `mapstructure:"seed" yaml:"seed"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (LOGICLINK_*)
//  2. Configuration file
//  3. Default values
//
// An empty configPath uses the default location. A missing file yields the
// default configuration.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !configFileFound {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// MustLoad loads configuration like Load but requires the file to exist,
// returning instructions on how to create it otherwise.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  logiclink config init\n\n"+
				"Or specify a custom config file:\n"+
				"  logiclink <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  logiclink config init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	// LOGICLINK_LOGGING_LEVEL=DEBUG overrides logging.level
	v.SetEnvPrefix("LOGICLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile reports whether a configuration file was found and read.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings like "16KiB" and plain numbers to
// ByteSize.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return ParseByteSize(v)
		case int:
			return ByteSize(v), nil
		case int64:
			return ByteSize(v), nil
		case uint64:
			return ByteSize(v), nil
		case float64:
			return ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings like "30s" to time.Duration. Raw
// integers are nanoseconds.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/logiclink, ~/.config/logiclink, or
// the current directory when no home directory is known.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "logiclink")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "logiclink")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
