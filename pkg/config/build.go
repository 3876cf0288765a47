package config

import (
	"fmt"

	"github.com/logiclink/logiclink/internal/logger"
	"github.com/logiclink/logiclink/internal/telemetry"
	"github.com/logiclink/logiclink/pkg/acquisition"
	"github.com/logiclink/logiclink/pkg/blockarray"
	"github.com/logiclink/logiclink/pkg/rearrange"
	"github.com/logiclink/logiclink/pkg/source/demo"
)

// BlockArrayConfig derives the storage layout of the configured
// acquisition. One append carries the rearranged output of one raw block.
func (c *Config) BlockArrayConfig() (blockarray.Config, error) {
	shape, err := rearrange.ShapeOf(c.Acquisition.Acquisition)
	if err != nil {
		return blockarray.Config{}, fmt.Errorf("acquisition: %w", err)
	}
	out, err := shape.OutputBytes(int(c.Acquisition.BlockSize))
	if err != nil {
		return blockarray.Config{}, fmt.Errorf("acquisition.block_size: %w", err)
	}

	cfg := blockarray.Config{
		ChannelsNumber:      c.Acquisition.Channels(),
		Levels:              c.Storage.Levels,
		ZoomOutPerLevel:     c.Storage.ZoomOutPerLevel,
		BlockSizeB:          out,
		BlockSizeMultiplier: c.Storage.BlockSizeMultiplier,
		SampleRate:          c.Acquisition.SampleRate(),
	}
	if err := cfg.Validate(); err != nil {
		return blockarray.Config{}, fmt.Errorf("storage: %w", err)
	}
	return cfg, nil
}

// SessionConfig returns the capture session configuration for group.
func (c *Config) SessionConfig(group int) acquisition.Config {
	return acquisition.Config{
		Acquisition: c.Acquisition.Acquisition,
		Codec:       c.Acquisition.Codec,
		Group:       group,
	}
}

// DemoConfig returns the synthetic source configuration.
func (c *Config) DemoConfig() demo.Config {
	return demo.Config{
		Acquisition: c.Acquisition.Acquisition,
		Codec:       c.Acquisition.Codec,
		Generator:   c.Demo.Generator,
		BlockSize:   int(c.Acquisition.BlockSize),
		Blocks:      c.Demo.Blocks,
		Interval:    c.Demo.Interval,
		HighSamples: c.Demo.HighSamples,
		LowSamples:  c.Demo.LowSamples,
		Seed:        c.Demo.Seed,
	}
}

// LoggerConfig returns the logger settings.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}
}

// TracingConfig returns the OpenTelemetry settings for the given version.
func (c *Config) TracingConfig(version string) telemetry.Config {
	cfg := telemetry.DefaultConfig()
	cfg.Enabled = c.Telemetry.Enabled
	cfg.Endpoint = c.Telemetry.Endpoint
	cfg.Insecure = c.Telemetry.Insecure
	cfg.SampleRate = c.Telemetry.SampleRate
	if version != "" {
		cfg.ServiceVersion = version
	}
	return cfg
}

// ProfilingConfig returns the Pyroscope settings, tagged with the
// acquisition mode and encoding.
func (c *Config) ProfilingConfig(version string) telemetry.ProfilingConfig {
	encoding := string(c.Acquisition.AnalogEncoding)
	if c.Acquisition.Digital() {
		encoding = string(c.Acquisition.DigitalEncoding)
	}
	return telemetry.ProfilingConfig{
		Enabled:        c.Telemetry.Profiling.Enabled,
		ServiceName:    telemetry.DefaultConfig().ServiceName,
		ServiceVersion: version,
		Endpoint:       c.Telemetry.Profiling.Endpoint,
		ProfileTypes:   c.Telemetry.Profiling.ProfileTypes,
		Tags: map[string]string{
			"mode":     string(c.Acquisition.Mode),
			"encoding": encoding,
		},
	}
}
