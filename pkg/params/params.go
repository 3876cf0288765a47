// Package params describes an acquisition: which channels the device sends
// and how they are encoded on the wire.
package params

import (
	"errors"
	"fmt"
)

// DigitalEncoding selects the wire layout of digital channels.
type DigitalEncoding string

const (
	// EncodingFlexio is the bit-interleaved layout produced by parallel
	// hardware shifters.
	EncodingFlexio DigitalEncoding = "flexio"
	// EncodingGpioBitpack sends one little endian 32-bit word per sample,
	// with channel c at bit 8+c.
	EncodingGpioBitpack DigitalEncoding = "gpio_bitpack"
)

// AnalogEncoding selects the wire layout of analog channels.
type AnalogEncoding string

// EncodingAnalog8Bit sends one byte per channel per sample, round-robin.
const EncodingAnalog8Bit AnalogEncoding = "analog8bit"

// Mode selects how the consumer drains the raw block queue.
type Mode string

const (
	// ModeKeepAll processes every raw block once, in arrival order.
	ModeKeepAll Mode = "keep_all"
	// ModeDiscard always processes the newest raw block and drops older
	// ones. Suitable for live preview only.
	ModeDiscard Mode = "discard"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid acquisition parameters")

// Acquisition is the configuration of one capture session.
type Acquisition struct {
	DigitalSampleRate uint64          `mapstructure:"digital_sample_rate" yaml:"digital_sample_rate"`
	DigitalChannels   int             `mapstructure:"digital_channels" validate:"gte=0,lte=16" yaml:"digital_channels"`
	DigitalEncoding   DigitalEncoding `mapstructure:"digital_encoding" validate:"omitempty,oneof=flexio gpio_bitpack" yaml:"digital_encoding"`
	AnalogSampleRate  uint64          `mapstructure:"analog_sample_rate" yaml:"analog_sample_rate"`
	AnalogChannels    int             `mapstructure:"analog_channels" validate:"gte=0,lte=16" yaml:"analog_channels"`
	AnalogEncoding    AnalogEncoding  `mapstructure:"analog_encoding" validate:"omitempty,oneof=analog8bit" yaml:"analog_encoding"`
	Mode              Mode            `mapstructure:"mode" validate:"omitempty,oneof=keep_all discard" yaml:"mode"`
}

// Digital reports whether the session carries digital channels. Digital
// channels take precedence when both kinds are configured.
func (a Acquisition) Digital() bool { return a.DigitalChannels > 0 }

// Channels returns the number of channels rearranged out of each raw block.
func (a Acquisition) Channels() int {
	if a.Digital() {
		return a.DigitalChannels
	}
	return a.AnalogChannels
}

// SampleRate returns the sample rate of the active channel kind.
func (a Acquisition) SampleRate() uint64 {
	if a.Digital() {
		return a.DigitalSampleRate
	}
	return a.AnalogSampleRate
}

// BitsPerSample returns the width of one sample of the active channel kind.
func (a Acquisition) BitsPerSample() uint8 {
	if a.Digital() {
		return 1
	}
	return 8
}

// Validate checks the combination of fields that cannot be expressed with
// struct tags alone.
func (a Acquisition) Validate() error {
	switch {
	case a.DigitalChannels == 0 && a.AnalogChannels == 0:
		return fmt.Errorf("%w: no channels enabled", ErrInvalid)
	case a.DigitalChannels < 0 || a.AnalogChannels < 0:
		return fmt.Errorf("%w: negative channel count", ErrInvalid)
	case a.Mode != "" && a.Mode != ModeKeepAll && a.Mode != ModeDiscard:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalid, a.Mode)
	}
	return nil
}
