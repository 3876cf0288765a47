// Package rearrange turns raw device blocks into one contiguous sample
// buffer per channel, undoing the wire-level interleaving.
//
// Word-granular layouts send one fixed-size word per channel in round-robin
// order and only whole words move. Flexio layouts spread each channel over
// several parallel hardware shifters, and every output byte is assembled bit
// by bit from all of them. The gpio bitpack layout sends one word per sample
// with a bit per channel.
package rearrange

import (
	"errors"
	"fmt"

	"github.com/logiclink/logiclink/pkg/params"
)

var (
	// ErrUnsupported is returned for channel count and encoding
	// combinations that have no rearrange routine.
	ErrUnsupported = errors.New("unsupported channel configuration")

	// ErrMisaligned is returned when a raw block is not a whole number of
	// wire batches.
	ErrMisaligned = errors.New("raw block is not a whole number of batches")
)

// Samples is the per-channel result of rearranging one raw block.
type Samples struct {
	BitsPerSample uint8
	Channels      [][]byte
}

// Len returns the size in bytes of a single channel buffer.
func (s Samples) Len() int {
	if len(s.Channels) == 0 {
		return 0
	}
	return len(s.Channels[0])
}

// Func rearranges one raw block.
type Func func(raw []byte) (Samples, error)

// InterleaveFunc is the inverse of a Func: it builds the wire layout from
// per-channel buffers.
type InterleaveFunc func(channels [][]byte) ([]byte, error)

// Shape identifies a wire layout.
type Shape struct {
	Kind      Kind
	Channels  int
	Shifters  int // flexio only
	WordBytes int // word-granular only
}

// ChannelBytes returns the number of output bytes one batch yields per
// channel.
func (s Shape) ChannelBytes() int {
	switch s.Kind {
	case KindFlexio:
		return flexioBatch(s.Shifters)
	case KindGpio:
		return 1
	}
	return s.WordBytes
}

// Kind is the layout family of a Shape.
type Kind int

const (
	KindFlexio Kind = iota
	KindWords
	KindGpio
)

// Batch returns the number of raw bytes that form one complete unit of the
// layout across all channels.
func (s Shape) Batch() int {
	if s.Kind == KindGpio {
		return gpioBatch
	}
	return s.ChannelBytes() * s.Channels
}

// OutputBytes returns the number of bytes, summed over all channels, that
// a raw block of rawBytes rearranges into.
func (s Shape) OutputBytes(rawBytes int) (int, error) {
	batch := s.Batch()
	if batch == 0 || rawBytes%batch != 0 {
		return 0, fmt.Errorf("%w: %d bytes, batch is %d", ErrMisaligned, rawBytes, batch)
	}
	return rawBytes / batch * s.ChannelBytes() * s.Channels, nil
}

// ShapeOf picks the wire layout of an acquisition. The choice depends only
// on the channel count and encoding.
func ShapeOf(p params.Acquisition) (Shape, error) {
	if p.Digital() {
		switch p.DigitalEncoding {
		case params.EncodingFlexio, "":
			switch p.DigitalChannels {
			case 1:
				return Shape{Kind: KindFlexio, Channels: 1, Shifters: 4}, nil
			case 2:
				return Shape{Kind: KindFlexio, Channels: 2, Shifters: 2}, nil
			case 4, 8:
				return Shape{Kind: KindWords, Channels: p.DigitalChannels, WordBytes: 4}, nil
			}
		case params.EncodingGpioBitpack:
			if p.DigitalChannels <= maxGpioChannels {
				return Shape{Kind: KindGpio, Channels: p.DigitalChannels}, nil
			}
		default:
			return Shape{}, fmt.Errorf("%w: unknown digital encoding %q", ErrUnsupported, p.DigitalEncoding)
		}
		return Shape{}, fmt.Errorf("%w: %d digital channels with %s encoding", ErrUnsupported, p.DigitalChannels, p.DigitalEncoding)
	}

	if p.AnalogChannels > 0 {
		if p.AnalogEncoding != params.EncodingAnalog8Bit && p.AnalogEncoding != "" {
			return Shape{}, fmt.Errorf("%w: unknown analog encoding %q", ErrUnsupported, p.AnalogEncoding)
		}
		return Shape{Kind: KindWords, Channels: p.AnalogChannels, WordBytes: 1}, nil
	}

	return Shape{}, fmt.Errorf("%w: no channels enabled", ErrUnsupported)
}

// Select returns the rearrange routine for an acquisition.
func Select(p params.Acquisition) (Func, error) {
	shape, err := ShapeOf(p)
	if err != nil {
		return nil, err
	}

	bps := p.BitsPerSample()
	var fn Func
	switch {
	case shape.Kind == KindFlexio && shape.Channels == 1 && shape.Shifters == 4:
		fn = flexio1x4
	case shape.Kind == KindFlexio:
		if fn, err = Flexio(shape.Channels, shape.Shifters); err != nil {
			return nil, err
		}
	case shape.Kind == KindGpio:
		if fn, err = Gpio(shape.Channels); err != nil {
			return nil, err
		}
	default:
		if fn, err = Words(shape.Channels, shape.WordBytes); err != nil {
			return nil, err
		}
	}

	return func(raw []byte) (Samples, error) {
		s, err := fn(raw)
		s.BitsPerSample = bps
		return s, err
	}, nil
}

// SelectInterleave returns the inverse of Select for an acquisition.
func SelectInterleave(p params.Acquisition) (InterleaveFunc, error) {
	shape, err := ShapeOf(p)
	if err != nil {
		return nil, err
	}
	switch shape.Kind {
	case KindFlexio:
		return InterleaveFlexio(shape.Channels, shape.Shifters)
	case KindGpio:
		return InterleaveGpio(shape.Channels)
	}
	return InterleaveWords(shape.Channels, shape.WordBytes)
}

// Rearrange is a convenience wrapper around Select.
func Rearrange(raw []byte, p params.Acquisition) (Samples, error) {
	fn, err := Select(p)
	if err != nil {
		return Samples{}, err
	}
	return fn(raw)
}

func checkBatch(raw []byte, batch int) error {
	if len(raw)%batch != 0 {
		return fmt.Errorf("%w: %d bytes, batch is %d", ErrMisaligned, len(raw), batch)
	}
	return nil
}

func makeChannels(n, size int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = make([]byte, size)
	}
	return out
}
