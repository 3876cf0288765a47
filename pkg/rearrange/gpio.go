package rearrange

import (
	"encoding/binary"
	"fmt"

	"github.com/logiclink/logiclink/pkg/bits"
)

const (
	maxGpioChannels = 16
	gpioFirstBit    = 8
	// gpioBatch is eight sample words: one output byte per channel.
	gpioBatch = 8 * bits.WordSize
)

// Gpio returns the gpio bitpack routine. Every little endian 32-bit word
// is one sample of all channels, channel c sits at bit 8+c and the other
// bits are ignored.
func Gpio(channels int) (Func, error) {
	if channels < 1 || channels > maxGpioChannels {
		return nil, fmt.Errorf("%w: gpio with %d channels", ErrUnsupported, channels)
	}

	return func(raw []byte) (Samples, error) {
		if err := checkBatch(raw, gpioBatch); err != nil {
			return Samples{}, err
		}
		words, err := bits.NewWords(raw)
		if err != nil {
			return Samples{}, fmt.Errorf("%w: %v", ErrMisaligned, err)
		}

		out := makeChannels(channels, words.Len()/8)
		for i := 0; i < words.Len(); i++ {
			w := words.At(i) >> gpioFirstBit
			mask := byte(0x80) >> (i % 8)
			for c := range out {
				if w>>c&1 != 0 {
					out[c][i/8] |= mask
				}
			}
		}
		return Samples{Channels: out}, nil
	}, nil
}

// InterleaveGpio is the inverse of Gpio. Unused bits are left zero.
func InterleaveGpio(channels int) (InterleaveFunc, error) {
	if channels < 1 || channels > maxGpioChannels {
		return nil, fmt.Errorf("%w: gpio with %d channels", ErrUnsupported, channels)
	}

	return func(in [][]byte) ([]byte, error) {
		size, err := channelSize(in, channels, 1)
		if err != nil {
			return nil, err
		}

		raw := make([]byte, size*gpioBatch)
		for i := 0; i < size*8; i++ {
			var w uint32
			mask := byte(0x80) >> (i % 8)
			for c := range in {
				if in[c][i/8]&mask != 0 {
					w |= 1 << (gpioFirstBit + c)
				}
			}
			binary.LittleEndian.PutUint32(raw[i*bits.WordSize:], w)
		}
		return raw, nil
	}, nil
}
