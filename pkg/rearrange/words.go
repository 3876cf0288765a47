package rearrange

import "fmt"

// Words returns the word-granular routine: the raw block is a sequence of
// wordBytes-sized words, one per channel in round-robin order.
func Words(channels, wordBytes int) (Func, error) {
	if channels < 1 || wordBytes < 1 {
		return nil, fmt.Errorf("%w: %d channels of %d-byte words", ErrUnsupported, channels, wordBytes)
	}

	batch := channels * wordBytes
	return func(raw []byte) (Samples, error) {
		if err := checkBatch(raw, batch); err != nil {
			return Samples{}, err
		}

		out := makeChannels(channels, len(raw)/channels)
		for b, pos := 0, 0; pos < len(raw); b++ {
			dst := b * wordBytes
			for c := 0; c < channels; c++ {
				copy(out[c][dst:dst+wordBytes], raw[pos:pos+wordBytes])
				pos += wordBytes
			}
		}
		return Samples{Channels: out}, nil
	}, nil
}

// InterleaveWords is the inverse of Words.
func InterleaveWords(channels, wordBytes int) (InterleaveFunc, error) {
	if channels < 1 || wordBytes < 1 {
		return nil, fmt.Errorf("%w: %d channels of %d-byte words", ErrUnsupported, channels, wordBytes)
	}

	return func(in [][]byte) ([]byte, error) {
		size, err := channelSize(in, channels, wordBytes)
		if err != nil {
			return nil, err
		}

		raw := make([]byte, 0, size*channels)
		for off := 0; off < size; off += wordBytes {
			for c := 0; c < channels; c++ {
				raw = append(raw, in[c][off:off+wordBytes]...)
			}
		}
		return raw, nil
	}, nil
}

// channelSize checks that in holds channels equal-length buffers, each a
// whole number of unit-sized pieces.
func channelSize(in [][]byte, channels, unit int) (int, error) {
	if len(in) != channels {
		return 0, fmt.Errorf("%w: got %d channel buffers, want %d", ErrUnsupported, len(in), channels)
	}
	size := len(in[0])
	for _, ch := range in {
		if len(ch) != size {
			return 0, fmt.Errorf("%w: channel buffers differ in length", ErrMisaligned)
		}
	}
	if size%unit != 0 {
		return 0, fmt.Errorf("%w: %d bytes per channel, unit is %d", ErrMisaligned, size, unit)
	}
	return size, nil
}
