package rearrange

import "fmt"

// flexioBatch is the number of raw bytes one channel contributes per batch:
// one 32-bit word from each of its shifters.
func flexioBatch(shifters int) int { return 4 * shifters }

func validShifters(s int) bool {
	return s == 1 || s == 2 || s == 4 || s == 8
}

// Flexio returns the bit-granular routine for the given number of channels
// and shifters per channel.
//
// A batch of one channel is S words (4*S bytes) whose shifters are stored
// last to first. Input bit j of byte 3-k of shifter word S-1-l lands in
// output byte k*S + j/(8/S), at bit position 7 - (l + (j%(8/S))*S).
// Channels follow each other batch by batch.
func Flexio(channels, shifters int) (Func, error) {
	if channels < 1 || !validShifters(shifters) {
		return nil, fmt.Errorf("%w: flexio with %d channels and %d shifters", ErrUnsupported, channels, shifters)
	}

	batch := flexioBatch(shifters)
	return func(raw []byte) (Samples, error) {
		if err := checkBatch(raw, batch*channels); err != nil {
			return Samples{}, err
		}

		out := makeChannels(channels, len(raw)/channels)
		for b, pos := 0, 0; pos < len(raw); b++ {
			for c := 0; c < channels; c++ {
				gatherFlexio(out[c][b*batch:(b+1)*batch], raw[pos:pos+batch], shifters)
				pos += batch
			}
		}
		return Samples{Channels: out}, nil
	}, nil
}

func gatherFlexio(dst, src []byte, s int) {
	per := 8 / s
	for k := 0; k < 4; k++ {
		for l := 0; l < s; l++ {
			in := src[4*(s-l-1)+3-k]
			for j := 0; j < 8; j++ {
				bit := in >> j & 1
				dst[k*s+j/per] |= bit << 7 >> (l + (j%per)*s)
			}
		}
	}
}

func scatterFlexio(dst, src []byte, s int) {
	per := 8 / s
	for k := 0; k < 4; k++ {
		for l := 0; l < s; l++ {
			idx := 4*(s-l-1) + 3 - k
			for j := 0; j < 8; j++ {
				bit := src[k*s+j/per] >> (7 - (l + (j%per)*s)) & 1
				dst[idx] |= bit << j
			}
		}
	}
}

// flexio1x4 is the single channel, four shifter layout with the bit loop
// unrolled. It produces the same output as Flexio(1, 4).
func flexio1x4(raw []byte) (Samples, error) {
	const batch = 16
	if err := checkBatch(raw, batch); err != nil {
		return Samples{}, err
	}

	out := make([]byte, len(raw))
	for pos := 0; pos < len(raw); pos += batch {
		in := raw[pos : pos+batch]
		dst := out[pos : pos+batch]
		for k := 0; k < 4; k++ {
			s0, s1, s2, s3 := in[15-k], in[11-k], in[7-k], in[3-k]
			for m := 0; m < 4; m++ {
				e, o := 2*m, 2*m+1
				dst[4*k+m] = (s0>>e&1)<<7 | (s1>>e&1)<<6 | (s2>>e&1)<<5 | (s3>>e&1)<<4 |
					(s0>>o&1)<<3 | (s1>>o&1)<<2 | (s2>>o&1)<<1 | (s3>>o&1)
			}
		}
	}
	return Samples{Channels: [][]byte{out}}, nil
}

// InterleaveFlexio is the inverse of Flexio.
func InterleaveFlexio(channels, shifters int) (InterleaveFunc, error) {
	if channels < 1 || !validShifters(shifters) {
		return nil, fmt.Errorf("%w: flexio with %d channels and %d shifters", ErrUnsupported, channels, shifters)
	}

	batch := flexioBatch(shifters)
	return func(in [][]byte) ([]byte, error) {
		size, err := channelSize(in, channels, batch)
		if err != nil {
			return nil, err
		}

		raw := make([]byte, size*channels)
		pos := 0
		for off := 0; off < size; off += batch {
			for c := 0; c < channels; c++ {
				scatterFlexio(raw[pos:pos+batch], in[c][off:off+batch], shifters)
				pos += batch
			}
		}
		return raw, nil
	}, nil
}
