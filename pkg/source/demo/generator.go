package demo

import (
	"fmt"
	"math/rand"
)

// Generator kinds.
const (
	GeneratorSquare = "square"
	GeneratorRandom = "random"
)

// Generator fills one channel buffer with successive samples.
type Generator interface {
	Fill(buf []byte)
}

// Square produces a square wave of High samples high followed by Low
// samples low, starting high. Samples are single bits, MSB first, unless
// BitsPerSample is 8, in which case each byte is one sample of 0xFF or 0x00.
type Square struct {
	High, Low     int
	BitsPerSample uint8

	low bool
	cnt int
}

func (s *Square) next() bool {
	v := !s.low
	s.cnt++
	if (!s.low && s.cnt >= s.High) || (s.low && s.cnt >= s.Low) {
		s.low = !s.low
		s.cnt = 0
	}
	return v
}

func (s *Square) Fill(buf []byte) {
	if s.BitsPerSample == 8 {
		for i := range buf {
			buf[i] = 0
			if s.next() {
				buf[i] = 0xFF
			}
		}
		return
	}

	for i := range buf {
		var b byte
		for bit := 7; bit >= 0; bit-- {
			if s.next() {
				b |= 1 << bit
			}
		}
		buf[i] = b
	}
}

// Random produces uniformly random bytes.
type Random struct {
	rnd *rand.Rand
}

// NewRandom returns a Random seeded with seed.
func NewRandom(seed int64) *Random {
	return &Random{rnd: rand.New(rand.NewSource(seed))}
}

func (r *Random) Fill(buf []byte) {
	r.rnd.Read(buf)
}

// newGenerators returns one generator per channel. Square wave channels
// get periods growing with the channel number so they are told apart.
func newGenerators(cfg Config, channels int, bitsPerSample uint8) ([]Generator, error) {
	gens := make([]Generator, channels)
	for c := range gens {
		switch cfg.Generator {
		case GeneratorSquare, "":
			gens[c] = &Square{
				High:          cfg.HighSamples * (c + 1),
				Low:           cfg.LowSamples * (c + 1),
				BitsPerSample: bitsPerSample,
			}
		case GeneratorRandom:
			gens[c] = NewRandom(cfg.Seed + int64(c))
		default:
			return nil, fmt.Errorf("%w: generator %q", ErrInvalidConfig, cfg.Generator)
		}
	}
	return gens, nil
}
