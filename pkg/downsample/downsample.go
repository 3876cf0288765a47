// Package downsample reduces 1-bit-per-sample channel streams by an integer
// factor while keeping edges visible.
//
// A factor is split into stages: one stage of 2 for every factor of two,
// followed by one stage for the remaining odd factor, if any. Each stage
// turns a window of its own size into one bit:
//
//	all low   -> 0
//	all high  -> 1
//	mixed     -> the inverse of the stage's previous output bit
//
// A mixed window contains at least one edge, so flipping the output keeps
// an edge visible at every zoom level. Because a factor of 2^k is exactly k
// cascaded halvings, reducing by a and then by b equals reducing by a*b for
// powers of two; the State of a*b is the stages of a followed by those of b.
//
// 8-bit analog streams use Peak, which keeps the largest sample of every
// window.
package downsample

import (
	"errors"
	"fmt"

	"github.com/logiclink/logiclink/pkg/bits"
)

// ErrInvalidFactor is returned for zoom out factors below 2.
var ErrInvalidFactor = errors.New("zoom out factor must be at least 2")

// stage reduces windows of a fixed size and remembers its last output bit.
type stage struct {
	factor int
	phase  bool
	n      int // bits consumed in the open window
	high   bool
	low    bool
}

func (g *stage) reduce() bool {
	v := g.high
	if g.high && g.low {
		v = !g.phase
	}
	g.phase = v
	g.n = 0
	g.high, g.low = false, false
	return v
}

// plan splits zoomOut into its stage factors.
func plan(zoomOut int) []stage {
	var stages []stage
	odd := zoomOut
	for odd%2 == 0 {
		stages = append(stages, stage{factor: 2})
		odd /= 2
	}
	if odd > 1 {
		stages = append(stages, stage{factor: odd})
	}
	return stages
}

// State carries the open window and last output bit of every stage, plus a
// partially filled output byte, from one call to the next. The zero value
// starts a new stream.
type State struct {
	zoomOut int
	stages  []stage
	out     bits.Packer
}

// Reset returns the state to the start of a new stream.
func (s *State) Reset() { *s = State{} }

func (s *State) init(zoomOut int) {
	if s.zoomOut != zoomOut {
		s.zoomOut = zoomOut
		s.stages = plan(zoomOut)
	}
}

// Open reports the number of input bits sitting in incomplete windows.
func (s *State) Open() int {
	open, width := 0, 1
	for _, g := range s.stages {
		open += g.n * width
		width *= g.factor
	}
	return open
}

// Flush closes a finite stream. Incomplete windows are reduced as if they
// were complete, first stage first, and the last output byte is padded with
// zeros.
func (s *State) Flush() []byte {
	for i := range s.stages {
		if s.stages[i].n > 0 {
			s.push(i+1, s.stages[i].reduce())
		}
	}
	out := s.out.Flush()
	s.Reset()
	return out
}

// push feeds one bit into stage i; bits leaving the last stage are output.
func (s *State) push(i int, bit bool) {
	for ; i < len(s.stages); i++ {
		g := &s.stages[i]
		if bit {
			g.high = true
		} else {
			g.low = true
		}
		g.n++
		if g.n < g.factor {
			return
		}
		bit = g.reduce()
	}
	s.out.Push(bit)
}

func checkFactor(zoomOut int) error {
	if zoomOut < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidFactor, zoomOut)
	}
	return nil
}

// Generic downsamples in by zoomOut bit by bit. Only complete output bytes
// are returned; the rest stays in st.
func Generic(in []byte, zoomOut int, st *State) ([]byte, error) {
	if err := checkFactor(zoomOut); err != nil {
		return nil, err
	}
	st.init(zoomOut)

	for _, b := range in {
		for j := 7; j >= 0; j-- {
			st.push(0, b>>j&1 == 1)
		}
	}

	return st.out.Take(), nil
}

// Span downsamples a bit-precise view, which may start mid-byte and span
// several non-contiguous buffers.
func Span(in bits.Span, zoomOut int, st *State) ([]byte, error) {
	if err := checkFactor(zoomOut); err != nil {
		return nil, err
	}
	st.init(zoomOut)

	var (
		out []byte
		err error
	)
	in.Segments(func(chunk []byte, from, n int) {
		if err != nil {
			return
		}
		if from%8 == 0 && n%8 == 0 {
			var part []byte
			part, err = Lookup(chunk[from/8:(from+n)/8], zoomOut, st)
			out = append(out, part...)
			return
		}
		for k := from; k < from+n; k++ {
			st.push(0, chunk[k/8]>>(7-k%8)&1 == 1)
		}
		out = append(out, st.out.Take()...)
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Downsampler reduces one channel of one level. It owns the State that
// threads windows across consecutive blocks.
type Downsampler struct {
	zoomOut int
	state   State
}

// New returns a Downsampler for the given factor.
func New(zoomOut int) (*Downsampler, error) {
	if err := checkFactor(zoomOut); err != nil {
		return nil, err
	}
	return &Downsampler{zoomOut: zoomOut}, nil
}

// ZoomOut returns the reduction factor.
func (d *Downsampler) ZoomOut() int { return d.zoomOut }

// Apply downsamples the next block of the channel.
func (d *Downsampler) Apply(in []byte) ([]byte, error) {
	return Lookup(in, d.zoomOut, &d.state)
}

// Flush closes the stream; see State.Flush.
func (d *Downsampler) Flush() []byte { return d.state.Flush() }

// Reset forgets any carried window.
func (d *Downsampler) Reset() { d.state.Reset() }
