package blockarray

import (
	"fmt"
	"sort"

	"github.com/logiclink/logiclink/pkg/bits"
	"github.com/logiclink/logiclink/pkg/block"
	"github.com/logiclink/logiclink/pkg/downsample"
)

// Level is the sequence of blocks at one zoom factor together with an
// index of their last sample numbers. index[i] belongs to blocks[i] and
// the keys are strictly increasing.
type Level struct {
	zoomOut  int
	blocks   []*block.Block
	index    []bits.SampleIdx
	end      bits.SampleIdx
	reducers []downsample.Reducer
}

// ZoomOut returns the reduction factor of the level.
func (l *Level) ZoomOut() int { return l.zoomOut }

// Len returns the number of blocks in the level.
func (l *Level) Len() int { return len(l.blocks) }

// Keys returns a copy of the index keys.
func (l *Level) Keys() []bits.SampleIdx {
	return append([]bits.SampleIdx(nil), l.index...)
}

// Bytes returns the amount of sample data held by the level.
func (l *Level) Bytes() int {
	n := 0
	for _, b := range l.blocks {
		n += b.Bytes()
	}
	return n
}

// End returns the sample number just past the data held by the level.
func (l *Level) End() bits.SampleIdx { return l.end }

// add commits b to the level, either as a new block or by extending the
// tail while the tail is smaller than threshold bytes. The tail is
// replaced, never modified, so views taken earlier stay valid.
func (l *Level) add(b *block.Block, threshold int) error {
	if b.Empty() {
		return nil
	}

	n := len(l.blocks)
	if n == 0 || l.blocks[n-1].Bytes() >= threshold {
		nb := block.New(b.BitsPerSample(), l.zoomOut, l.end, b.Channels())
		l.blocks = append(l.blocks, nb)
		l.index = append(l.index, nb.LastSampleNo())
	} else {
		ext, err := l.blocks[n-1].Extended(b)
		if err != nil {
			return err
		}
		l.blocks[n-1] = ext
		l.index[n-1] = ext.LastSampleNo()
	}

	l.end = l.blocks[len(l.blocks)-1].LastSampleNo() + 1
	return nil
}

// reduce downsamples b by factor with the per-channel state of this level.
// The result is tagged with zoomOut, the factor of the next level.
func (l *Level) reduce(b *block.Block, factor, zoomOut int) (*block.Block, error) {
	if l.reducers == nil {
		l.reducers = make([]downsample.Reducer, b.ChannelsNumber())
		for i := range l.reducers {
			r, err := downsample.For(b.BitsPerSample(), factor)
			if err != nil {
				return nil, err
			}
			l.reducers[i] = r
		}
	}
	if len(l.reducers) != b.ChannelsNumber() {
		return nil, fmt.Errorf("%w: level reduces %d channels, got %d", block.ErrChannelMismatch, len(l.reducers), b.ChannelsNumber())
	}

	out := make([][]byte, b.ChannelsNumber())
	for i, r := range l.reducers {
		reduced, err := r.Apply(b.Channel(i))
		if err != nil {
			return nil, err
		}
		out[i] = reduced
	}
	return block.New(b.BitsPerSample(), zoomOut, 0, out), nil
}

// find returns the position of the first block whose last sample is at or
// after idx, or Len() if there is none.
func (l *Level) find(idx bits.SampleIdx) int {
	return sort.Search(len(l.index), func(i int) bool { return l.index[i] >= idx })
}

func (l *Level) clear() {
	l.blocks = nil
	l.index = nil
	l.end = 0
	for _, r := range l.reducers {
		r.Reset()
	}
}
