package blockarray

import (
	"fmt"

	"github.com/logiclink/logiclink/pkg/bits"
	"github.com/logiclink/logiclink/pkg/block"
)

// View is the result of a range query: consecutive blocks of one level.
// It does not copy sample data.
type View struct {
	zoomOut int
	blocks  []*block.Block
}

// Empty reports whether the view holds no blocks.
func (v View) Empty() bool { return len(v.blocks) == 0 }

// Len returns the number of blocks.
func (v View) Len() int { return len(v.blocks) }

// ZoomOut returns the reduction factor of the level the view was taken
// from, or 0 for a view of nothing.
func (v View) ZoomOut() int { return v.zoomOut }

// Blocks returns the blocks of the view.
func (v View) Blocks() []*block.Block { return v.blocks }

// FirstSampleNo returns the first sample covered by the view.
func (v View) FirstSampleNo() bits.SampleIdx {
	if v.Empty() {
		return 0
	}
	return v.blocks[0].FirstSampleNo()
}

// LastSampleNo returns the last sample covered by the view.
func (v View) LastSampleNo() bits.SampleIdx {
	if v.Empty() {
		return 0
	}
	return v.blocks[len(v.blocks)-1].LastSampleNo()
}

// BitsPerSample returns the sample width of the view's blocks.
func (v View) BitsPerSample() uint8 {
	if v.Empty() {
		return 1
	}
	return v.blocks[0].BitsPerSample()
}

// Channel returns channel i of every block joined into one bit span.
func (v View) Channel(i int) (bits.Span, error) {
	chunks := make([][]byte, len(v.blocks))
	total := 0
	for k, b := range v.blocks {
		if i < 0 || i >= b.ChannelsNumber() {
			return bits.Span{}, fmt.Errorf("%w: channel %d of %d", bits.ErrOutOfRange, i, b.ChannelsNumber())
		}
		chunks[k] = b.Channel(i)
		total += len(chunks[k]) * 8
	}
	return bits.NewMultiSpan(chunks, 0, total)
}
