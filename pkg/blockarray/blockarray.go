// Package blockarray stores per-channel sample streams at several zoom
// levels at once and answers range queries at any resolution in
// logarithmic time.
//
// Appends collect in a pending block. Once the pending block reaches
// Config.CommitBytes it is committed to level 0 and downsampled level by
// level into the coarser ones. Data still pending is not visible to
// queries.
//
// A BlockArray has a single writer and is not safe for concurrent use; the
// backend package adds locking. Committed blocks are immutable, so a View
// stays valid after the lock is released.
package blockarray

import (
	"fmt"

	"github.com/logiclink/logiclink/pkg/bits"
	"github.com/logiclink/logiclink/pkg/block"
	"github.com/logiclink/logiclink/pkg/downsample"
)

// BlockArray is a multi-resolution store for one group of channels.
type BlockArray struct {
	cfg           Config
	levels        []*Level
	pending       *block.Block
	channelLength bits.SampleNum
}

// New creates an empty BlockArray.
func New(cfg Config) (*BlockArray, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &BlockArray{cfg: cfg, levels: make([]*Level, cfg.Levels)}
	for i := range a.levels {
		a.levels[i] = &Level{zoomOut: cfg.ZoomOut(i)}
	}
	a.resetPending()
	return a, nil
}

// Config returns the configuration the array was created with.
func (a *BlockArray) Config() Config { return a.cfg }

// ChannelsNumber returns the number of channels per append.
func (a *BlockArray) ChannelsNumber() int { return a.cfg.ChannelsNumber }

// SampleRate returns the level 0 sample rate.
func (a *BlockArray) SampleRate() uint64 { return a.cfg.SampleRate }

// ChannelLength returns the number of committed level 0 samples per
// channel.
func (a *BlockArray) ChannelLength() bits.SampleNum { return a.channelLength }

// PendingBytes returns the amount of appended data not yet committed.
func (a *BlockArray) PendingBytes() int { return a.pending.Bytes() }

// LevelsNumber returns the number of zoom levels.
func (a *BlockArray) LevelsNumber() int { return len(a.levels) }

// Level returns zoom level i.
func (a *BlockArray) Level(i int) *Level { return a.levels[i] }

// Append adds one block of samples, one buffer per channel. Empty input
// is ignored.
func (a *BlockArray) Append(bitsPerSample uint8, channels [][]byte) error {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil
	}
	if bitsPerSample == 0 || 8%bitsPerSample != 0 {
		return fmt.Errorf("%w: %d bits per sample", downsample.ErrUnsupportedWidth, bitsPerSample)
	}
	if len(channels) != a.cfg.ChannelsNumber {
		return fmt.Errorf("%w: %d channels, configured %d", ErrSizeMismatch, len(channels), a.cfg.ChannelsNumber)
	}
	for _, ch := range channels {
		if len(ch) != len(channels[0]) {
			return fmt.Errorf("%w: channel buffers differ in length", ErrSizeMismatch)
		}
	}
	if size := len(channels) * len(channels[0]); size != a.cfg.BlockSizeB {
		return fmt.Errorf("%w: allowed %d, provided %d", ErrSizeMismatch, a.cfg.BlockSizeB, size)
	}

	if err := a.pending.Append(block.New(bitsPerSample, 1, 0, channels)); err != nil {
		return err
	}
	if a.pending.Bytes() < a.cfg.CommitBytes() {
		return nil
	}
	return a.commitPending()
}

// Flush commits whatever is pending, even if it is smaller than a full
// commit. Use it at the end of a stream.
func (a *BlockArray) Flush() error {
	if a.pending.Empty() {
		return nil
	}
	return a.commitPending()
}

func (a *BlockArray) commitPending() error {
	p := a.pending
	a.resetPending()

	length := p.ChannelLength()
	if err := a.commit(p); err != nil {
		return err
	}
	a.channelLength += length
	return nil
}

// commit downsamples b into every level and adds the results, deepest
// level first.
func (a *BlockArray) commit(b *block.Block) error {
	perLevel := make([]*block.Block, len(a.levels))
	perLevel[0] = b
	for i := 1; i < len(a.levels); i++ {
		reduced, err := a.levels[i-1].reduce(perLevel[i-1], a.cfg.ZoomOutPerLevel, a.levels[i].zoomOut)
		if err != nil {
			return fmt.Errorf("downsample level %d: %w", i, err)
		}
		perLevel[i] = reduced
	}

	threshold := a.cfg.CommitBytes()
	for i := len(a.levels) - 1; i >= 0; i-- {
		if err := a.levels[i].add(perLevel[i], threshold); err != nil {
			return fmt.Errorf("commit level %d: %w", i, err)
		}
	}
	return nil
}

func (a *BlockArray) resetPending() {
	a.pending = &block.Block{}
	a.pending.Reserve(a.cfg.ChannelsNumber, a.cfg.CommitBytes()/a.cfg.ChannelsNumber)
}

// Range returns the blocks covering [begin, end] at the coarsest level
// whose zoom factor does not exceed zoomOut, falling back to level 0.
// With peek the range starts one zoom unit earlier.
//
// The first block returned is the first one ending at or after begin. The
// last one is the first block ending at or after end, or the last block if
// the data ends before end. The view is empty when begin == end, when
// end < begin or when no data ends at or after begin.
func (a *BlockArray) Range(begin, end bits.SampleIdx, zoomOut int, peek bool) View {
	if begin >= end {
		return View{}
	}

	l := a.levelFor(zoomOut)
	if peek {
		begin = begin.Back(bits.SampleNum(l.zoomOut))
	}

	bi := l.find(begin)
	if bi == len(l.index) {
		return View{zoomOut: l.zoomOut}
	}
	ei := l.find(end)
	if ei == len(l.index) {
		ei--
	}

	return View{
		zoomOut: l.zoomOut,
		blocks:  append([]*block.Block(nil), l.blocks[bi:ei+1]...),
	}
}

func (a *BlockArray) levelFor(zoomOut int) *Level {
	for i := len(a.levels) - 1; i > 0; i-- {
		if a.levels[i].zoomOut <= zoomOut {
			return a.levels[i]
		}
	}
	return a.levels[0]
}

// Clear drops all data and downsampling state. The configuration is kept.
func (a *BlockArray) Clear() {
	for _, l := range a.levels {
		l.clear()
	}
	a.resetPending()
	a.channelLength = 0
}
