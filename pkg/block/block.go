// Package block holds Block, a run of per-channel sample bytes at one zoom
// factor starting at a known sample number.
package block

import (
	"errors"
	"fmt"

	"github.com/logiclink/logiclink/pkg/bits"
)

// ErrChannelMismatch is returned when two blocks with a different number of
// channels are joined.
var ErrChannelMismatch = errors.New("channel count mismatch")

// Block stores one byte buffer per channel. All buffers have the same
// length.
//
// A Block that has been handed out to readers must not be modified; use
// Extended to grow it.
type Block struct {
	bitsPerSample uint8
	zoomOut       int
	first         bits.SampleIdx
	channels      [][]byte
}

// New creates a Block that takes ownership of channels.
func New(bitsPerSample uint8, zoomOut int, first bits.SampleIdx, channels [][]byte) *Block {
	if bitsPerSample == 0 {
		bitsPerSample = 1
	}
	if zoomOut < 1 {
		zoomOut = 1
	}
	return &Block{
		bitsPerSample: bitsPerSample,
		zoomOut:       zoomOut,
		first:         first,
		channels:      channels,
	}
}

func (b *Block) BitsPerSample() uint8 { return b.bitsPerSample }

func (b *Block) ZoomOut() int { return b.zoomOut }

func (b *Block) FirstSampleNo() bits.SampleIdx { return b.first }

func (b *Block) ChannelsNumber() int { return len(b.channels) }

// Channel returns the buffer of channel i. The caller must not modify it.
func (b *Block) Channel(i int) []byte { return b.channels[i] }

// Channels returns all channel buffers. The caller must not modify them.
func (b *Block) Channels() [][]byte { return b.channels }

// ChannelBytes returns the length of a single channel buffer.
func (b *Block) ChannelBytes() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Bytes returns the size of the block summed over all channels.
func (b *Block) Bytes() int { return b.ChannelBytes() * len(b.channels) }

// Empty reports whether the block holds no samples.
func (b *Block) Empty() bool { return b.ChannelBytes() == 0 }

// ChannelLength returns the number of level 0 samples the block covers.
func (b *Block) ChannelLength() bits.SampleNum {
	n := b.ChannelBytes()
	if n == 0 {
		return 0
	}
	perByte := 8 / max(int(b.bitsPerSample), 1)
	return bits.SampleNum(n * perByte * max(b.zoomOut, 1))
}

// LastSampleNo returns the number of the last sample covered by the block.
func (b *Block) LastSampleNo() bits.SampleIdx {
	return bits.Last(b.first, b.ChannelLength())
}

// Reserve grows the capacity of every channel buffer, adding channels if
// the block has fewer than requested.
func (b *Block) Reserve(channels, bytesPerChannel int) {
	for len(b.channels) < channels {
		b.channels = append(b.channels, nil)
	}
	for i, ch := range b.channels {
		if cap(ch)-len(ch) < bytesPerChannel {
			grown := make([]byte, len(ch), len(ch)+bytesPerChannel)
			copy(grown, ch)
			b.channels[i] = grown
		}
	}
}

// Append copies the channel buffers of other onto the end of b. An empty
// block without channels adopts the channel count of other.
func (b *Block) Append(other *Block) error {
	if err := b.check(other); err != nil {
		return err
	}
	if len(b.channels) == 0 {
		b.channels = make([][]byte, len(other.channels))
	}

	b.bitsPerSample = other.bitsPerSample
	for i, src := range other.channels {
		b.channels[i] = append(b.channels[i], src...)
	}
	return nil
}

// Extended returns a new Block holding b followed by other. b itself is
// left unchanged, so views over it stay valid. The result may share
// storage with b, so b must not be extended twice.
func (b *Block) Extended(other *Block) (*Block, error) {
	if err := b.check(other); err != nil {
		return nil, err
	}

	channels := make([][]byte, len(other.channels))
	for i, src := range other.channels {
		var dst []byte
		if i < len(b.channels) {
			dst = b.channels[i]
		}
		channels[i] = append(dst, src...)
	}
	return &Block{
		bitsPerSample: other.bitsPerSample,
		zoomOut:       b.zoomOut,
		first:         b.first,
		channels:      channels,
	}, nil
}

func (b *Block) check(other *Block) error {
	if len(b.channels) != 0 && len(other.channels) != len(b.channels) {
		return fmt.Errorf("%w: block has %d channels, appended %d", ErrChannelMismatch, len(b.channels), len(other.channels))
	}
	return nil
}

// Clear drops the sample data and keeps the channel count and sample
// width. Storage is released rather than reused.
func (b *Block) Clear() {
	for i := range b.channels {
		b.channels[i] = nil
	}
}
