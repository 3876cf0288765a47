package blockarray

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned by New for unusable configurations.
	ErrInvalidConfig = errors.New("invalid block array configuration")

	// ErrSizeMismatch is returned by Append when the appended buffers do
	// not match the configured block size.
	ErrSizeMismatch = errors.New("block size mismatch")
)

// Config fixes the shape of a BlockArray for its whole lifetime.
type Config struct {
	// ChannelsNumber is the number of channels of every append.
	ChannelsNumber int

	// Levels is the number of zoom levels, level 0 included.
	Levels int

	// ZoomOutPerLevel is the reduction factor between adjacent levels.
	// Level i holds samples reduced by ZoomOutPerLevel^i.
	ZoomOutPerLevel int

	// BlockSizeB is the size of one append summed over all channels.
	BlockSizeB int

	// BlockSizeMultiplier is the number of appends collected before they
	// are committed to the levels as one block.
	BlockSizeMultiplier int

	// SampleRate of level 0 in Hz. Informational.
	SampleRate uint64
}

// Validate reports the first problem found in c.
func (c Config) Validate() error {
	switch {
	case c.ChannelsNumber < 1:
		return fmt.Errorf("%w: need at least one channel", ErrInvalidConfig)
	case c.Levels < 1:
		return fmt.Errorf("%w: need at least one level", ErrInvalidConfig)
	case c.Levels > 1 && c.ZoomOutPerLevel < 2:
		return fmt.Errorf("%w: zoom out per level must be at least 2, got %d", ErrInvalidConfig, c.ZoomOutPerLevel)
	case c.BlockSizeB < 1 || c.BlockSizeB%c.ChannelsNumber != 0:
		return fmt.Errorf("%w: block size %d is not a multiple of %d channels", ErrInvalidConfig, c.BlockSizeB, c.ChannelsNumber)
	case c.BlockSizeMultiplier < 1:
		return fmt.Errorf("%w: block size multiplier must be positive", ErrInvalidConfig)
	}
	return nil
}

// ZoomOut returns the reduction factor of level i.
func (c Config) ZoomOut(level int) int {
	z := 1
	for range level {
		z *= c.ZoomOutPerLevel
	}
	return z
}

// CommitBytes is the size of the pending block, over all channels, at
// which it is committed.
func (c Config) CommitBytes() int { return c.BlockSizeB * c.BlockSizeMultiplier }
