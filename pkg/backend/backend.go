// Package backend holds the block arrays of every acquisition group and
// makes them safe to share between the capture goroutine and readers.
//
// Writers take the lock exclusively for the duration of an append; readers
// take it shared and receive views over immutable blocks, which remain
// valid after the lock is released. Observers are notified outside the
// lock after every append, flush and clear.
package backend

import (
	"errors"
	"fmt"
	"sync"

	"github.com/logiclink/logiclink/internal/logger"
	"github.com/logiclink/logiclink/pkg/bits"
	"github.com/logiclink/logiclink/pkg/blockarray"
)

// ErrUnknownGroup is returned for a group index that was never added.
var ErrUnknownGroup = errors.New("unknown group")

// Observer is notified whenever stored data changes.
type Observer interface {
	OnNewData()
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func()

// OnNewData calls f.
func (f ObserverFunc) OnNewData() { f() }

// LevelStats describes one zoom level of a group.
type LevelStats struct {
	Level   int
	ZoomOut int
	Blocks  int
	Bytes   int
	End     bits.SampleIdx
}

// Backend is a set of independently configured groups.
type Backend struct {
	mu     sync.RWMutex
	groups []*blockarray.BlockArray

	obsMu     sync.Mutex
	observers map[uint64]Observer
	nextObs   uint64
}

// New creates a Backend without groups.
func New() *Backend {
	return &Backend{observers: make(map[uint64]Observer)}
}

// AddGroup creates a new group and returns its index.
func (b *Backend) AddGroup(cfg blockarray.Config) (int, error) {
	arr, err := blockarray.New(cfg)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	b.groups = append(b.groups, arr)
	idx := len(b.groups) - 1
	b.mu.Unlock()

	logger.Debug("Group added",
		logger.Group(idx),
		logger.Channels(cfg.ChannelsNumber),
		logger.KeyLevels, cfg.Levels,
		logger.KeyZoomOut, cfg.ZoomOutPerLevel,
		logger.Bytes(cfg.BlockSizeB))

	return idx, nil
}

// group must be called with mu held.
func (b *Backend) group(i int) (*blockarray.BlockArray, error) {
	if i < 0 || i >= len(b.groups) {
		return nil, fmt.Errorf("group %d: %w", i, ErrUnknownGroup)
	}
	return b.groups[i], nil
}

// Append stores one rearranged raw block in a group.
func (b *Backend) Append(group int, bitsPerSample uint8, channels [][]byte) error {
	b.mu.Lock()
	arr, err := b.group(group)
	if err == nil {
		err = arr.Append(bitsPerSample, channels)
	}
	b.mu.Unlock()

	if err != nil {
		return fmt.Errorf("append to group %d: %w", group, err)
	}

	b.notify()
	return nil
}

// Flush commits a group's partially filled pending block.
func (b *Backend) Flush(group int) error {
	b.mu.Lock()
	arr, err := b.group(group)
	if err == nil {
		err = arr.Flush()
	}
	b.mu.Unlock()

	if err != nil {
		return fmt.Errorf("flush group %d: %w", group, err)
	}

	b.notify()
	return nil
}

// Range returns the blocks of a group covering [begin, end]. See
// blockarray.BlockArray.Range.
func (b *Backend) Range(group int, begin, end bits.SampleIdx, zoomOut int, peek bool) (blockarray.View, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	arr, err := b.group(group)
	if err != nil {
		return blockarray.View{}, err
	}
	return arr.Range(begin, end, zoomOut, peek), nil
}

// ChannelLength returns the number of samples committed to a group.
func (b *Backend) ChannelLength(group int) (bits.SampleNum, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	arr, err := b.group(group)
	if err != nil {
		return 0, err
	}
	return arr.ChannelLength(), nil
}

// ChannelsNumber returns the channel count of a group.
func (b *Backend) ChannelsNumber(group int) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	arr, err := b.group(group)
	if err != nil {
		return 0, err
	}
	return arr.ChannelsNumber(), nil
}

// GroupsNumber returns how many groups were added.
func (b *Backend) GroupsNumber() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.groups)
}

// SampleRate returns the highest sample rate over all groups.
func (b *Backend) SampleRate() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var rate uint64
	for _, g := range b.groups {
		rate = max(rate, g.SampleRate())
	}
	return rate
}

// Levels reports the per-level occupancy of a group.
func (b *Backend) Levels(group int) ([]LevelStats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	arr, err := b.group(group)
	if err != nil {
		return nil, err
	}

	stats := make([]LevelStats, arr.LevelsNumber())
	for i := range stats {
		l := arr.Level(i)
		stats[i] = LevelStats{
			Level:   i,
			ZoomOut: l.ZoomOut(),
			Blocks:  l.Len(),
			Bytes:   l.Bytes(),
			End:     l.End(),
		}
	}
	return stats, nil
}

// Clear drops the data of every group. Group configuration is kept.
func (b *Backend) Clear() {
	b.mu.Lock()
	for _, g := range b.groups {
		g.Clear()
	}
	b.mu.Unlock()

	logger.Debug("Backend cleared")
	b.notify()
}

// Subscribe registers o and returns a function removing it again.
func (b *Backend) Subscribe(o Observer) (unsubscribe func()) {
	b.obsMu.Lock()
	id := b.nextObs
	b.nextObs++
	b.observers[id] = o
	b.obsMu.Unlock()

	return func() {
		b.obsMu.Lock()
		delete(b.observers, id)
		b.obsMu.Unlock()
	}
}

func (b *Backend) notify() {
	b.obsMu.Lock()
	obs := make([]Observer, 0, len(b.observers))
	for _, o := range b.observers {
		obs = append(obs, o)
	}
	b.obsMu.Unlock()

	for _, o := range obs {
		o.OnNewData()
	}
}
