// Package frontend is the read side used by presentation code. It caches
// the most recent range query and turns block views into bit-precise
// channel windows.
package frontend

import (
	"fmt"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/logiclink/logiclink/pkg/backend"
	"github.com/logiclink/logiclink/pkg/bits"
	"github.com/logiclink/logiclink/pkg/blockarray"
)

// Backend is the part of backend.Backend the frontend reads from.
type Backend interface {
	Range(group int, begin, end bits.SampleIdx, zoomOut int, peek bool) (blockarray.View, error)
	ChannelsNumber(group int) (int, error)
	ChannelLength(group int) (bits.SampleNum, error)
	Subscribe(o backend.Observer) (unsubscribe func())
}

type rangeKey struct {
	group   int
	begin   bits.SampleIdx
	length  bits.SampleNum
	zoomOut int
}

// Frontend answers range and channel queries against a Backend.
type Frontend struct {
	backend     Backend
	cache       *lru.Cache[rangeKey, blockarray.View]
	newData     atomic.Bool
	unsubscribe func()

	// mu orders cache inserts against purges. generation counts purges so
	// a view read before new data arrived is never cached after it.
	mu         sync.Mutex
	generation uint64
}

// New creates a Frontend observing b. Call Close to stop observing.
func New(b Backend) (*Frontend, error) {
	cache, err := lru.New[rangeKey, blockarray.View](1)
	if err != nil {
		return nil, fmt.Errorf("failed to create range cache: %w", err)
	}

	f := &Frontend{backend: b, cache: cache}
	f.unsubscribe = b.Subscribe(f)
	return f, nil
}

// Close detaches the frontend from its backend.
func (f *Frontend) Close() {
	f.unsubscribe()
}

// OnNewData implements backend.Observer.
func (f *Frontend) OnNewData() {
	f.mu.Lock()
	f.generation++
	f.cache.Purge()
	f.mu.Unlock()

	f.newData.Store(true)
}

// IsNewData reports whether the backend changed since the previous call.
func (f *Frontend) IsNewData() bool {
	return f.newData.Swap(false)
}

// Size returns the number of samples stored per channel of a group.
func (f *Frontend) Size(group int) (bits.SampleNum, error) {
	return f.backend.ChannelLength(group)
}

// Range returns the blocks covering length samples from begin at the
// coarsest level not exceeding zoomOut. Repeating the latest query is
// served from cache until new data arrives.
func (f *Frontend) Range(group int, begin bits.SampleIdx, length bits.SampleNum, zoomOut int) (blockarray.View, error) {
	key := rangeKey{group: group, begin: begin, length: length, zoomOut: zoomOut}
	if v, ok := f.cache.Get(key); ok {
		return v, nil
	}

	f.mu.Lock()
	generation := f.generation
	f.mu.Unlock()

	// The backend may notify while holding its own lock, so it is read
	// without holding mu.
	v, err := f.backend.Range(group, begin, begin.Add(length), zoomOut, false)
	if err != nil {
		return blockarray.View{}, err
	}

	f.mu.Lock()
	if f.generation == generation {
		f.cache.Add(key, v)
	}
	f.mu.Unlock()
	return v, nil
}

// Channel returns length samples of one channel starting exactly at begin,
// at full resolution. The window is shortened when fewer samples are
// stored. An empty span means nothing is stored at begin.
func (f *Frontend) Channel(group, channel int, begin bits.SampleIdx, length bits.SampleNum) (bits.Span, error) {
	n, err := f.backend.ChannelsNumber(group)
	if err != nil {
		return bits.Span{}, err
	}
	if channel < 0 || channel >= n {
		return bits.Span{}, fmt.Errorf("%w: channel %d of %d", bits.ErrOutOfRange, channel, n)
	}

	v, err := f.Range(group, begin, length, 1)
	if err != nil || v.Empty() {
		return bits.Span{}, err
	}

	first := v.FirstSampleNo()
	if begin < first {
		return bits.Span{}, fmt.Errorf("%w: sample %d precedes stored data at %d", bits.ErrOutOfRange, begin, first)
	}

	all, err := v.Channel(channel)
	if err != nil {
		return bits.Span{}, err
	}

	bps := int(v.BitsPerSample())
	offset := int(bits.Distance(first, begin)) * bps
	want := int(length) * bps
	return all.Slice(offset, min(want, all.Len()-offset))
}
