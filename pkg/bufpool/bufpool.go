// Package bufpool recycles the byte buffers that carry raw blocks from the
// transport to the acquisition consumer.
//
// Buffers come in size tiers. A request is served from the smallest tier
// that fits it; requests above the largest tier are allocated directly and
// never pooled, so an occasional oversized transfer does not stay resident.
//
// # Usage
//
//	buf := bufpool.Get(n)
//	defer bufpool.Put(buf)
package bufpool

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Default tier sizes.
const (
	// DefaultSmallSize fits a single USB bulk transfer (16KB).
	DefaultSmallSize = 16 << 10

	// DefaultMediumSize fits a typical raw block (256KB).
	DefaultMediumSize = 256 << 10

	// DefaultLargeSize fits the largest raw block a device sends (4MB).
	DefaultLargeSize = 4 << 20
)

// Config lists the tier sizes of a pool. Zero or negative sizes are
// dropped; an empty list selects the defaults.
type Config struct {
	Sizes []int
}

// DefaultConfig returns the default tiers.
func DefaultConfig() Config {
	return Config{Sizes: []int{DefaultSmallSize, DefaultMediumSize, DefaultLargeSize}}
}

// Stats counts pool traffic.
type Stats struct {
	Gets      uint64 // buffers handed out
	Puts      uint64 // buffers returned to a tier
	Oversized uint64 // requests larger than every tier
}

type tier struct {
	size int
	pool sync.Pool
}

// Pool is a tiered buffer pool. It is safe for concurrent use.
type Pool struct {
	tiers     []*tier
	gets      atomic.Uint64
	puts      atomic.Uint64
	oversized atomic.Uint64
}

// NewPool creates a pool with the given tiers.
func NewPool(cfg Config) *Pool {
	sizes := slices.DeleteFunc(slices.Clone(cfg.Sizes), func(s int) bool { return s <= 0 })
	if len(sizes) == 0 {
		sizes = DefaultConfig().Sizes
	}
	slices.Sort(sizes)
	sizes = slices.Compact(sizes)

	p := &Pool{tiers: make([]*tier, len(sizes))}
	for i, size := range sizes {
		t := &tier{size: size}
		t.pool.New = func() any {
			buf := make([]byte, t.size)
			return &buf
		}
		p.tiers[i] = t
	}
	return p
}

// Get returns a slice of length size. Its capacity is the tier size.
// Return it with Put once it is no longer referenced.
func (p *Pool) Get(size int) []byte {
	p.gets.Add(1)

	t := p.tierFor(size)
	if t == nil {
		p.oversized.Add(1)
		return make([]byte, size)
	}

	buf := *t.pool.Get().(*[]byte)
	return buf[:size]
}

// Copy returns a pooled copy of src.
func (p *Pool) Copy(src []byte) []byte {
	buf := p.Get(len(src))
	copy(buf, src)
	return buf
}

// Put returns buf to its tier. Buffers whose capacity matches no tier are
// left to the garbage collector.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}

	for _, t := range p.tiers {
		if cap(buf) == t.size {
			full := buf[:cap(buf)]
			t.pool.Put(&full)
			p.puts.Add(1)
			return
		}
	}
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Gets:      p.gets.Load(),
		Puts:      p.puts.Load(),
		Oversized: p.oversized.Load(),
	}
}

// Sizes returns the tier sizes in ascending order.
func (p *Pool) Sizes() []int {
	out := make([]int, len(p.tiers))
	for i, t := range p.tiers {
		out[i] = t.size
	}
	return out
}

func (p *Pool) tierFor(size int) *tier {
	for _, t := range p.tiers {
		if size <= t.size {
			return t
		}
	}
	return nil
}

// =============================================================================
// Global Pool
// =============================================================================

var globalPool = NewPool(DefaultConfig())

// Get returns a buffer from the global pool.
func Get(size int) []byte {
	return globalPool.Get(size)
}

// Copy returns a copy of src backed by the global pool.
func Copy(src []byte) []byte {
	return globalPool.Copy(src)
}

// Put returns a buffer to the global pool.
func Put(buf []byte) {
	globalPool.Put(buf)
}

// GlobalStats returns the counters of the global pool.
func GlobalStats() Stats {
	return globalPool.Stats()
}
