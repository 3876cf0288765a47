package acquisition

import (
	"sync"

	"github.com/logiclink/logiclink/pkg/params"
)

// RawBlock is one transfer as received from the device.
type RawBlock struct {
	Data []byte

	// Overruns is the transport's running total of device buffer overruns
	// up to this block. It is cumulative, not a per-block delta; zero means
	// the transport did not report it.
	Overruns uint64

	// Throughput is the transfer rate the transport measured, in MB/s.
	Throughput float64
}

// Queue hands raw blocks from the transport goroutine to the session
// consumer. Push never blocks; the queue is unbounded.
type Queue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	blocks    []RawBlock
	stopped   bool
	closed    bool
	discarded uint64
	onDrop    func(RawBlock)
}

// NewQueue creates an empty queue. onDrop, if not nil, receives every block
// that is dropped without being returned by Next.
func NewQueue(onDrop func(RawBlock)) *Queue {
	q := &Queue{onDrop: onDrop}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends b. It reports false, and drops b, once the queue is stopped
// or closed.
func (q *Queue) Push(b RawBlock) bool {
	q.mu.Lock()
	if q.stopped || q.closed {
		q.discarded++
		q.mu.Unlock()
		q.drop(b)
		return false
	}
	q.blocks = append(q.blocks, b)
	q.mu.Unlock()

	q.cond.Signal()
	return true
}

// Next waits for a block.
//
// With params.ModeDiscard it returns the newest block and drops the older
// ones; otherwise it returns the oldest block, so every block is returned
// exactly once in order. Next reports false once the queue is stopped, or
// once it is closed and empty.
func (q *Queue) Next(mode params.Mode) (RawBlock, bool) {
	q.mu.Lock()
	for !q.stopped && !q.closed && len(q.blocks) == 0 {
		q.cond.Wait()
	}

	if q.stopped || len(q.blocks) == 0 {
		q.mu.Unlock()
		return RawBlock{}, false
	}

	var (
		b       RawBlock
		dropped []RawBlock
	)
	if mode == params.ModeDiscard {
		n := len(q.blocks)
		b = q.blocks[n-1]
		dropped = append(dropped, q.blocks[:n-1]...)
		q.discarded += uint64(n - 1)
		clear(q.blocks)
		q.blocks = q.blocks[:0]
	} else {
		b = q.blocks[0]
		q.blocks[0] = RawBlock{}
		q.blocks = q.blocks[1:]
	}
	q.mu.Unlock()

	for _, d := range dropped {
		q.drop(d)
	}
	return b, true
}

// Stop wakes the consumer and makes every further Next report false.
// Blocks still queued are dropped.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	rest := q.blocks
	q.blocks = nil
	q.discarded += uint64(len(rest))
	q.mu.Unlock()

	q.cond.Broadcast()
	for _, d := range rest {
		q.drop(d)
	}
}

// Close marks the end of the stream. The consumer receives the blocks
// still queued, then Next reports false.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.cond.Broadcast()
}

// Len returns the number of blocks waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.blocks)
}

// Discarded returns the number of blocks dropped so far.
func (q *Queue) Discarded() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.discarded
}

// Stopped reports whether Stop was called.
func (q *Queue) Stopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}

func (q *Queue) drop(b RawBlock) {
	if q.onDrop != nil {
		q.onDrop(b)
	}
}
