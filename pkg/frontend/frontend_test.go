package frontend

import (
	"sync/atomic"
	"testing"

	"github.com/logiclink/logiclink/pkg/backend"
	"github.com/logiclink/logiclink/pkg/bits"
	"github.com/logiclink/logiclink/pkg/blockarray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blockSize = 16

// countingBackend counts range queries reaching the backend.
type countingBackend struct {
	*backend.Backend
	ranges atomic.Int32
}

func (c *countingBackend) Range(group int, begin, end bits.SampleIdx, zoomOut int, peek bool) (blockarray.View, error) {
	c.ranges.Add(1)
	return c.Backend.Range(group, begin, end, zoomOut, peek)
}

func newBackend(t *testing.T) (*countingBackend, int) {
	t.Helper()
	b := &countingBackend{Backend: backend.New()}
	g, err := b.AddGroup(blockarray.Config{
		ChannelsNumber:      4,
		Levels:              3,
		ZoomOutPerLevel:     2,
		BlockSizeB:          blockSize,
		BlockSizeMultiplier: 1,
	})
	require.NoError(t, err)
	return b, g
}

// square returns one append where every channel byte is pattern.
func square(pattern byte) [][]byte {
	out := make([][]byte, 4)
	for c := range out {
		out[c] = make([]byte, blockSize/4)
		for k := range out[c] {
			out[c][k] = pattern
		}
	}
	return out
}

func newFrontend(t *testing.T, b Backend) *Frontend {
	t.Helper()
	f, err := New(b)
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func spanBits(s bits.Span) []bool {
	out := make([]bool, s.Len())
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}

// ============================================================================
// New data notification
// ============================================================================

func TestIsNewData(t *testing.T) {
	b, g := newBackend(t)
	f1 := newFrontend(t, b)
	f2 := newFrontend(t, b)

	assert.False(t, f1.IsNewData())
	assert.False(t, f2.IsNewData())

	for range 2 {
		require.NoError(t, b.Append(g, 1, square(0xF0)))

		assert.True(t, f1.IsNewData())
		assert.False(t, f1.IsNewData())
		assert.True(t, f2.IsNewData())
		assert.False(t, f2.IsNewData())
	}
}

func TestClose(t *testing.T) {
	b, g := newBackend(t)
	f, err := New(b)
	require.NoError(t, err)

	f.Close()
	require.NoError(t, b.Append(g, 1, square(0xF0)))
	assert.False(t, f.IsNewData())
}

func TestSize(t *testing.T) {
	b, g := newBackend(t)
	f := newFrontend(t, b)

	n, err := f.Size(g)
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := 1; i <= 3; i++ {
		require.NoError(t, b.Append(g, 1, square(0xF0)))
		n, err = f.Size(g)
		require.NoError(t, err)
		assert.Equal(t, bits.SampleNum(i*32), n)
	}

	b.Clear()
	n, err = f.Size(g)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// ============================================================================
// Range cache
// ============================================================================

func TestRange_Cached(t *testing.T) {
	b, g := newBackend(t)
	f := newFrontend(t, b)
	require.NoError(t, b.Append(g, 1, square(0xF0)))

	v1, err := f.Range(g, 0, 32, 1)
	require.NoError(t, err)
	v2, err := f.Range(g, 0, 32, 1)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, int32(1), b.ranges.Load())

	// A different query replaces the single cached entry.
	_, err = f.Range(g, 0, 32, 2)
	require.NoError(t, err)
	_, err = f.Range(g, 0, 32, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(3), b.ranges.Load())
}

func TestRange_InvalidatedByNewData(t *testing.T) {
	b, g := newBackend(t)
	f := newFrontend(t, b)
	require.NoError(t, b.Append(g, 1, square(0xF0)))

	v, err := f.Range(g, 0, 64, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Len())

	require.NoError(t, b.Append(g, 1, square(0xF0)))

	v, err = f.Range(g, 0, 64, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, int32(2), b.ranges.Load())
}

// appendingBackend runs during once, right after the first range query has
// been read and before the frontend stores it.
type appendingBackend struct {
	*countingBackend
	during func()
}

func (a *appendingBackend) Range(group int, begin, end bits.SampleIdx, zoomOut int, peek bool) (blockarray.View, error) {
	v, err := a.countingBackend.Range(group, begin, end, zoomOut, peek)
	if a.during != nil {
		during := a.during
		a.during = nil
		during()
	}
	return v, err
}

func TestRange_AppendDuringQueryNotCached(t *testing.T) {
	b, g := newBackend(t)
	require.NoError(t, b.Append(g, 1, square(0xF0)))

	ab := &appendingBackend{countingBackend: b}
	f := newFrontend(t, ab)
	ab.during = func() {
		require.NoError(t, b.Append(g, 1, square(0xF0)))
	}

	v, err := f.Range(g, 0, 64, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Len())
	assert.True(t, f.IsNewData())

	v, err = f.Range(g, 0, 64, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, int32(2), b.ranges.Load())

	// Once nothing changes, the repeat is served from cache.
	_, err = f.Range(g, 0, 64, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), b.ranges.Load())
}

func TestRange_UnknownGroup(t *testing.T) {
	b, _ := newBackend(t)
	f := newFrontend(t, b)

	_, err := f.Range(7, 0, 10, 1)
	assert.ErrorIs(t, err, backend.ErrUnknownGroup)
}

// ============================================================================
// Channel windows
// ============================================================================

func TestChannel_SquareWave(t *testing.T) {
	b, g := newBackend(t)
	f := newFrontend(t, b)
	for range 10 {
		require.NoError(t, b.Append(g, 1, square(0xF0)))
	}

	// Tiles of 75 samples, the later ones crossing block boundaries.
	for _, begin := range []bits.SampleIdx{0, 75, 150, 225} {
		span, err := f.Channel(g, 3, begin, 75)
		require.NoError(t, err)
		require.Equal(t, 75, span.Len())

		for i, got := range spanBits(span) {
			pos := int(begin) + i
			assert.Equal(t, pos%8 < 4, got, "sample %d", pos)
		}
	}
}

func TestChannel_ClampedToStoredData(t *testing.T) {
	b, g := newBackend(t)
	f := newFrontend(t, b)
	require.NoError(t, b.Append(g, 1, square(0xAA)))
	require.NoError(t, b.Append(g, 1, square(0xAA)))

	span, err := f.Channel(g, 0, 60, 100)
	require.NoError(t, err)
	assert.Equal(t, 4, span.Len())
	assert.Equal(t, []bool{true, false, true, false}, spanBits(span))
}

func TestChannel_Analog(t *testing.T) {
	b, g := newBackend(t)
	f := newFrontend(t, b)

	data := make([][]byte, 4)
	for c := range data {
		data[c] = []byte{byte(c), 10, 20, 30}
	}
	require.NoError(t, b.Append(g, 8, data))

	span, err := f.Channel(g, 2, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20}, span.Bytes())
}

func TestChannel_Errors(t *testing.T) {
	b, g := newBackend(t)
	f := newFrontend(t, b)
	require.NoError(t, b.Append(g, 1, square(0xF0)))

	_, err := f.Channel(g, 4, 0, 8)
	assert.ErrorIs(t, err, bits.ErrOutOfRange)

	_, err = f.Channel(g, -1, 0, 8)
	assert.ErrorIs(t, err, bits.ErrOutOfRange)

	_, err = f.Channel(9, 0, 0, 8)
	assert.ErrorIs(t, err, backend.ErrUnknownGroup)
}

func TestChannel_NothingStored(t *testing.T) {
	b, g := newBackend(t)
	f := newFrontend(t, b)

	span, err := f.Channel(g, 0, 0, 8)
	require.NoError(t, err)
	assert.Zero(t, span.Len())

	require.NoError(t, b.Append(g, 1, square(0xF0)))
	span, err = f.Channel(g, 0, 100, 8)
	require.NoError(t, err)
	assert.Zero(t, span.Len())
}
