package blockarray

import (
	"math/rand"
	"testing"

	"github.com/logiclink/logiclink/pkg/bits"
	"github.com/logiclink/logiclink/pkg/downsample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// channelBlock returns one 4-channel append of 4 bytes per channel. Byte k
// of channel c in block n is c<<4 | (4n+k), so channel 0 counts up from 0.
func channelBlock(n int) [][]byte {
	out := make([][]byte, 4)
	for c := range out {
		out[c] = make([]byte, 4)
		for k := range out[c] {
			out[c][k] = byte(c<<4 | (4*n + k))
		}
	}
	return out
}

func newArray(t *testing.T, cfg Config) *BlockArray {
	t.Helper()
	a, err := New(cfg)
	require.NoError(t, err)
	return a
}

func fourChannels(levels, zoomOutPerLevel, multiplier int) Config {
	return Config{
		ChannelsNumber:      4,
		Levels:              levels,
		ZoomOutPerLevel:     zoomOutPerLevel,
		BlockSizeB:          16,
		BlockSizeMultiplier: multiplier,
	}
}

func appendBlocks(t *testing.T, a *BlockArray, bitsPerSample uint8, ns ...int) {
	t.Helper()
	for _, n := range ns {
		require.NoError(t, a.Append(bitsPerSample, channelBlock(n)))
	}
}

func channelBytes(t *testing.T, v View, ch int) []byte {
	t.Helper()
	span, err := v.Channel(ch)
	require.NoError(t, err)
	return span.Bytes()
}

// ============================================================================
// Configuration
// ============================================================================

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: fourChannels(3, 2, 1)},
		{name: "single level ignores zoom", cfg: fourChannels(1, 0, 1)},
		{name: "no channels", cfg: Config{Levels: 1, BlockSizeB: 16, BlockSizeMultiplier: 1}, wantErr: true},
		{name: "no levels", cfg: fourChannels(0, 2, 1), wantErr: true},
		{name: "zoom out of one", cfg: fourChannels(2, 1, 1), wantErr: true},
		{name: "no multiplier", cfg: fourChannels(1, 2, 0), wantErr: true},
		{name: "block not divisible", cfg: Config{ChannelsNumber: 3, Levels: 1, BlockSizeB: 16, BlockSizeMultiplier: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfig_ZoomOut(t *testing.T) {
	t.Parallel()

	cfg := fourChannels(4, 4, 1)
	assert.Equal(t, []int{1, 4, 16, 64}, []int{cfg.ZoomOut(0), cfg.ZoomOut(1), cfg.ZoomOut(2), cfg.ZoomOut(3)})
}

// ============================================================================
// Append
// ============================================================================

func TestAppend_ChannelLength(t *testing.T) {
	t.Parallel()

	t.Run("no multiplier", func(t *testing.T) {
		a := newArray(t, Config{ChannelsNumber: 16, Levels: 1, BlockSizeB: 2 * 8192, BlockSizeMultiplier: 1})
		data := make([][]byte, 16)
		for c := range data {
			data[c] = make([]byte, 1024)
		}

		for i := 1; i <= 3; i++ {
			require.NoError(t, a.Append(1, data))
			assert.Equal(t, bits.SampleNum(i*8192), a.ChannelLength())
			assert.Equal(t, 16, a.ChannelsNumber())
		}

		a.Clear()
		assert.Equal(t, bits.SampleNum(0), a.ChannelLength())
		assert.Equal(t, 16, a.ChannelsNumber())
	})

	t.Run("multiply by 2", func(t *testing.T) {
		a := newArray(t, fourChannels(1, 2, 2))

		appendBlocks(t, a, 1, 0)
		assert.Equal(t, bits.SampleNum(0), a.ChannelLength())
		assert.Equal(t, 16, a.PendingBytes())

		appendBlocks(t, a, 1, 0)
		assert.Equal(t, bits.SampleNum(64), a.ChannelLength())
		assert.Equal(t, 0, a.PendingBytes())

		appendBlocks(t, a, 1, 0)
		assert.Equal(t, bits.SampleNum(64), a.ChannelLength())

		appendBlocks(t, a, 1, 0)
		assert.Equal(t, bits.SampleNum(128), a.ChannelLength())
	})
}

func TestAppend_Errors(t *testing.T) {
	t.Parallel()

	a := newArray(t, fourChannels(1, 2, 1))

	err := a.Append(1, [][]byte{{1, 2, 3, 4}, {1, 2, 3, 4}})
	require.ErrorIs(t, err, ErrSizeMismatch)

	err = a.Append(1, [][]byte{{1, 2}, {1, 2}, {1, 2}, {1, 2}})
	require.ErrorIs(t, err, ErrSizeMismatch)

	err = a.Append(1, [][]byte{{1, 2, 3, 4}, {1, 2, 3, 4}, {1, 2, 3, 4}, {1, 2, 3}})
	require.ErrorIs(t, err, ErrSizeMismatch)

	err = a.Append(3, channelBlock(0))
	require.ErrorIs(t, err, downsample.ErrUnsupportedWidth)

	assert.Equal(t, bits.SampleNum(0), a.ChannelLength())
}

func TestAppend_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	a := newArray(t, fourChannels(1, 2, 1))
	require.NoError(t, a.Append(1, nil))
	require.NoError(t, a.Append(1, [][]byte{{}, {}}))

	assert.True(t, a.Range(32, 96, 1, false).Empty())
	assert.True(t, a.Range(0, 0, 1, false).Empty())
	assert.True(t, a.Range(0, 1, 1, false).Empty())
}

func TestAppend_HugeBlocks(t *testing.T) {
	t.Parallel()

	const samplesPerBlock = 16384
	a := newArray(t, Config{ChannelsNumber: 1, Levels: 1, BlockSizeB: 2048, BlockSizeMultiplier: 1})
	level := a.Level(0)

	for i := 0; i < 100; i++ {
		require.NoError(t, a.Append(1, [][]byte{make([]byte, 2048)}))
		last := level.blocks[level.Len()-1]
		assert.Equal(t, bits.SampleNum(samplesPerBlock), last.ChannelLength())
		assert.Equal(t, bits.SampleIdx(samplesPerBlock*i), last.FirstSampleNo())
		assert.Equal(t, bits.SampleIdx(samplesPerBlock*i+samplesPerBlock-1), last.LastSampleNo())
	}

	end := bits.SampleIdx(a.ChannelLength())
	v := a.Range(end-100, end-1, 1, false)
	require.Equal(t, 1, v.Len())
	assert.Same(t, level.blocks[99], v.Blocks()[0])
	assert.Equal(t, bits.SampleIdx(samplesPerBlock*99), v.FirstSampleNo())
	assert.Equal(t, bits.SampleIdx(samplesPerBlock*100-1), v.LastSampleNo())
}

// ============================================================================
// Range
// ============================================================================

func TestRange_FullAndPartCopy(t *testing.T) {
	t.Parallel()

	a := newArray(t, fourChannels(1, 2, 1))
	appendBlocks(t, a, 1, 0, 1, 2)

	v := a.Range(0, 96, 1, false)
	require.Equal(t, 3, v.Len())
	assert.Equal(t, uint8(1), v.BitsPerSample())
	assert.Equal(t, bits.SampleIdx(0), v.FirstSampleNo())
	assert.Equal(t, bits.SampleIdx(95), v.LastSampleNo())
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 0xa, 0xb}, channelBytes(t, v, 0))
	assert.Equal(t, []byte{0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18, 0x19, 0x1a, 0x1b}, channelBytes(t, v, 1))

	v = a.Range(32, 96, 1, false)
	require.Equal(t, 2, v.Len())
	assert.Equal(t, bits.SampleIdx(32), v.FirstSampleNo())
	assert.Equal(t, []byte{4, 5, 6, 7, 8, 9, 0xa, 0xb}, channelBytes(t, v, 0))

	_, err := v.Channel(4)
	require.ErrorIs(t, err, bits.ErrOutOfRange)
}

func TestRange_WithMultiplier(t *testing.T) {
	t.Parallel()

	a := newArray(t, fourChannels(1, 2, 2))
	appendBlocks(t, a, 1, 0, 1, 2, 3)

	v := a.Range(0, 128, 1, false)
	require.Equal(t, 2, v.Len())
	assert.Equal(t, bits.SampleIdx(0), v.FirstSampleNo())
	assert.Equal(t, bits.SampleIdx(127), v.LastSampleNo())
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 0xa, 0xb, 0xc, 0xd, 0xe, 0xf}, channelBytes(t, v, 0))
}

func TestRange_BlockSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		bitsPerSample uint8
		blocks        []int
		begin, end    bits.SampleIdx
		first, n      int
	}{
		{name: "8bit one block 0..4", bitsPerSample: 8, blocks: []int{0}, begin: 0, end: 4, first: 0, n: 1},
		{name: "8bit one block 0..2", bitsPerSample: 8, blocks: []int{0}, begin: 0, end: 2, first: 0, n: 1},
		{name: "8bit one block past the end", bitsPerSample: 8, blocks: []int{0}, begin: 4, end: 8, n: 0},
		{name: "8bit first block", bitsPerSample: 8, blocks: []int{0, 1, 2}, begin: 0, end: 3, first: 0, n: 1},
		{name: "8bit two blocks", bitsPerSample: 8, blocks: []int{0, 1, 2}, begin: 0, end: 4, first: 0, n: 2},
		{name: "8bit two blocks to 7", bitsPerSample: 8, blocks: []int{0, 1, 2}, begin: 0, end: 7, first: 0, n: 2},
		{name: "8bit all blocks", bitsPerSample: 8, blocks: []int{0, 1, 2}, begin: 0, end: 8, first: 0, n: 3},
		{name: "8bit all blocks to 12", bitsPerSample: 8, blocks: []int{0, 1, 2}, begin: 0, end: 12, first: 0, n: 3},
		{name: "8bit last block", bitsPerSample: 8, blocks: []int{0, 1, 2}, begin: 8, end: 100, first: 2, n: 1},
		{name: "1bit inside", bitsPerSample: 1, blocks: []int{0}, begin: 12, end: 31, first: 0, n: 1},
		{name: "1bit partially", bitsPerSample: 1, blocks: []int{0}, begin: 8, end: 100, first: 0, n: 1},
		{name: "1bit reversed", bitsPerSample: 1, blocks: []int{0}, begin: 32, end: 31, n: 0},
		{name: "1bit first of three", bitsPerSample: 1, blocks: []int{0, 1, 2}, begin: 0, end: 7, first: 0, n: 1},
		{name: "1bit two of three", bitsPerSample: 1, blocks: []int{0, 1, 2}, begin: 0, end: 40, first: 0, n: 2},
		{name: "1bit three of three", bitsPerSample: 1, blocks: []int{0, 1, 2}, begin: 0, end: 65, first: 0, n: 3},
		{name: "1bit tail from 32", bitsPerSample: 1, blocks: []int{0, 1, 2}, begin: 32, end: 100, first: 1, n: 2},
		{name: "1bit tail from 64", bitsPerSample: 1, blocks: []int{0, 1, 2}, begin: 64, end: 100, first: 2, n: 1},
		{name: "1bit past the end", bitsPerSample: 1, blocks: []int{0, 1, 2}, begin: 96, end: 100, n: 0},
		{name: "1bit empty", bitsPerSample: 1, blocks: []int{0, 1, 2}, begin: 10, end: 10, n: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newArray(t, fourChannels(1, 2, 1))
			appendBlocks(t, a, tt.bitsPerSample, tt.blocks...)

			v := a.Range(tt.begin, tt.end, 1, false)
			require.Equal(t, tt.n, v.Len())
			if tt.n > 0 {
				assert.Same(t, a.Level(0).blocks[tt.first], v.Blocks()[0])
			}
		})
	}
}

func TestRange_Peek(t *testing.T) {
	t.Parallel()

	a := newArray(t, fourChannels(2, 4, 1))
	appendBlocks(t, a, 1, 0, 1, 2)

	assert.Equal(t, bits.SampleIdx(32), a.Range(32, 40, 1, false).FirstSampleNo())
	assert.Equal(t, bits.SampleIdx(0), a.Range(32, 40, 1, true).FirstSampleNo())

	v := a.Range(0, 10, 1, true)
	require.False(t, v.Empty())
	assert.Equal(t, bits.SampleIdx(0), v.FirstSampleNo())

	v = a.Range(2, 10, 4, true)
	require.False(t, v.Empty())
	assert.Equal(t, 4, v.ZoomOut())
	assert.Equal(t, bits.SampleIdx(0), v.FirstSampleNo())
}

func TestRange_ZoomOut(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		levels          int
		zoomOutPerLevel int
		hint            int
		wantZoom        int
		wantBytes       int
	}{
		{name: "single level", levels: 1, zoomOutPerLevel: 2, hint: 48, wantZoom: 1, wantBytes: 12},
		{name: "two levels by 2", levels: 2, zoomOutPerLevel: 2, hint: 48, wantZoom: 2, wantBytes: 6},
		{name: "three levels hint 2", levels: 3, zoomOutPerLevel: 2, hint: 2, wantZoom: 2, wantBytes: 6},
		{name: "three levels hint 4", levels: 3, zoomOutPerLevel: 2, hint: 4, wantZoom: 4, wantBytes: 3},
		{name: "three levels hint 3", levels: 3, zoomOutPerLevel: 2, hint: 3, wantZoom: 2, wantBytes: 6},
		{name: "by 4 keeps detail", levels: 2, zoomOutPerLevel: 4, hint: 2, wantZoom: 1, wantBytes: 12},
		{name: "by 4 level 1", levels: 2, zoomOutPerLevel: 4, hint: 4, wantZoom: 4, wantBytes: 3},
		{name: "hint below every level", levels: 3, zoomOutPerLevel: 2, hint: 0, wantZoom: 1, wantBytes: 12},
		{name: "hint beyond every level", levels: 3, zoomOutPerLevel: 2, hint: 1 << 20, wantZoom: 4, wantBytes: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newArray(t, fourChannels(tt.levels, tt.zoomOutPerLevel, 1))
			appendBlocks(t, a, 1, 0, 1, 2)

			v := a.Range(0, 96, tt.hint, false)
			require.False(t, v.Empty())
			assert.Equal(t, tt.wantZoom, v.ZoomOut())
			assert.Equal(t, uint8(1), v.BitsPerSample())
			assert.Equal(t, bits.SampleIdx(0), v.FirstSampleNo())
			assert.Equal(t, bits.SampleIdx(95), v.LastSampleNo())

			for c := 0; c < 4; c++ {
				assert.Len(t, channelBytes(t, v, c), tt.wantBytes)
			}
		})
	}
}

func TestRange_EmptyWhenBeginEqualsEnd(t *testing.T) {
	t.Parallel()

	a := newArray(t, fourChannels(3, 2, 1))
	appendBlocks(t, a, 1, 0, 1, 2)

	for _, idx := range []bits.SampleIdx{0, 10, 95, 200} {
		for _, peek := range []bool{false, true} {
			assert.True(t, a.Range(idx, idx, 1, peek).Empty())
			assert.True(t, a.Range(idx, idx, 4, peek).Empty())
		}
	}
}

// ============================================================================
// Downsampled levels
// ============================================================================

func TestLevels_MatchDownsampledStream(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	cfg := Config{ChannelsNumber: 2, Levels: 4, ZoomOutPerLevel: 2, BlockSizeB: 32, BlockSizeMultiplier: 2}
	a := newArray(t, cfg)

	stream := make([][]byte, 2)
	for i := 0; i < 40; i++ {
		ch := [][]byte{make([]byte, 16), make([]byte, 16)}
		for c := range ch {
			// Long runs keep most windows uniform, with some noise for edges.
			v := byte(0)
			if rng.Intn(2) == 1 {
				v = 0xFF
			}
			for k := range ch[c] {
				ch[c][k] = v
				if rng.Intn(8) == 0 {
					ch[c][k] = byte(rng.Intn(256))
				}
			}
			stream[c] = append(stream[c], ch[c]...)
		}
		require.NoError(t, a.Append(1, ch))
	}

	for c := 0; c < 2; c++ {
		want := stream[c]
		for lvl := 0; lvl < cfg.Levels; lvl++ {
			if lvl > 0 {
				var st downsample.State
				reduced, err := downsample.Generic(want, 2, &st)
				require.NoError(t, err)
				want = reduced
			}

			l := a.Level(lvl)
			v := a.Range(0, l.End(), l.ZoomOut(), false)
			assert.Equal(t, l.ZoomOut(), v.ZoomOut())
			assert.Equal(t, want, channelBytes(t, v, c), "channel %d level %d", c, lvl)
			assert.Equal(t, bits.SampleIdx(len(want)*8*l.ZoomOut()), l.End())
		}
	}
}

func TestLevels_Analog(t *testing.T) {
	t.Parallel()

	a := newArray(t, Config{ChannelsNumber: 1, Levels: 2, ZoomOutPerLevel: 2, BlockSizeB: 4, BlockSizeMultiplier: 1})
	require.NoError(t, a.Append(8, [][]byte{{1, 5, 9, 2}}))
	require.NoError(t, a.Append(8, [][]byte{{0, 0, 7, 8}}))

	assert.Equal(t, bits.SampleNum(8), a.ChannelLength())

	v := a.Range(0, 8, 2, false)
	assert.Equal(t, 2, v.ZoomOut())
	assert.Equal(t, uint8(8), v.BitsPerSample())
	assert.Equal(t, []byte{5, 9, 0, 8}, channelBytes(t, v, 0))
	assert.Equal(t, bits.SampleIdx(7), v.LastSampleNo())
}

// ============================================================================
// Invariants
// ============================================================================

func randomArray(t *testing.T, seed int64) *BlockArray {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	a := newArray(t, Config{ChannelsNumber: 3, Levels: 4, ZoomOutPerLevel: 4, BlockSizeB: 12, BlockSizeMultiplier: 3})
	for i := 0; i < 200; i++ {
		ch := [][]byte{make([]byte, 4), make([]byte, 4), make([]byte, 4)}
		for c := range ch {
			rng.Read(ch[c])
		}
		require.NoError(t, a.Append(1, ch))
	}
	return a
}

func TestIndexConsistency(t *testing.T) {
	t.Parallel()

	a := randomArray(t, 11)
	for i := 0; i < a.LevelsNumber(); i++ {
		l := a.Level(i)
		keys := l.Keys()
		require.Len(t, keys, l.Len(), "level %d", i)
		require.NotZero(t, l.Len(), "level %d", i)

		for k := 1; k < len(keys); k++ {
			assert.Less(t, keys[k-1], keys[k], "level %d key %d", i, k)
		}
		for k, b := range l.blocks {
			assert.Equal(t, keys[k], b.LastSampleNo())
		}
	}
}

func TestRange_Invariants(t *testing.T) {
	t.Parallel()

	a := randomArray(t, 23)
	rng := rand.New(rand.NewSource(5))
	total := bits.SampleIdx(a.ChannelLength())

	for i := 0; i < 500; i++ {
		begin := bits.SampleIdx(rng.Int63n(int64(total) + 64))
		end := begin + bits.SampleIdx(rng.Int63n(4096))
		hint := 1 << rng.Intn(8)

		v := a.Range(begin, end, hint, false)
		if begin == end {
			require.True(t, v.Empty())
			continue
		}

		level := a.levelFor(hint)
		if begin > level.End()-1 {
			require.True(t, v.Empty(), "begin %d past level end %d", begin, level.End())
			continue
		}
		require.False(t, v.Empty())

		blocks := v.Blocks()
		for k := 1; k < len(blocks); k++ {
			require.Equal(t, blocks[k-1].LastSampleNo()+1, blocks[k].FirstSampleNo())
		}

		assert.LessOrEqual(t, v.FirstSampleNo(), begin)
		assert.GreaterOrEqual(t, v.LastSampleNo(), min(end, level.End()-1))
	}
}

func TestView_StableAcrossAppends(t *testing.T) {
	t.Parallel()

	a := newArray(t, fourChannels(2, 2, 1))
	appendBlocks(t, a, 1, 0)

	v := a.Range(0, 32, 2, false)
	before := channelBytes(t, v, 0)

	appendBlocks(t, a, 1, 1, 2, 3)
	assert.Equal(t, before, channelBytes(t, v, 0))
	assert.Equal(t, bits.SampleIdx(31), v.LastSampleNo())

	a.Clear()
	assert.Equal(t, before, channelBytes(t, v, 0))
}

// ============================================================================
// Flush and Clear
// ============================================================================

func TestFlush(t *testing.T) {
	t.Parallel()

	a := newArray(t, fourChannels(1, 2, 4))
	appendBlocks(t, a, 1, 0)
	assert.True(t, a.Range(0, 32, 1, false).Empty())

	require.NoError(t, a.Flush())
	assert.Equal(t, bits.SampleNum(32), a.ChannelLength())
	assert.Equal(t, []byte{0, 1, 2, 3}, channelBytes(t, a.Range(0, 32, 1, false), 0))

	require.NoError(t, a.Flush())
	assert.Equal(t, bits.SampleNum(32), a.ChannelLength())

	// The short tail keeps growing until it reaches a full commit.
	appendBlocks(t, a, 1, 1, 2, 3, 4)
	assert.Equal(t, 1, a.Level(0).Len())
	assert.Equal(t, bits.SampleNum(160), a.ChannelLength())
}

func TestClear(t *testing.T) {
	t.Parallel()

	a := newArray(t, fourChannels(3, 2, 2))
	appendBlocks(t, a, 1, 0, 1, 2)
	a.Clear()

	assert.Equal(t, bits.SampleNum(0), a.ChannelLength())
	assert.Equal(t, 0, a.PendingBytes())
	assert.Equal(t, 4, a.ChannelsNumber())
	for i := 0; i < a.LevelsNumber(); i++ {
		assert.Zero(t, a.Level(i).Len())
		assert.Zero(t, a.Level(i).Bytes())
	}
	assert.True(t, a.Range(0, 96, 1, false).Empty())

	appendBlocks(t, a, 1, 0, 1)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7}, channelBytes(t, a.Range(0, 64, 1, false), 0))
}
