package bits

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOutOfRange is returned when a view would extend past its backing data.
var ErrOutOfRange = errors.New("bit range out of bounds")

// Span is a read-only, bit-addressable window over one or more byte
// buffers laid end to end. Creating a Span never copies the buffers.
type Span struct {
	chunks [][]byte
	starts []int // bit offset of each chunk within the concatenation
	offset int
	length int
}

// NewSpan returns a view of length bits of b, starting offset bits into it.
func NewSpan(b []byte, offset, length int) (Span, error) {
	return NewMultiSpan([][]byte{b}, offset, length)
}

// NewMultiSpan returns a view of length bits over the concatenation of
// chunks, starting offset bits into the first chunk.
func NewMultiSpan(chunks [][]byte, offset, length int) (Span, error) {
	if offset < 0 || length < 0 {
		return Span{}, fmt.Errorf("%w: offset %d, length %d", ErrOutOfRange, offset, length)
	}

	starts := make([]int, len(chunks))
	total := 0
	for i, c := range chunks {
		starts[i] = total
		total += len(c) * 8
	}

	if offset+length > total {
		return Span{}, fmt.Errorf("%w: %d+%d bits over %d available", ErrOutOfRange, offset, length, total)
	}

	return Span{chunks: chunks, starts: starts, offset: offset, length: length}, nil
}

// Len returns the number of bits in the view.
func (s Span) Len() int { return s.length }

// Offset returns the position of the first bit in the backing buffers.
func (s Span) Offset() int { return s.offset }

// At returns bit i of the view. It panics if i is out of range, like a
// slice index would.
func (s Span) At(i int) bool {
	if i < 0 || i >= s.length {
		panic(fmt.Sprintf("bits: index %d out of range [0,%d)", i, s.length))
	}

	pos := s.offset + i
	c := sort.Search(len(s.starts), func(k int) bool { return s.starts[k] > pos }) - 1
	rel := pos - s.starts[c]
	return s.chunks[c][rel/8]>>(7-rel%8)&1 == 1
}

// Slice returns a sub-view of length bits starting at bit offset of s.
func (s Span) Slice(offset, length int) (Span, error) {
	if offset < 0 || length < 0 || offset+length > s.length {
		return Span{}, fmt.Errorf("%w: [%d,%d) of %d", ErrOutOfRange, offset, offset+length, s.length)
	}
	return Span{chunks: s.chunks, starts: s.starts, offset: s.offset + offset, length: length}, nil
}

// Segments calls fn for each backing chunk touched by the view, in order,
// with the bit range [from, from+n) of that chunk that belongs to the view.
func (s Span) Segments(fn func(chunk []byte, from, n int)) {
	begin, end := s.offset, s.offset+s.length
	for i, c := range s.chunks {
		cBegin := s.starts[i]
		cEnd := cBegin + len(c)*8
		if cEnd <= begin || cBegin >= end || cBegin == cEnd {
			continue
		}
		from := max(begin, cBegin) - cBegin
		to := min(end, cEnd) - cBegin
		fn(c, from, to-from)
	}
}

// Bytes packs the view into a new MSB-first buffer. A trailing partial
// byte is padded with zeros.
func (s Span) Bytes() []byte {
	var p Packer
	s.Segments(func(chunk []byte, from, n int) {
		if from%8 == 0 && n%8 == 0 && p.Pending() == 0 {
			p.PushBytes(chunk[from/8 : (from+n)/8])
			return
		}
		for k := from; k < from+n; k++ {
			p.Push(chunk[k/8]>>(7-k%8)&1 == 1)
		}
	})
	return p.Flush()
}
