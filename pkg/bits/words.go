package bits

import (
	"encoding/binary"
	"fmt"
)

// WordSize is the size in bytes of a device word.
const WordSize = 4

// Words is a read-only view of a byte buffer as little-endian 32-bit words.
type Words struct {
	b []byte
}

// NewWords wraps b. Its length must be a multiple of WordSize.
func NewWords(b []byte) (Words, error) {
	if len(b)%WordSize != 0 {
		return Words{}, fmt.Errorf("%w: %d bytes is not a whole number of words", ErrOutOfRange, len(b))
	}
	return Words{b: b}, nil
}

// Len returns the number of words.
func (w Words) Len() int { return len(w.b) / WordSize }

// At returns word i. It panics if i is out of range.
func (w Words) At(i int) uint32 {
	if i < 0 || i >= w.Len() {
		panic(fmt.Sprintf("bits: word %d out of range [0,%d)", i, w.Len()))
	}
	return binary.LittleEndian.Uint32(w.b[i*WordSize:])
}

// Raw returns the bytes of word i.
func (w Words) Raw(i int) []byte {
	if i < 0 || i >= w.Len() {
		panic(fmt.Sprintf("bits: word %d out of range [0,%d)", i, w.Len()))
	}
	return w.b[i*WordSize : (i+1)*WordSize]
}
