package codec

import (
	"bytes"
	"fmt"

	"github.com/pierrec/lz4"
)

// lz4Codec uses the LZ4 frame format.
type lz4Codec struct{}

func (lz4Codec) Name() string { return LZ4 }

func (lz4Codec) Compress(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst[:0])
	w := lz4.NewWriter(buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decompress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst[:0], nil
	}

	buf := bytes.NewBuffer(dst[:0])
	r := lz4.NewReader(bytes.NewReader(src))
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
	}
	return buf.Bytes(), nil
}
