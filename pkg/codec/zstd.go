package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var zstdEncoders = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedFastest),
		)
		if err != nil {
			panic(err)
		}
		return enc
	},
}

var zstdDecoders = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
		)
		if err != nil {
			panic(err)
		}
		return dec
	},
}

// zstdCodec uses zstd frames with pooled encoders and decoders.
type zstdCodec struct{}

func (zstdCodec) Name() string { return Zstd }

func (zstdCodec) Compress(dst, src []byte) ([]byte, error) {
	enc := zstdEncoders.Get().(*zstd.Encoder)
	out := enc.EncodeAll(src, dst[:0])
	zstdEncoders.Put(enc)
	return out, nil
}

func (zstdCodec) Decompress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst[:0], nil
	}

	dec := zstdDecoders.Get().(*zstd.Decoder)
	out, err := dec.DecodeAll(src, dst[:0])
	zstdDecoders.Put(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
	}
	return out, nil
}
