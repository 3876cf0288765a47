// Package codec compresses and decompresses raw blocks. Devices, or the
// transport in front of them, may ship raw blocks compressed to save bus
// bandwidth; the acquisition session decompresses them before rearranging.
package codec

import (
	"errors"
	"fmt"
	"slices"
)

// Names of the supported codecs.
const (
	None = "none"
	LZ4  = "lz4"
	Zstd = "zstd"
)

var (
	// ErrUnknownCodec is returned by Get for an unsupported name.
	ErrUnknownCodec = errors.New("unknown codec")

	// ErrCorrupt wraps decompression failures.
	ErrCorrupt = errors.New("corrupt compressed block")
)

// Codec converts raw blocks to and from their compressed form.
type Codec interface {
	// Name returns the configuration name of the codec.
	Name() string

	// Compress appends the compressed form of src to dst[:0].
	Compress(dst, src []byte) ([]byte, error)

	// Decompress appends the decompressed form of src to dst[:0]. The
	// none codec returns src itself.
	Decompress(dst, src []byte) ([]byte, error)
}

var codecs = map[string]Codec{
	None: noneCodec{},
	LZ4:  lz4Codec{},
	Zstd: zstdCodec{},
}

// Get returns the codec registered under name. An empty name selects None.
func Get(name string) (Codec, error) {
	if name == "" {
		name = None
	}
	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// Names returns the supported codec names, sorted.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for n := range codecs {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

type noneCodec struct{}

func (noneCodec) Name() string { return None }

func (noneCodec) Compress(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}

func (noneCodec) Decompress(_, src []byte) ([]byte, error) {
	return src, nil
}
