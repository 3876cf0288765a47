package downsample

import (
	"errors"
	"fmt"
)

// ErrUnsupportedWidth is returned by For for sample widths other than 1
// and 8 bits.
var ErrUnsupportedWidth = errors.New("unsupported sample width")

// Reducer reduces one channel stream block by block. Downsampler handles
// 1-bit samples and Peak handles 8-bit samples.
type Reducer interface {
	ZoomOut() int
	Apply(in []byte) ([]byte, error)
	Flush() []byte
	Reset()
}

var (
	_ Reducer = (*Downsampler)(nil)
	_ Reducer = (*Peak)(nil)
)

// For returns a fresh Reducer for samples of the given width.
func For(bitsPerSample uint8, zoomOut int) (Reducer, error) {
	switch bitsPerSample {
	case 1:
		return New(zoomOut)
	case 8:
		return NewPeak(zoomOut)
	}
	return nil, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedWidth, bitsPerSample)
}

// Peak reduces 8-bit samples by keeping the largest value of every window.
type Peak struct {
	zoomOut int
	n       int
	max     byte
}

// NewPeak returns a Peak reducer for the given factor.
func NewPeak(zoomOut int) (*Peak, error) {
	if err := checkFactor(zoomOut); err != nil {
		return nil, err
	}
	return &Peak{zoomOut: zoomOut}, nil
}

// ZoomOut returns the reduction factor.
func (p *Peak) ZoomOut() int { return p.zoomOut }

// Apply reduces the next block. An incomplete window is carried over.
func (p *Peak) Apply(in []byte) ([]byte, error) {
	out := make([]byte, 0, (p.n+len(in))/p.zoomOut)
	for _, v := range in {
		if p.n == 0 || v > p.max {
			p.max = v
		}
		p.n++
		if p.n == p.zoomOut {
			out = append(out, p.max)
			p.n = 0
		}
	}
	return out, nil
}

// Flush emits the incomplete window, if any.
func (p *Peak) Flush() []byte {
	if p.n == 0 {
		return nil
	}
	v := p.max
	p.n, p.max = 0, 0
	return []byte{v}
}

// Reset forgets any carried window.
func (p *Peak) Reset() { p.n, p.max = 0, 0 }
