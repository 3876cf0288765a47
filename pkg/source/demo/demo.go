// Package demo is a synthetic transport. It generates per-channel test
// signals, interleaves them into the device wire layout and pushes the
// result as raw blocks, so the capture pipeline runs without hardware.
package demo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/logiclink/logiclink/internal/logger"
	"github.com/logiclink/logiclink/pkg/acquisition"
	"github.com/logiclink/logiclink/pkg/bufpool"
	"github.com/logiclink/logiclink/pkg/codec"
	"github.com/logiclink/logiclink/pkg/params"
	"github.com/logiclink/logiclink/pkg/rearrange"
)

// ErrInvalidConfig is returned by New.
var ErrInvalidConfig = errors.New("invalid demo source configuration")

// Config describes the generated stream.
type Config struct {
	Acquisition params.Acquisition

	// Codec compresses every raw block; see package codec.
	Codec string

	// Generator is "square" or "random".
	Generator string

	// BlockSize is the size of one raw block in bytes before compression.
	BlockSize int

	// Blocks is the number of blocks to send before closing the sink.
	// Zero sends until the context is cancelled.
	Blocks int

	// Interval paces the blocks. Zero sends as fast as the sink accepts.
	Interval time.Duration

	// HighSamples and LowSamples shape the square wave of channel 0;
	// channel c uses c+1 times as many.
	HighSamples int
	LowSamples  int

	// Seed seeds the random generator.
	Seed int64
}

// Sink receives raw blocks. *acquisition.Queue is a Sink.
type Sink interface {
	Push(acquisition.RawBlock) bool
	Close()
}

// Source generates raw blocks.
type Source struct {
	cfg        Config
	gens       []Generator
	interleave rearrange.InterleaveFunc
	codec      codec.Codec
	perChannel int
}

// New validates cfg and prepares the generators.
func New(cfg Config) (*Source, error) {
	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidConfig, cfg.BlockSize)
	}
	if cfg.HighSamples <= 0 || cfg.LowSamples <= 0 {
		cfg.HighSamples, cfg.LowSamples = 16, 16
	}

	shape, err := rearrange.ShapeOf(cfg.Acquisition)
	if err != nil {
		return nil, err
	}
	out, err := shape.OutputBytes(cfg.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	interleave, err := rearrange.SelectInterleave(cfg.Acquisition)
	if err != nil {
		return nil, err
	}
	c, err := codec.Get(cfg.Codec)
	if err != nil {
		return nil, err
	}

	channels := cfg.Acquisition.Channels()
	gens, err := newGenerators(cfg, channels, cfg.Acquisition.BitsPerSample())
	if err != nil {
		return nil, err
	}

	return &Source{
		cfg:        cfg,
		gens:       gens,
		interleave: interleave,
		codec:      c,
		perChannel: out / channels,
	}, nil
}

// Next returns the next raw block, compressed with the configured codec
// into a pooled buffer.
func (s *Source) Next() ([]byte, error) {
	channels := make([][]byte, len(s.gens))
	for c, g := range s.gens {
		channels[c] = make([]byte, s.perChannel)
		g.Fill(channels[c])
	}

	raw, err := s.interleave(channels)
	if err != nil {
		return nil, err
	}
	return s.codec.Compress(bufpool.Get(len(raw)), raw)
}

// Run pushes blocks into sink until the configured number was sent, the
// sink refuses a block or ctx is cancelled. The sink is closed only when
// the configured number of blocks was sent.
func (s *Source) Run(ctx context.Context, sink Sink) error {
	logger.InfoCtx(ctx, "Demo source started",
		logger.Source("demo"),
		logger.KeyEncoding, string(s.cfg.Acquisition.DigitalEncoding),
		logger.Channels(len(s.gens)),
		logger.Bytes(s.cfg.BlockSize))

	var tick <-chan time.Time
	if s.cfg.Interval > 0 {
		t := time.NewTicker(s.cfg.Interval)
		defer t.Stop()
		tick = t.C
	}

	start := time.Now()
	var sent uint64
	for n := 0; s.cfg.Blocks == 0 || n < s.cfg.Blocks; n++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		data, err := s.Next()
		if err != nil {
			return fmt.Errorf("generate block %d: %w", n, err)
		}

		sent += uint64(s.cfg.BlockSize)
		if !sink.Push(acquisition.RawBlock{Data: data, Throughput: throughput(sent, start)}) {
			logger.DebugCtx(ctx, "Sink refused block, stopping demo source", logger.Blocks(uint64(n)))
			return nil
		}
	}

	sink.Close()
	logger.InfoCtx(ctx, "Demo source finished",
		logger.Blocks(uint64(s.cfg.Blocks)),
		logger.KeyThroughputMbps, throughput(sent, start)*8)
	return nil
}

// throughput returns MB/s since start.
func throughput(bytes uint64, start time.Time) float64 {
	d := time.Since(start).Seconds()
	if d <= 0 {
		return 0
	}
	return float64(bytes) / d / 1e6
}
