// Package acquisition runs capture sessions: a transport pushes raw blocks
// into a Queue, and the session consumer decompresses, rearranges and
// stores them in a backend group.
package acquisition

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/logiclink/logiclink/internal/logger"
	"github.com/logiclink/logiclink/internal/telemetry"
	"github.com/logiclink/logiclink/pkg/bits"
	"github.com/logiclink/logiclink/pkg/bufpool"
	"github.com/logiclink/logiclink/pkg/codec"
	"github.com/logiclink/logiclink/pkg/metrics"
	"github.com/logiclink/logiclink/pkg/params"
	"github.com/logiclink/logiclink/pkg/rearrange"
)

// ErrAlreadyRun is returned when Run is called on a session more than once.
var ErrAlreadyRun = errors.New("session already run")

// Store is where a session puts rearranged samples.
type Store interface {
	Append(group int, bitsPerSample uint8, channels [][]byte) error
	Flush(group int) error
	ChannelLength(group int) (bits.SampleNum, error)
}

// Config describes a session.
type Config struct {
	Acquisition params.Acquisition

	// Codec names the compression of raw blocks; see package codec.
	Codec string

	// Group is the backend group receiving the samples.
	Group int
}

// Option customises a Session.
type Option func(*Session)

// WithMetrics reports session activity to m.
func WithMetrics(m metrics.AcquisitionMetrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithCheck installs a check. Several calls install several checks.
func WithCheck(c Check) Option {
	return func(s *Session) { s.checks = append(s.checks, c) }
}

// WithRelease sets the function receiving raw buffers once the session is
// done with them. The default returns them to the global bufpool.
func WithRelease(release func([]byte)) Option {
	return func(s *Session) { s.release = release }
}

// Session consumes raw blocks from its queue until stopped or drained.
type Session struct {
	id        string
	cfg       Config
	store     Store
	queue     *Queue
	rearrange rearrange.Func
	codec     codec.Codec
	checks    Checks
	metrics   metrics.AcquisitionMetrics
	release   func([]byte)
	ran       atomic.Bool

	mu    sync.Mutex
	stats Stats
}

// New creates a session writing to group cfg.Group of store.
func New(cfg Config, store Store, opts ...Option) (*Session, error) {
	if err := cfg.Acquisition.Validate(); err != nil {
		return nil, err
	}
	fn, err := rearrange.Select(cfg.Acquisition)
	if err != nil {
		return nil, err
	}
	c, err := codec.Get(cfg.Codec)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:        uuid.NewString(),
		cfg:       cfg,
		store:     store,
		rearrange: fn,
		codec:     c,
		release:   bufpool.Put,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = NewQueue(s.dropped)
	return s, nil
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// Queue returns the queue the transport pushes into.
func (s *Session) Queue() *Queue { return s.queue }

// Stop ends Run without processing the blocks still queued.
func (s *Session) Stop() { s.queue.Stop() }

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	st := s.stats
	s.mu.Unlock()

	st.Discarded = s.queue.Discarded()
	return st
}

func (s *Session) mode() params.Mode {
	if s.cfg.Acquisition.Mode == "" {
		return params.ModeKeepAll
	}
	return s.cfg.Acquisition.Mode
}

// Run consumes blocks until the queue is stopped, closed and drained, or
// ctx is cancelled. A failure to rearrange or store a block stops the
// session and is returned. Blocks that fail to decompress are counted and
// skipped.
func (s *Session) Run(ctx context.Context) error {
	if !s.ran.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}

	acq := s.cfg.Acquisition
	ctx, span := telemetry.StartSessionSpan(ctx, s.id,
		telemetry.Mode(string(s.mode())),
		telemetry.Codec(s.codec.Name()),
		telemetry.Encoding(encodingName(acq)),
		telemetry.Group(s.cfg.Group),
		telemetry.Channels(acq.Channels()),
	)
	defer span.End()

	lc := logger.NewLogContext(s.id).
		WithGroup(s.cfg.Group).
		WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
	ctx = logger.WithContext(ctx, lc)

	stopOnCancel := context.AfterFunc(ctx, s.queue.Stop)
	defer stopOnCancel()

	s.mu.Lock()
	s.stats.Start = time.Now()
	s.mu.Unlock()

	logger.InfoCtx(ctx, "Acquisition started",
		logger.KeyMode, string(s.mode()),
		logger.KeyEncoding, encodingName(acq),
		logger.KeyCodec, s.codec.Name(),
		logger.Channels(acq.Channels()))

	s.checks.Start()

	var runErr error
	for {
		raw, ok := s.queue.Next(s.mode())
		if !ok {
			break
		}
		if err := s.process(ctx, raw); err != nil {
			runErr = err
			s.queue.Stop()
			break
		}
	}

	if runErr == nil {
		if err := s.store.Flush(s.cfg.Group); err != nil {
			runErr = fmt.Errorf("flush: %w", err)
		}
	}

	s.checks.Stop()

	s.mu.Lock()
	s.stats.Stop = time.Now()
	s.mu.Unlock()
	st := s.Stats()

	if runErr != nil {
		telemetry.RecordError(ctx, runErr)
		logger.ErrorCtx(ctx, "Acquisition failed", logger.Err(runErr))
		return runErr
	}

	telemetry.SetAttributes(ctx,
		telemetry.Discarded(st.Discarded),
		telemetry.Overruns(st.Overruns),
		telemetry.Samples(st.Samples))
	logger.InfoCtx(ctx, "Acquisition finished",
		logger.Blocks(st.Blocks),
		logger.KeyDiscarded, st.Discarded,
		logger.KeyOverruns, st.Overruns,
		logger.Samples(st.Samples),
		logger.KeyThroughputMbps, st.Mbps(),
		logger.DurationMs(float64(st.Duration().Microseconds())/1000))
	return nil
}

func (s *Session) process(ctx context.Context, raw RawBlock) error {
	defer s.release(raw.Data)

	s.recordTransport(raw)
	if len(raw.Data) == 0 {
		return nil
	}

	start := time.Now()
	ctx, span := telemetry.StartBlockSpan(ctx, "block",
		telemetry.Bytes(len(raw.Data)),
		telemetry.Group(s.cfg.Group))
	defer span.End()

	data, err := s.codec.Decompress(nil, raw.Data)
	if err != nil {
		metrics.RecordError(s.metrics, "decompress")
		telemetry.RecordError(ctx, err)
		logger.WarnCtx(ctx, "Dropping corrupt block", logger.Bytes(len(raw.Data)), logger.Err(err))
		s.mu.Lock()
		s.stats.Corrupt++
		s.mu.Unlock()
		return nil
	}

	s.checks.OnRaw(RawBlock{Data: data, Overruns: raw.Overruns, Throughput: raw.Throughput})

	samples, err := s.rearrange(data)
	if err != nil {
		metrics.RecordError(s.metrics, "rearrange")
		return fmt.Errorf("rearrange: %w", err)
	}

	if err := s.store.Append(s.cfg.Group, samples.BitsPerSample, samples.Channels); err != nil {
		metrics.RecordError(s.metrics, "store")
		return fmt.Errorf("store: %w", err)
	}

	n := uint64(samples.Len()) * 8 / uint64(max(samples.BitsPerSample, 1))
	s.mu.Lock()
	first := bits.SampleIdx(s.stats.Samples)
	s.stats.Samples += n
	s.stats.Bytes += uint64(len(raw.Data))
	s.stats.Blocks++
	s.mu.Unlock()

	s.checks.OnSamples(Samples{Samples: samples, Group: s.cfg.Group, First: first})

	metrics.ObserveBlock(s.metrics, len(raw.Data), time.Since(start))
	if s.metrics != nil {
		s.metrics.SetQueueDepth(s.queue.Len())
		if length, err := s.store.ChannelLength(s.cfg.Group); err == nil {
			s.metrics.SetChannelLength(s.cfg.Group, uint64(length))
		}
	}

	logger.DebugCtx(ctx, "Block stored",
		logger.Bytes(len(raw.Data)),
		logger.Samples(n),
		logger.DurationMs(float64(time.Since(start).Microseconds())/1000))
	return nil
}

// recordTransport accounts for what the transport reported with a block,
// whether or not the block is processed. Overruns is the transport's own
// running total; the session keeps the latest value.
func (s *Session) recordTransport(raw RawBlock) {
	var added uint64
	s.mu.Lock()
	if raw.Overruns > s.stats.Overruns {
		added = raw.Overruns - s.stats.Overruns
		s.stats.Overruns = raw.Overruns
	}
	if raw.Throughput > 0 {
		s.stats.Throughput = raw.Throughput
	}
	s.mu.Unlock()

	if added > 0 {
		metrics.RecordOverruns(s.metrics, added)
	}
	if s.metrics != nil && raw.Throughput > 0 {
		s.metrics.SetThroughput(raw.Throughput)
	}
}

func (s *Session) dropped(raw RawBlock) {
	s.recordTransport(raw)
	metrics.RecordDiscarded(s.metrics, 1)
	s.release(raw.Data)
}

func encodingName(a params.Acquisition) string {
	if a.Digital() {
		if a.DigitalEncoding == "" {
			return string(params.EncodingFlexio)
		}
		return string(a.DigitalEncoding)
	}
	if a.AnalogEncoding == "" {
		return string(params.EncodingAnalog8Bit)
	}
	return string(a.AnalogEncoding)
}
