package logger

import (
	"log/slog"
)

// Standard field keys for structured logging. Use them consistently so
// captures can be correlated across log lines.
const (
	// Tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Session
	KeySessionID = "session_id"
	KeySource    = "source"    // producer: demo, usb
	KeyMode      = "mode"      // queue drain mode: keep_all, discard
	KeyEncoding  = "encoding"  // wire encoding of the channels
	KeyCodec     = "codec"     // raw block compression
	KeyOperation = "operation" // pipeline stage: decompress, rearrange, append

	// Storage
	KeyGroup      = "group"
	KeyChannel    = "channel"
	KeyChannels   = "channels"
	KeyLevel      = "level"
	KeyLevels     = "levels"
	KeyZoomOut    = "zoom_out"
	KeySamples    = "samples"
	KeySampleRate = "sample_rate"

	// Throughput
	KeyBytes          = "bytes"
	KeyBlocks         = "blocks"
	KeyDiscarded      = "discarded"
	KeyOverruns       = "overruns"
	KeyQueueLen       = "queue_len"
	KeyThroughputMbps = "throughput_mbps"
	KeyDurationMs     = "duration_ms"

	// Misc
	KeyError = "error"
	KeyPath  = "path"
	KeyAddr  = "addr"
)

// TraceID returns a slog.Attr for an OpenTelemetry trace ID
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for an OpenTelemetry span ID
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

func SessionID(id string) slog.Attr { return slog.String(KeySessionID, id) }

func Source(name string) slog.Attr { return slog.String(KeySource, name) }

func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

func Group(g int) slog.Attr { return slog.Int(KeyGroup, g) }

func Channel(ch int) slog.Attr { return slog.Int(KeyChannel, ch) }

func Channels(n int) slog.Attr { return slog.Int(KeyChannels, n) }

func ZoomOut(z int) slog.Attr { return slog.Int(KeyZoomOut, z) }

func Samples(n uint64) slog.Attr { return slog.Uint64(KeySamples, n) }

func Bytes(n int) slog.Attr { return slog.Int(KeyBytes, n) }

func Blocks(n uint64) slog.Attr { return slog.Uint64(KeyBlocks, n) }

// DurationMs returns a slog.Attr for an elapsed time in milliseconds
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error. A nil error yields an empty Attr,
// which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
