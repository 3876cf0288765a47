package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for capture spans.
const (
	AttrSessionID = "capture.session_id"
	AttrSource    = "capture.source"
	AttrMode      = "capture.mode"
	AttrCodec     = "capture.codec"
	AttrEncoding  = "capture.encoding"
	AttrOperation = "capture.operation"
	AttrBytes     = "capture.block.bytes"
	AttrOverruns  = "capture.block.overruns"
	AttrDiscarded = "capture.discarded"

	AttrGroup    = "storage.group"
	AttrChannels = "storage.channels"
	AttrLevels   = "storage.levels"
	AttrSamples  = "storage.samples"
)

func SessionID(id string) attribute.KeyValue { return attribute.String(AttrSessionID, id) }

func Source(name string) attribute.KeyValue { return attribute.String(AttrSource, name) }

func Mode(mode string) attribute.KeyValue { return attribute.String(AttrMode, mode) }

func Codec(name string) attribute.KeyValue { return attribute.String(AttrCodec, name) }

func Encoding(name string) attribute.KeyValue { return attribute.String(AttrEncoding, name) }

func Bytes(n int) attribute.KeyValue { return attribute.Int(AttrBytes, n) }

func Overruns(n uint64) attribute.KeyValue { return attribute.Int64(AttrOverruns, int64(n)) }

func Discarded(n uint64) attribute.KeyValue { return attribute.Int64(AttrDiscarded, int64(n)) }

func Group(g int) attribute.KeyValue { return attribute.Int(AttrGroup, g) }

func Channels(n int) attribute.KeyValue { return attribute.Int(AttrChannels, n) }

func Levels(n int) attribute.KeyValue { return attribute.Int(AttrLevels, n) }

func Samples(n uint64) attribute.KeyValue { return attribute.Int64(AttrSamples, int64(n)) }

// StartSessionSpan starts the long-lived span of an acquisition session.
func StartSessionSpan(ctx context.Context, sessionID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{SessionID(sessionID)}, attrs...)
	return StartSpan(ctx, "capture.session", trace.WithAttributes(all...))
}

// StartBlockSpan starts a span around one pipeline stage of a raw block,
// named capture.<operation>.
func StartBlockSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{attribute.String(AttrOperation, operation)}, attrs...)
	return StartSpan(ctx, "capture."+operation, trace.WithAttributes(all...))
}
