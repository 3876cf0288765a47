package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

// recordSpans routes the package tracer to an in-memory recorder for the
// duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	SetTracerProvider(tp)
	t.Cleanup(func() {
		setTracer(noop.NewTracerProvider().Tracer(instrumentationName), false)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrsOf(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

// ============================================================================
// Setup
// ============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "logiclink", cfg.ServiceName)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.False(t, IsEnabled())
	assert.NotNil(t, Tracer())
	assert.NoError(t, shutdown(context.Background()))
}

func TestNoOpSpans(t *testing.T) {
	_, err := Init(context.Background(), DefaultConfig())
	require.NoError(t, err)

	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
	assert.Empty(t, TraceID(ctx))
	assert.Empty(t, SpanID(ctx))

	// None of these may panic without a real span.
	AddEvent(ctx, "event", Bytes(1))
	RecordError(ctx, errors.New("boom"))
	RecordError(ctx, nil)
	SetAttributes(ctx, Group(0))
}

func TestNewSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), newSampler(1).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), newSampler(2).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), newSampler(0).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), newSampler(0.25).Description())
}

// ============================================================================
// Capture spans
// ============================================================================

func TestStartSessionSpan(t *testing.T) {
	sr := recordSpans(t)
	assert.True(t, IsEnabled())

	ctx, span := StartSessionSpan(context.Background(), "abc", Mode("discard"), Codec("lz4"))
	assert.NotEmpty(t, TraceID(ctx))
	assert.NotEmpty(t, SpanID(ctx))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "capture.session", ended[0].Name())

	attrs := attrsOf(ended[0])
	assert.Equal(t, "abc", attrs[AttrSessionID].AsString())
	assert.Equal(t, "discard", attrs[AttrMode].AsString())
	assert.Equal(t, "lz4", attrs[AttrCodec].AsString())
}

func TestStartBlockSpan(t *testing.T) {
	sr := recordSpans(t)

	ctx, session := StartSessionSpan(context.Background(), "s1")
	_, block := StartBlockSpan(ctx, "store", Group(1), Bytes(4096), Channels(8))
	block.End()
	session.End()

	ended := sr.Ended()
	require.Len(t, ended, 2)

	b := ended[0]
	assert.Equal(t, "capture.store", b.Name())
	assert.Equal(t, ended[1].SpanContext().SpanID(), b.Parent().SpanID())

	attrs := attrsOf(b)
	assert.Equal(t, "store", attrs[AttrOperation].AsString())
	assert.Equal(t, int64(1), attrs[AttrGroup].AsInt64())
	assert.Equal(t, int64(4096), attrs[AttrBytes].AsInt64())
	assert.Equal(t, int64(8), attrs[AttrChannels].AsInt64())
}

func TestRecordError(t *testing.T) {
	sr := recordSpans(t)

	ctx, span := StartBlockSpan(context.Background(), "decompress")
	RecordError(ctx, errors.New("corrupt frame"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "corrupt frame", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestEventsAndAttributes(t *testing.T) {
	sr := recordSpans(t)

	ctx, span := StartSessionSpan(context.Background(), "s2")
	AddEvent(ctx, "overrun", Overruns(3))
	SetAttributes(ctx, Discarded(7), Samples(1024), Levels(3))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "overrun", ended[0].Events()[0].Name)

	attrs := attrsOf(ended[0])
	assert.Equal(t, int64(7), attrs[AttrDiscarded].AsInt64())
	assert.Equal(t, int64(1024), attrs[AttrSamples].AsInt64())
	assert.Equal(t, int64(3), attrs[AttrLevels].AsInt64())
}

// ============================================================================
// Profiling
// ============================================================================

func TestParseProfileType(t *testing.T) {
	tests := []struct {
		name    string
		want    pyroscope.ProfileType
		wantErr bool
	}{
		{"cpu", pyroscope.ProfileCPU, false},
		{"inuse_space", pyroscope.ProfileInuseSpace, false},
		{"mutex_duration", pyroscope.ProfileMutexDuration, false},
		{"heap", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProfileType(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{})
	require.NoError(t, err)
	assert.False(t, IsProfilingEnabled())
	assert.NoError(t, shutdown())
}

func TestInitProfilingInvalidType(t *testing.T) {
	_, err := InitProfiling(ProfilingConfig{Enabled: true, ProfileTypes: []string{"bogus"}})
	assert.Error(t, err)
}
