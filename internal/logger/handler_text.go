package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

const timeLayout = "2006-01-02 15:04:05.000"

// shortIDLen is how much of a session ID the line tag shows.
const shortIDLen = 8

// captureTag holds the fields shown in the bracketed line tag instead of
// as key=value pairs.
type captureTag struct {
	session string
	group   string
	source  string
}

// take lifts a into the tag if it is one of the tagged keys.
func (t *captureTag) take(a slog.Attr) bool {
	switch a.Key {
	case KeySessionID:
		t.session = a.Value.String()
		if len(t.session) > shortIDLen {
			t.session = t.session[:shortIDLen]
		}
	case KeyGroup:
		t.group = "g" + a.Value.String()
	case KeySource:
		t.source = a.Value.String()
	default:
		return false
	}
	return true
}

func (t captureTag) appendTo(buf []byte) []byte {
	first := true
	for _, part := range [...]string{t.session, t.group, t.source} {
		if part == "" {
			continue
		}
		if !first {
			buf = append(buf, '/')
		}
		buf = append(buf, part...)
		first = false
	}
	return buf
}

func (t captureTag) empty() bool {
	return t.session == "" && t.group == "" && t.source == ""
}

// TextHandler writes one line per record:
//
//	[2006-01-02 15:04:05.000] [INFO] [4b1e0a2c/g0/demo] message key=value
//
// Top-level session ID, group and source attributes form the bracketed tag.
// Attributes bound with WithAttrs are rendered once, when bound.
type TextHandler struct {
	level    slog.Leveler
	w        io.Writer
	mu       *sync.Mutex
	useColor bool

	prefix string // open groups, "a.b."
	tag    captureTag
	bound  []byte
}

// NewTextHandler creates a TextHandler. Color codes are written only when
// useColor is set.
func NewTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *TextHandler {
	h := &TextHandler{w: w, mu: &sync.Mutex{}, useColor: useColor}
	if opts != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled implements slog.Handler.
func (h *TextHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.level != nil {
		threshold = h.level.Level()
	}
	return level >= threshold
}

// Handle implements slog.Handler.
func (h *TextHandler) Handle(_ context.Context, r slog.Record) error {
	tag := h.tag
	var attrs []byte
	r.Attrs(func(a slog.Attr) bool {
		a.Value = a.Value.Resolve()
		if h.prefix == "" && tag.take(a) {
			return true
		}
		attrs = h.appendAttr(attrs, h.prefix, a)
		return true
	})

	label, color := levelStyle(r.Level)

	buf := make([]byte, 0, 96+len(r.Message)+len(h.bound)+len(attrs))
	buf = append(buf, '[')
	buf = r.Time.AppendFormat(buf, timeLayout)
	buf = append(buf, "] ["...)
	buf = h.paint(buf, color, label)
	buf = append(buf, ']')
	if !tag.empty() {
		buf = append(buf, " ["...)
		if h.useColor {
			buf = append(buf, colorBlue...)
		}
		buf = tag.appendTo(buf)
		if h.useColor {
			buf = append(buf, colorReset...)
		}
		buf = append(buf, ']')
	}
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)
	buf = append(buf, h.bound...)
	buf = append(buf, attrs...)
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func levelStyle(level slog.Level) (label, color string) {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG", colorGray
	case level < slog.LevelWarn:
		return "INFO", colorGreen
	case level < slog.LevelError:
		return "WARN", colorYellow
	default:
		return "ERROR", colorRed
	}
}

func (h *TextHandler) paint(buf []byte, color, s string) []byte {
	if !h.useColor {
		return append(buf, s...)
	}
	buf = append(buf, color...)
	buf = append(buf, s...)
	return append(buf, colorReset...)
}

func (h *TextHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = h.appendAttr(buf, prefix, ga)
		}
		return buf
	}

	buf = append(buf, ' ')
	buf = h.paint(buf, colorCyan, prefix+a.Key)
	buf = append(buf, '=')
	return appendValue(buf, a.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.AppendQuote(buf, s)
		}
		return append(buf, s...)
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(buf, v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339Nano)
	default:
		return fmt.Append(buf, v.Any())
	}
}

func (h *TextHandler) clone() *TextHandler {
	c := *h
	c.bound = slices.Clip(h.bound)
	return &c
}

// WithAttrs implements slog.Handler.
func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		a.Value = a.Value.Resolve()
		if c.prefix == "" && c.tag.take(a) {
			continue
		}
		c.bound = c.appendAttr(c.bound, c.prefix, a)
	}
	return c
}

// WithGroup implements slog.Handler.
func (h *TextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.prefix += name + "."
	return c
}
