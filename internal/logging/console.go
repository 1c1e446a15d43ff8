package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// field is one flattened attribute; group names are joined with dots.
type field struct {
	key   string
	value slog.Value
}

// consoleHandler renders a header line per record followed by one indented
// line per field:
//
//	2024-05-01 10:00:00 INFO [scan] Song.als – document analysed
//	    - health_score: 84
//
// The component and, at info and above, the document are lifted into the
// header. Later fields with the same key override earlier ones in place.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	addSource bool
	prefix    string
	fields    []field
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) *consoleHandler {
	return &consoleHandler{mu: new(sync.Mutex), w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.fields = h.collect(attrs)
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *consoleHandler) collect(attrs []slog.Attr) []field {
	out := append([]field(nil), h.fields...)
	for _, a := range attrs {
		out = appendField(out, h.prefix, a)
	}
	return out
}

func appendField(dst []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			dst = appendField(dst, inner, ga)
		}
		return dst
	}
	if a.Key == "" {
		return dst
	}
	key := prefix + a.Key
	for i := range dst {
		if dst[i].key == key {
			dst[i].value = a.Value
			return dst
		}
	}
	return append(dst, field{key: key, value: a.Value})
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var recAttrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		recAttrs = append(recAttrs, a)
		return true
	})
	fields := h.collect(recAttrs)

	var component, document string
	body := fields[:0:0]
	for _, f := range fields {
		switch {
		case f.key == FieldComponent:
			component = plainValue(f.value)
		case f.key == FieldDocument:
			document = plainValue(f.value)
			if r.Level < slog.LevelInfo {
				body = append(body, f)
			}
		default:
			body = append(body, f)
		}
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "(no message)"
	}

	var b strings.Builder
	b.WriteString(ts.Local().Format(consoleTimeLayout))
	b.WriteByte(' ')
	b.WriteString(levelName(r.Level))
	if component != "" {
		fmt.Fprintf(&b, " [%s]", component)
	}
	if document != "" {
		b.WriteByte(' ')
		b.WriteString(filepath.Base(document))
	}
	b.WriteString(" – ")
	b.WriteString(msg)
	if h.addSource {
		if src := r.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')
	for _, f := range body {
		b.WriteString("    - ")
		b.WriteString(f.key)
		b.WriteString(": ")
		b.WriteString(quotedValue(f.value))
		b.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// plainValue renders v without quoting, for header fragments.
func plainValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindTime:
		return v.Time().Local().Format(consoleTimeLayout)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

// quotedValue renders v for a field line, quoting text that would be
// ambiguous when read back: empty strings and anything with spaces, control
// characters, '=' or '"'.
func quotedValue(v slog.Value) string {
	s := plainValue(v)
	switch v.Kind() {
	case slog.KindString, slog.KindAny:
		if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
			return strconv.Quote(s)
		}
	}
	return s
}
