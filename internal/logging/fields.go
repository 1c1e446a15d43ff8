package logging

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// Attr is re-exported so callers need not import log/slog for helpers.
type Attr = slog.Attr

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key, value string) Attr { return slog.String(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Error records err under the "error" key.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// Document records the Live Set a record is about.
func Document(path string) Attr { return slog.String(FieldDocument, path) }

// NewNop returns a logger that drops everything.
func NewNop() *slog.Logger { return slog.New(slog.DiscardHandler) }

// NewComponentLogger tags logger with component. A nil logger yields a no-op
// logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// WarnWithContext logs a warning that always carries event_type and
// error_hint, using eventType and a generic hint when attrs lack them.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	has := func(key string) bool {
		return slices.ContainsFunc(attrs, func(a Attr) bool { return a.Key == key })
	}
	if !has(FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !has(FieldErrorHint) {
		attrs = append(attrs, String(FieldErrorHint, "run with --verbose and check the log file"))
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}
