package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"alsdoctor/internal/config"
)

// LogFilePrefix names the daily log files written under the log directory.
const LogFilePrefix = "alsdoctor-"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// OutputPaths are file paths or the names "stdout" and "stderr".
	// Empty means stderr.
	OutputPaths []string
	// Development adds caller information regardless of level.
	Development bool
}

// New builds a logger from opts. Caller information is added at debug level.
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	addSource := opts.Development || level.Level() <= slog.LevelDebug

	w, err := openOutputs(opts.OutputPaths)
	if err != nil {
		return nil, err
	}

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		return slog.New(newConsoleHandler(w, level, addSource)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			AddSource:   addSource,
			ReplaceAttr: jsonReplaceAttr,
		})), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// jsonReplaceAttr shortens the built-in keys: "ts" in UTC RFC 3339, a
// lowercase level and "file:line" for the caller.
func jsonReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339))
	case slog.LevelKey:
		return slog.String(slog.LevelKey, strings.ToLower(a.Value.String()))
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok && src != nil {
			return slog.String("caller", fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	}
	return a
}

// NewFromConfig creates a logger writing to today's file in the configured
// log directory. With verbose set, records are also written to stderr.
func NewFromConfig(cfg *config.Config, verbose bool) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}

	var outputs []string
	if verbose {
		outputs = append(outputs, "stderr")
	}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, CurrentLogPath(cfg.Paths.LogDir, time.Now()))
	}
	if len(outputs) == 0 {
		return NewNop(), nil
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

// CurrentLogPath returns the log file used for records written at now.
func CurrentLogPath(dir string, now time.Time) string {
	return filepath.Join(dir, LogFilePrefix+now.Format(logDateLayout)+".log")
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// openOutputs opens every distinct output, creating parent directories for
// files, and fans writes out to all of them.
func openOutputs(paths []string) (io.Writer, error) {
	seen := make(map[string]bool, len(paths))
	var writers []io.Writer
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		switch p {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", p, err)
			}
			writers = append(writers, f)
		}
	}
	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}
