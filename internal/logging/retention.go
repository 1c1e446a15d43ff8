package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const logDateLayout = "2006-01-02"

// PruneLogs deletes daily log files in dir dated more than retentionDays
// before now. The date comes from the file name, so today's file always
// survives. Zero retention keeps everything. Removed paths are returned in
// directory order.
func PruneLogs(logger *slog.Logger, dir string, retentionDays int, now time.Time) []string {
	if retentionDays <= 0 || strings.TrimSpace(dir) == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	y, m, d := now.Date()
	cutoff := time.Date(y, m, d-retentionDays, 0, 0, 0, 0, time.UTC)

	var removed []string
	for _, entry := range entries {
		day, ok := logFileDate(entry)
		if !ok || !day.Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "could not prune old log file", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on log_dir"),
			)
			continue
		}
		removed = append(removed, path)
	}
	if logger != nil && len(removed) > 0 {
		logger.Debug("old logs pruned", Int("count", len(removed)), String(FieldEventType, "log_pruned"))
	}
	return removed
}

func logFileDate(entry os.DirEntry) (time.Time, bool) {
	if entry.IsDir() {
		return time.Time{}, false
	}
	stem, ok := strings.CutSuffix(entry.Name(), ".log")
	if !ok {
		return time.Time{}, false
	}
	stamp, ok := strings.CutPrefix(stem, LogFilePrefix)
	if !ok {
		return time.Time{}, false
	}
	day, err := time.Parse(logDateLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
