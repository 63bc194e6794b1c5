package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookdetector/internal/config"
)

// PruneDailyLogs removes daily log files in dir whose date stamp falls more
// than retentionDays calendar days before now. Age comes from the file name,
// not the modification time, so today's file is never pruned and files
// without a parseable stamp are left alone. A retentionDays value of 0
// disables pruning. It returns the number of files removed.
func PruneDailyLogs(logger *slog.Logger, dir string, retentionDays int, now time.Time) int {
	dir = strings.TrimSpace(dir)
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	if logger == nil {
		logger = NewNop()
	}
	now = now.Local()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local).AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, entry := range entries {
		day, ok := dailyLogDate(entry)
		if !ok || !day.Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
		logger.Debug("log pruned",
			String("path", path),
			String("log_date", day.Format(config.LogFileDateLayout)),
			String(FieldEventType, "log_pruned"),
		)
	}
	return removed
}

func dailyLogDate(entry os.DirEntry) (time.Time, bool) {
	if entry.IsDir() {
		return time.Time{}, false
	}
	stamp, ok := strings.CutPrefix(entry.Name(), config.LogFilePrefix)
	if !ok {
		return time.Time{}, false
	}
	stamp, ok = strings.CutSuffix(stamp, config.LogFileSuffix)
	if !ok {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(config.LogFileDateLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
