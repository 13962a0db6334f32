package progress

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the minimum time between two progress lines.
const DefaultInterval = time.Second

// LogReporter logs download progress at most once per interval, plus a
// final line when the transfer completes. It can be reused across
// transfers; Finish resets it.
type LogReporter struct {
	logger   *slog.Logger
	interval time.Duration

	mu        sync.Mutex
	started   bool
	startTime time.Time
	lastLog   time.Time
	done      int64
	total     int64
}

// NewLogReporter returns a LogReporter. A nil logger falls back to
// slog.Default().
func NewLogReporter(logger *slog.Logger, interval time.Duration) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogReporter{logger: logger, interval: interval}
}

func (r *LogReporter) OnProgress(done, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if !r.started {
		r.started = true
		r.startTime = now
	}
	r.done, r.total = done, total

	if now.Sub(r.lastLog) >= r.interval {
		r.lastLog = now
		r.log("downloading")
	}
}

// Finish logs the outcome of the transfer and resets the reporter.
func (r *LogReporter) Finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		if err != nil {
			r.log("download aborted", "error", err)
		} else {
			r.log("download complete")
		}
	}

	r.started = false
	r.lastLog = time.Time{}
	r.done, r.total = 0, 0
}

func (r *LogReporter) log(msg string, extra ...any) {
	elapsed := time.Since(r.startTime)

	pct := "unknown"
	if r.total > 0 {
		pct = fmt.Sprintf("%.1f%%", float64(r.done)/float64(r.total)*100)
	}

	var mbps float64
	if secs := elapsed.Seconds(); secs > 0 {
		mbps = float64(r.done) / secs / (1024 * 1024)
	}

	attrs := []any{
		"progress", pct,
		"elapsed", elapsed.Round(time.Millisecond),
		"transferred", r.done,
		"total", r.total,
		"mbps", fmt.Sprintf("%.2f", mbps),
	}
	r.logger.Info(msg, append(attrs, extra...)...)
}
