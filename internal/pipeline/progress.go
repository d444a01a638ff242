package pipeline

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// progressReporter logs extraction progress against the bag's total message
// count, at most once per interval. Purely observational.
type progressReporter struct {
	logger   *slog.Logger
	clock    clockwork.Clock
	total    int
	interval time.Duration
	last     time.Time
}

func newProgressReporter(logger *slog.Logger, clock clockwork.Clock, total int) *progressReporter {
	return &progressReporter{
		logger:   logger,
		clock:    clock,
		total:    total,
		interval: time.Second,
	}
}

func (r *progressReporter) advance(consumed int) {
	now := r.clock.Now()
	if !r.last.IsZero() && now.Sub(r.last) < r.interval {
		return
	}
	r.last = now
	r.log(consumed)
}

func (r *progressReporter) finish(consumed int) {
	r.log(consumed)
}

func (r *progressReporter) log(consumed int) {
	if r.total > 0 {
		r.logger.Info("extraction progress",
			"consumed", consumed,
			"total", r.total,
			"percent", 100*consumed/r.total,
		)
		return
	}
	r.logger.Info("extraction progress", "consumed", consumed)
}
