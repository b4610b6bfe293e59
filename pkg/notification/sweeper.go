package notification

import (
	"context"
	"log/slog"
	"time"

	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
)

const (
	DEFAULT_SWEEP_MIN_AGE      = 2 * time.Minute
	DEFAULT_SWEEP_BATCH_SIZE   = 20
	DEFAULT_SWEEP_MAX_FAILURES = 10
)

type PendingReportSource interface {
	GetReportsPendingNotification(createdBefore time.Time, lockDuration time.Duration, limit int64) ([]reportTypes.Report, error)
}

type ReportNotifier interface {
	NotifyReport(ctx context.Context, reportID string) error
}

type SweepOptions struct {
	// reports younger than MinAge are left to the event consumer
	MinAge       time.Duration
	LockDuration time.Duration
	BatchSize    int64
	MaxFailures  int
}

type SweepCounters struct {
	Processed int
	Failed    int
}

// Sweeper notifies stored reports whose event was lost or whose delivery was interrupted.
type Sweeper struct {
	source   PendingReportSource
	notifier ReportNotifier
	opts     SweepOptions
	now      func() time.Time
}

func NewSweeper(source PendingReportSource, notifier ReportNotifier, opts SweepOptions) *Sweeper {
	if opts.MinAge <= 0 {
		opts.MinAge = DEFAULT_SWEEP_MIN_AGE
	}
	if opts.LockDuration <= 0 {
		opts.LockDuration = DEFAULT_CLAIM_LOCK_DURATION
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DEFAULT_SWEEP_BATCH_SIZE
	}
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = DEFAULT_SWEEP_MAX_FAILURES
	}
	return &Sweeper{
		source:   source,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
	}
}

// Run works through pending reports batch by batch. Claimed reports drop out of the pending
// query, so the loop ends with the first empty batch.
func (s *Sweeper) Run(ctx context.Context) SweepCounters {
	counters := SweepCounters{}
	createdBefore := s.now().Add(-s.opts.MinAge)

	for {
		if err := ctx.Err(); err != nil {
			slog.Warn("sweep interrupted", slog.String("error", err.Error()))
			return counters
		}
		if counters.Failed >= s.opts.MaxFailures {
			slog.Error("too many failed notifications, stopping sweep", slog.Int("failed", counters.Failed))
			return counters
		}

		reports, err := s.source.GetReportsPendingNotification(createdBefore, s.opts.LockDuration, s.opts.BatchSize)
		if err != nil {
			slog.Error("failed to get reports pending notification", slog.String("error", err.Error()))
			return counters
		}
		if len(reports) == 0 {
			return counters
		}

		for _, report := range reports {
			reportID := report.ID.Hex()
			if err := s.notifier.NotifyReport(ctx, reportID); err != nil {
				slog.Error("failed to notify report", slog.String("reportID", reportID), slog.String("error", err.Error()))
				counters.Failed++
				continue
			}
			counters.Processed++
		}
	}
}
