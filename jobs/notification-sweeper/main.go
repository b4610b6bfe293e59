package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saladoop/shift-report-backend/pkg/notification"
)

func main() {
	slog.Info("Starting notification sweeper job")
	start := time.Now()

	defer func() {
		if err := reportsDBService.Close(); err != nil {
			slog.Error("Error closing Reports DB", slog.String("error", err.Error()))
		}
	}()

	relay, closeRelay := notification.NewRelayFromConfig(conf.Relay)
	defer closeRelay()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := notification.NewNotifier(reportsDBService, relay, conf.SweepConfig.ClaimLockDuration)
	counters := notification.NewSweeper(reportsDBService, notifier, notification.SweepOptions{
		MinAge:       conf.SweepConfig.MinAge,
		LockDuration: conf.SweepConfig.ClaimLockDuration,
		BatchSize:    conf.SweepConfig.BatchSize,
		MaxFailures:  conf.SweepConfig.MaxFailures,
	}).Run(ctx)

	slog.Info("Notification sweeper job completed",
		slog.Int("processed", counters.Processed),
		slog.Int("failed", counters.Failed),
		slog.String("duration", time.Since(start).String()),
	)
}
