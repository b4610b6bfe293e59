package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/saladoop/shift-report-backend/pkg/db/reports"
	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
)

const DEFAULT_CLAIM_LOCK_DURATION = 5 * time.Minute

type NotificationStore interface {
	ClaimReportForNotification(reportID string, lockDuration time.Duration) (reportTypes.Report, error)
	SaveNotificationOutcome(reportID string, slack reportTypes.ChannelOutcome, email reportTypes.ChannelOutcome) error
}

// Notifier delivers stored reports at most once across relay instances.
type Notifier struct {
	store        NotificationStore
	relay        *Relay
	lockDuration time.Duration
}

func NewNotifier(store NotificationStore, relay *Relay, lockDuration time.Duration) *Notifier {
	if lockDuration <= 0 {
		lockDuration = DEFAULT_CLAIM_LOCK_DURATION
	}
	return &Notifier{
		store:        store,
		relay:        relay,
		lockDuration: lockDuration,
	}
}

// NotifyReport claims, renders and delivers one stored report and records the outcome.
// A report that is already notified or claimed elsewhere is skipped without error.
func (n *Notifier) NotifyReport(ctx context.Context, reportID string) error {
	report, err := n.store.ClaimReportForNotification(reportID, n.lockDuration)
	if err != nil {
		if errors.Is(err, reports.ErrNotClaimable) {
			slog.Debug("report already notified or claimed", slog.String("reportID", reportID))
			return nil
		}
		return err
	}

	rendered, err := n.relay.Render(PayloadFromReport(report))
	if err != nil {
		slog.Error("failed to render report notification", slog.String("reportID", reportID), slog.String("error", err.Error()))
		failed := reportTypes.ChannelOutcome{
			Status: reportTypes.CHANNEL_STATUS_FAILED,
			Error:  err.Error(),
			At:     time.Now().Unix(),
		}
		if saveErr := n.store.SaveNotificationOutcome(reportID, failed, failed); saveErr != nil {
			slog.Error("failed to save notification outcome", slog.String("reportID", reportID), slog.String("error", saveErr.Error()))
		}
		return err
	}

	result := n.relay.Deliver(ctx, rendered)
	if err := n.store.SaveNotificationOutcome(reportID, result.Slack, result.Email); err != nil {
		slog.Error("failed to save notification outcome", slog.String("reportID", reportID), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// DispatchReport queues NotifyReport for reportID on d.
func (n *Notifier) DispatchReport(d *Dispatcher, reportID string) bool {
	return d.Submit("notify:"+reportID, func(ctx context.Context) {
		if err := n.NotifyReport(ctx, reportID); err != nil {
			slog.Error("report notification failed", slog.String("reportID", reportID), slog.String("error", err.Error()))
		}
	})
}
