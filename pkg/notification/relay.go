package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saladoop/shift-report-backend/pkg/metrics"
	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
)

const (
	CHANNEL_SLACK = "slack"
	CHANNEL_EMAIL = "email"
)

type WebhookSender interface {
	SendWebhook(ctx context.Context, body []byte) error
}

type EmailSender interface {
	SendMail(to []string, subject string, htmlContent string, textContent string) error
}

type RelayOptions struct {
	Webhook         WebhookSender
	Email           EmailSender
	Recipient       string
	CountOnlyPhotos bool
}

// Relay renders reports and delivers them to the webhook and email channels independently.
type Relay struct {
	webhook   WebhookSender
	email     EmailSender
	recipient string
	slackOpts SlackOptions
	now       func() time.Time
}

func NewRelay(opts RelayOptions) *Relay {
	return &Relay{
		webhook:   opts.Webhook,
		email:     opts.Email,
		recipient: opts.Recipient,
		slackOpts: SlackOptions{CountOnlyPhotos: opts.CountOnlyPhotos},
		now:       time.Now,
	}
}

type RenderedReport struct {
	ReportID  string
	SlackBody []byte
	Email     RenderedEmail
}

type DeliveryResult struct {
	Slack reportTypes.ChannelOutcome
	Email reportTypes.ChannelOutcome
}

// CheckWebhookConfig fails when no webhook is configured.
func (r *Relay) CheckWebhookConfig() error {
	if r.webhook == nil {
		return &ConfigError{Channel: CHANNEL_SLACK, Reason: "webhook URL missing"}
	}
	return nil
}

func (r *Relay) checkEmailConfig() error {
	if r.email == nil {
		return &ConfigError{Channel: CHANNEL_EMAIL, Reason: "smtp servers missing"}
	}
	if r.recipient == "" {
		return &ConfigError{Channel: CHANNEL_EMAIL, Reason: "recipient missing"}
	}
	return nil
}

// Render produces both channel representations. Equal payloads give byte-identical output.
func (r *Relay) Render(p ReportPayload) (*RenderedReport, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(RenderSlackMessage(p, r.slackOpts)); err != nil {
		return nil, err
	}

	email, err := RenderEmail(p)
	if err != nil {
		return nil, err
	}
	return &RenderedReport{
		ReportID:  p.ReportID,
		SlackBody: bytes.TrimSuffix(buf.Bytes(), []byte("\n")),
		Email:     email,
	}, nil
}

// Deliver sends to both channels concurrently. A failing channel never affects the other.
func (r *Relay) Deliver(ctx context.Context, rendered *RenderedReport) DeliveryResult {
	var result DeliveryResult

	var g errgroup.Group
	g.Go(func() error {
		result.Slack = r.deliverChannel(ctx, CHANNEL_SLACK, rendered.ReportID, func() error {
			if err := r.CheckWebhookConfig(); err != nil {
				return err
			}
			return r.webhook.SendWebhook(ctx, rendered.SlackBody)
		})
		return nil
	})
	g.Go(func() error {
		result.Email = r.deliverChannel(ctx, CHANNEL_EMAIL, rendered.ReportID, func() error {
			if err := r.checkEmailConfig(); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			return r.email.SendMail([]string{r.recipient}, rendered.Email.Subject, rendered.Email.HTML, rendered.Email.Text)
		})
		return nil
	})
	_ = g.Wait()

	return result
}

func (r *Relay) deliverChannel(ctx context.Context, channel string, reportID string, send func() error) reportTypes.ChannelOutcome {
	start := time.Now()
	err := send()
	metrics.NotificationDeliveryDuration.WithLabelValues(channel).Observe(time.Since(start).Seconds())

	outcome := reportTypes.ChannelOutcome{At: r.now().Unix()}

	var confErr *ConfigError
	switch {
	case err == nil:
		outcome.Status = reportTypes.CHANNEL_STATUS_SENT
		slog.Info("notification sent", slog.String("channel", channel), slog.String("reportID", reportID))
	case errors.As(err, &confErr):
		outcome.Status = reportTypes.CHANNEL_STATUS_SKIPPED
		outcome.Error = err.Error()
		slog.Warn("notification channel skipped", slog.String("channel", channel), slog.String("reportID", reportID), slog.String("error", err.Error()))
	default:
		deliveryErr := &DeliveryError{Channel: channel, Err: err}
		outcome.Status = reportTypes.CHANNEL_STATUS_FAILED
		outcome.Error = deliveryErr.Error()
		slog.Error("notification delivery failed", slog.String("channel", channel), slog.String("reportID", reportID), slog.String("error", deliveryErr.Error()))
	}
	metrics.NotificationDeliveries.WithLabelValues(channel, outcome.Status).Inc()
	return outcome
}

// Send renders and delivers one payload.
func (r *Relay) Send(ctx context.Context, p ReportPayload) (DeliveryResult, error) {
	rendered, err := r.Render(p)
	if err != nil {
		return DeliveryResult{}, err
	}
	return r.Deliver(ctx, rendered), nil
}
