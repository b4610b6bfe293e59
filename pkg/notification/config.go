package notification

import (
	"log/slog"
	"strings"
	"time"

	smtp_client "github.com/saladoop/shift-report-backend/pkg/smtp-client"
)

type RelayConfig struct {
	SlackWebhookURL string        `yaml:"slack_webhook_url"`
	CountOnlyPhotos bool          `yaml:"count_only_photos"`
	WebhookTimeout  time.Duration `yaml:"webhook_timeout"`

	// fixed recipient of the report email
	BossEmail   string                     `yaml:"boss_email"`
	SmtpServers smtp_client.SmtpServerList `yaml:"smtp_servers"`
}

// NewRelayFromConfig wires the configured channels. Missing channels are reported as
// ConfigError at delivery time, not here.
func NewRelayFromConfig(conf RelayConfig) (relay *Relay, closeFn func()) {
	opts := RelayOptions{
		Recipient:       strings.TrimSpace(conf.BossEmail),
		CountOnlyPhotos: conf.CountOnlyPhotos,
	}
	closeFn = func() {}

	if conf.SlackWebhookURL != "" {
		opts.Webhook = NewSlackWebhook(conf.SlackWebhookURL, conf.WebhookTimeout)
	} else {
		slog.Warn("slack webhook URL not configured, slack notifications will be skipped")
	}

	if conf.SmtpServers.IsConfigured() {
		servers := conf.SmtpServers
		if !strings.Contains(servers.From, "<") {
			servers.From = SenderAddress(servers.From)
		}
		clients, err := smtp_client.NewSmtpClients(servers)
		if err != nil {
			slog.Error("failed to init smtp clients, email notifications will be skipped", slog.String("error", err.Error()))
		} else {
			opts.Email = clients
			closeFn = clients.Close
		}
	} else {
		slog.Warn("smtp servers not configured, email notifications will be skipped")
	}

	return NewRelay(opts), closeFn
}
