package notification

import (
	"context"
	"time"

	httpclient "github.com/saladoop/shift-report-backend/pkg/http-client"
)

// SlackWebhook posts rendered block messages to an incoming webhook URL.
type SlackWebhook struct {
	client httpclient.ClientConfig
}

func NewSlackWebhook(url string, timeout time.Duration) *SlackWebhook {
	return &SlackWebhook{
		client: httpclient.ClientConfig{
			RootURL: url,
			Timeout: timeout,
		},
	}
}

func (s *SlackWebhook) SendWebhook(ctx context.Context, body []byte) error {
	_, err := s.client.PostBody(ctx, "", body, "application/json")
	return err
}
