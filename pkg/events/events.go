package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	DEFAULT_REPORT_CREATED_SUBJECT = "shiftreport.report.created"
	DEFAULT_RELAY_QUEUE_GROUP      = "notification-relay"
)

type ReportCreated struct {
	ReportID    string    `json:"report_id"`
	ReporterUID string    `json:"reporter_uid"`
	CreatedAt   time.Time `json:"created_at"`
}

// Publisher announces stored reports to interested consumers.
type Publisher interface {
	PublishReportCreated(ctx context.Context, event ReportCreated) error
}

type NatsConfig struct {
	URL                  string        `yaml:"url"`
	Name                 string        `yaml:"name"`
	ReportCreatedSubject string        `yaml:"report_created_subject"`
	QueueGroup           string        `yaml:"queue_group"`
	ConnectTimeout       time.Duration `yaml:"connect_timeout"`
}

type NatsBus struct {
	conn       *nats.Conn
	subject    string
	queueGroup string
}

func Connect(conf NatsConfig) (*NatsBus, error) {
	if conf.URL == "" {
		conf.URL = nats.DefaultURL
	}
	if conf.ReportCreatedSubject == "" {
		conf.ReportCreatedSubject = DEFAULT_REPORT_CREATED_SUBJECT
	}
	if conf.QueueGroup == "" {
		conf.QueueGroup = DEFAULT_RELAY_QUEUE_GROUP
	}
	opts := []nats.Option{
		nats.Name(conf.Name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	}
	if conf.ConnectTimeout > 0 {
		opts = append(opts, nats.Timeout(conf.ConnectTimeout))
	}

	conn, err := nats.Connect(conf.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NatsBus{
		conn:       conn,
		subject:    conf.ReportCreatedSubject,
		queueGroup: conf.QueueGroup,
	}, nil
}

func (b *NatsBus) PublishReportCreated(ctx context.Context, event ReportCreated) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := b.conn.Publish(b.subject, data); err != nil {
		return err
	}
	return b.conn.FlushWithContext(ctx)
}

// SubscribeReportCreated delivers every event to exactly one member of the queue group.
func (b *NatsBus) SubscribeReportCreated(handler func(ReportCreated)) (*nats.Subscription, error) {
	return b.conn.QueueSubscribe(b.subject, b.queueGroup, func(msg *nats.Msg) {
		event, err := DecodeReportCreated(msg.Data)
		if err != nil {
			slog.Error("invalid report created event", slog.String("subject", msg.Subject), slog.String("error", err.Error()))
			return
		}
		handler(event)
	})
}

// Drain stops subscriptions after pending messages are handled and closes the connection.
func (b *NatsBus) Drain() error {
	return b.conn.Drain()
}

func (b *NatsBus) Close() {
	b.conn.Close()
}

func DecodeReportCreated(data []byte) (ReportCreated, error) {
	var event ReportCreated
	if err := json.Unmarshal(data, &event); err != nil {
		return event, err
	}
	if event.ReportID == "" {
		return event, fmt.Errorf("report id missing")
	}
	return event, nil
}

// NoopPublisher is used when no event bus is configured; the sweeper job picks the reports up.
type NoopPublisher struct{}

func (NoopPublisher) PublishReportCreated(context.Context, ReportCreated) error {
	return nil
}
