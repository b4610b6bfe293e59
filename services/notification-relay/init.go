package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/saladoop/shift-report-backend/pkg/db"
	reportsDB "github.com/saladoop/shift-report-backend/pkg/db/reports"
	"github.com/saladoop/shift-report-backend/pkg/events"
	"github.com/saladoop/shift-report-backend/pkg/notification"
	"github.com/saladoop/shift-report-backend/pkg/ratelimit"
	smtp_client "github.com/saladoop/shift-report-backend/pkg/smtp-client"
	"github.com/saladoop/shift-report-backend/pkg/utils"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_SLACK_WEBHOOK_URL  = "SLACK_WEBHOOK_URL"
	ENV_SMTP_USERNAME      = "SMTP_USERNAME"
	ENV_SMTP_PASSWORD      = "SMTP_PASSWORD"
	ENV_BOSS_EMAIL         = "BOSS_EMAIL"
	ENV_REPORT_DB_USERNAME = "REPORT_DB_USERNAME"
	ENV_REPORT_DB_PASSWORD = "REPORT_DB_PASSWORD"
	ENV_NATS_URL           = "NATS_URL"
)

const (
	DEFAULT_SMTP_HOST        = "smtp.gmail.com"
	DEFAULT_SMTP_PORT        = "587"
	DEFAULT_MAX_PAYLOAD_SIZE = 1 << 20
)

type RelayServiceConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode      bool     `json:"debug_mode" yaml:"debug_mode"`
		Port           string   `json:"port" yaml:"port"`
		TrustedProxies []string `json:"trusted_proxies" yaml:"trusted_proxies"`
		MaxPayloadSize int64    `json:"max_payload_size" yaml:"max_payload_size"`
	} `json:"gin_config" yaml:"gin_config"`

	// keys for GET /metrics, open if empty
	MetricsApiKeys []string `json:"metrics_api_keys" yaml:"metrics_api_keys"`

	Relay notification.RelayConfig `json:"relay" yaml:"relay"`

	RateLimit struct {
		MaxRequests int           `json:"max_requests" yaml:"max_requests"`
		Window      time.Duration `json:"window" yaml:"window"`
		// count hits in the reports DB so all instances share one budget
		Shared bool `json:"shared" yaml:"shared"`
	} `json:"rate_limit" yaml:"rate_limit"`

	Dispatcher struct {
		Workers    int           `json:"workers" yaml:"workers"`
		QueueSize  int           `json:"queue_size" yaml:"queue_size"`
		JobTimeout time.Duration `json:"job_timeout" yaml:"job_timeout"`
	} `json:"dispatcher" yaml:"dispatcher"`

	ClaimLockDuration time.Duration `json:"claim_lock_duration" yaml:"claim_lock_duration"`

	// DB configs, optional: without it only the request-driven endpoint works
	DBConfigs struct {
		ReportsDB db.DBConfigYaml `json:"reports_db" yaml:"reports_db"`
	} `json:"db_configs" yaml:"db_configs"`

	NatsConfig events.NatsConfig `json:"nats" yaml:"nats"`
}

var (
	conf RelayServiceConfig

	reportsDBService *reportsDB.ReportsDBService
	limiter          ratelimit.Limiter
	natsBus          *events.NatsBus
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(conf.Logging)

	// Override secrets from environment variables
	secretsOverride()

	if conf.GinConfig.MaxPayloadSize <= 0 {
		conf.GinConfig.MaxPayloadSize = DEFAULT_MAX_PAYLOAD_SIZE
	}

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	initDBs()

	initRateLimiter()

	initEventBus()
}

func secretsOverride() {
	if webhookURL := os.Getenv(ENV_SLACK_WEBHOOK_URL); webhookURL != "" {
		conf.Relay.SlackWebhookURL = webhookURL
	}

	if bossEmail := os.Getenv(ENV_BOSS_EMAIL); bossEmail != "" {
		conf.Relay.BossEmail = bossEmail
	}

	smtpUsername := os.Getenv(ENV_SMTP_USERNAME)
	smtpPassword := os.Getenv(ENV_SMTP_PASSWORD)
	if len(conf.Relay.SmtpServers.Servers) == 0 && smtpUsername != "" {
		server := smtp_client.SmtpServer{
			Host:        DEFAULT_SMTP_HOST,
			Port:        DEFAULT_SMTP_PORT,
			Connections: 2,
		}
		conf.Relay.SmtpServers.Servers = []smtp_client.SmtpServer{server}
	}
	if conf.Relay.SmtpServers.From == "" {
		conf.Relay.SmtpServers.From = smtpUsername
	}
	for i := range conf.Relay.SmtpServers.Servers {
		server := &conf.Relay.SmtpServers.Servers[i]
		server.SetCredentials(smtpUsername, smtpPassword)

		usernameVar, passwordVar := utils.SmtpCredentialEnvVarNames(server.Host)
		server.SetCredentials(os.Getenv(usernameVar), os.Getenv(passwordVar))
	}

	if dbUsername := os.Getenv(ENV_REPORT_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.ReportsDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_REPORT_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.ReportsDB.Password = dbPassword
	}

	if natsURL := os.Getenv(ENV_NATS_URL); natsURL != "" {
		conf.NatsConfig.URL = natsURL
	}
}

func initDBs() {
	if conf.DBConfigs.ReportsDB.ConnectionStr == "" {
		slog.Warn("reports DB not configured, stored reports will not be notified")
		return
	}

	var err error
	reportsDBService, err = reportsDB.NewReportsDBService(db.DBConfigFromYamlObj(conf.DBConfigs.ReportsDB))
	if err != nil {
		slog.Error("Error connecting to Reports DB", slog.String("error", err.Error()))
		panic(err)
	}
}

func initRateLimiter() {
	if conf.RateLimit.Shared && reportsDBService != nil {
		limiter = ratelimit.NewMongoLimiter(reportsDBService, conf.RateLimit.MaxRequests, conf.RateLimit.Window)
		return
	}
	limiter = ratelimit.NewMemoryLimiter(conf.RateLimit.MaxRequests, conf.RateLimit.Window)
}

// initEventBus connects only when stored reports can be claimed; events carry nothing but the id.
func initEventBus() {
	if conf.NatsConfig.URL == "" || reportsDBService == nil {
		slog.Warn("NATS or reports DB not configured, report created events will not be consumed")
		return
	}
	if conf.NatsConfig.Name == "" {
		conf.NatsConfig.Name = "notification-relay"
	}

	var err error
	natsBus, err = events.Connect(conf.NatsConfig)
	if err != nil {
		slog.Error("Error connecting to NATS", slog.String("error", err.Error()))
		panic(err)
	}
}
