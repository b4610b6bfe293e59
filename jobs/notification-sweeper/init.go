package main

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/saladoop/shift-report-backend/pkg/db"
	reportsDB "github.com/saladoop/shift-report-backend/pkg/db/reports"
	"github.com/saladoop/shift-report-backend/pkg/notification"
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
)

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		ReportsDB db.DBConfigYaml `json:"reports_db" yaml:"reports_db"`
	} `json:"db_configs" yaml:"db_configs"`

	Relay notification.RelayConfig `json:"relay" yaml:"relay"`

	SweepConfig struct {
		// reports younger than this are left to the event consumer
		MinAge            time.Duration `json:"min_age" yaml:"min_age"`
		BatchSize         int64         `json:"batch_size" yaml:"batch_size"`
		ClaimLockDuration time.Duration `json:"claim_lock_duration" yaml:"claim_lock_duration"`
		MaxFailures       int           `json:"max_failures" yaml:"max_failures"`
	} `json:"sweep_config" yaml:"sweep_config"`
}

var conf config

var (
	reportsDBService *reportsDB.ReportsDBService
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

	// init db
	initDBs()
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
}

func initDBs() {
	var err error
	reportsDBService, err = reportsDB.NewReportsDBService(db.DBConfigFromYamlObj(conf.DBConfigs.ReportsDB))
	if err != nil {
		slog.Error("Error connecting to Reports DB", slog.String("error", err.Error()))
		panic(err)
	}
}
