package main

import (
	"fmt"
	"log/slog"
	"os"

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
	ENV_REPORT_DB_USERNAME    = "REPORT_DB_USERNAME"
	ENV_REPORT_DB_PASSWORD    = "REPORT_DB_PASSWORD"
	ENV_REPORTER_JWT_SIGN_KEY = "REPORTER_JWT_SIGN_KEY"
	ENV_SLACK_WEBHOOK_URL     = "SLACK_WEBHOOK_URL"
	ENV_SMTP_USERNAME         = "SMTP_USERNAME"
	ENV_SMTP_PASSWORD         = "SMTP_PASSWORD"
	ENV_BOSS_EMAIL            = "BOSS_EMAIL"
)

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	ReporterJWTConfig struct {
		SignKey string `json:"sign_key" yaml:"sign_key"`
	} `json:"reporter_jwt_config" yaml:"reporter_jwt_config"`

	// DB configs
	DBConfigs struct {
		ReportsDB db.DBConfigYaml `json:"reports_db" yaml:"reports_db"`
	} `json:"db_configs" yaml:"db_configs"`

	Relay notification.RelayConfig `json:"relay" yaml:"relay"`
}

var conf config

func loadConfig(path string) error {
	if path != "" {
		yamlFile, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if err := yaml.UnmarshalStrict(yamlFile, &conf); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}

	utils.InitLogger(conf.Logging)

	secretsOverride()
	return nil
}

func secretsOverride() {
	if signKey := os.Getenv(ENV_REPORTER_JWT_SIGN_KEY); signKey != "" {
		conf.ReporterJWTConfig.SignKey = signKey
	}

	if dbUsername := os.Getenv(ENV_REPORT_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.ReportsDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_REPORT_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.ReportsDB.Password = dbPassword
	}

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
}

// connectReportsDB is called by the commands that need the database; closeFn must be deferred.
func connectReportsDB() (service *reportsDB.ReportsDBService, closeFn func(), err error) {
	if conf.DBConfigs.ReportsDB.ConnectionStr == "" {
		return nil, nil, fmt.Errorf("reports DB not configured")
	}
	service, err = reportsDB.NewReportsDBService(db.DBConfigFromYamlObj(conf.DBConfigs.ReportsDB))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to reports DB: %w", err)
	}
	closeFn = func() {
		if err := service.Close(); err != nil {
			slog.Error("Error closing Reports DB", slog.String("error", err.Error()))
		}
	}
	return service, closeFn, nil
}
