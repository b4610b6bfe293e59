package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/saladoop/shift-report-backend/pkg/blobstore"
	"github.com/saladoop/shift-report-backend/pkg/db"
	reportsDB "github.com/saladoop/shift-report-backend/pkg/db/reports"
	"github.com/saladoop/shift-report-backend/pkg/events"
	"github.com/saladoop/shift-report-backend/pkg/utils"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_REPORT_DB_USERNAME     = "REPORT_DB_USERNAME"
	ENV_REPORT_DB_PASSWORD     = "REPORT_DB_PASSWORD"
	ENV_REPORTER_JWT_SIGN_KEY  = "REPORTER_JWT_SIGN_KEY"
	ENV_NATS_URL               = "NATS_URL"
	ENV_PRIVILEGED_VIEWER_MAIL = "PRIVILEGED_VIEWER_EMAIL"
)

const (
	BLOB_STORE_FILESYSTEM = "filesystem"
	BLOB_STORE_GRIDFS     = "gridfs"

	DEFAULT_MAX_PHOTO_SIZE   = 15 << 20
	DEFAULT_MAX_PAYLOAD_SIZE = 64 << 20
)

type ReportApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode      bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins   []string `json:"allow_origins" yaml:"allow_origins"`
		Port           string   `json:"port" yaml:"port"`
		TrustedProxies []string `json:"trusted_proxies" yaml:"trusted_proxies"`
		MaxPayloadSize int64    `json:"max_payload_size" yaml:"max_payload_size"`
	} `json:"gin_config" yaml:"gin_config"`

	ReporterJWTConfig struct {
		SignKey string `json:"sign_key" yaml:"sign_key"`
	} `json:"reporter_jwt_config" yaml:"reporter_jwt_config"`

	// the one account allowed to read every report
	PrivilegedViewerEmail string `json:"privileged_viewer_email" yaml:"privileged_viewer_email"`

	// DB configs
	DBConfigs struct {
		ReportsDB db.DBConfigYaml `json:"reports_db" yaml:"reports_db"`
	} `json:"db_configs" yaml:"db_configs"`

	BlobStoreConfig struct {
		Type           string `json:"type" yaml:"type"` // filesystem or gridfs
		FilesystemRoot string `json:"filesystem_root" yaml:"filesystem_root"`
		PublicBaseURL  string `json:"public_base_url" yaml:"public_base_url"`
	} `json:"blob_store" yaml:"blob_store"`

	SubmissionConfig struct {
		Timezone          string `json:"timezone" yaml:"timezone"`
		UploadConcurrency int    `json:"upload_concurrency" yaml:"upload_concurrency"`
		MaxPhotoSize      int64  `json:"max_photo_size" yaml:"max_photo_size"`
	} `json:"submission" yaml:"submission"`

	NatsConfig events.NatsConfig `json:"nats" yaml:"nats"`
}

var (
	conf ReportApiConfig

	reportsDBService *reportsDB.ReportsDBService
	blobStore        blobstore.Store
	publisher        events.Publisher
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

	if conf.ReporterJWTConfig.SignKey == "" {
		slog.Error("reporter JWT sign key not set - configure " + ENV_REPORTER_JWT_SIGN_KEY + " env variable.")
		panic("reporter JWT sign key not set")
	}
	if conf.PrivilegedViewerEmail == "" {
		slog.Warn("no privileged viewer configured, every reporter only sees own reports")
	}
	if conf.GinConfig.MaxPayloadSize <= 0 {
		conf.GinConfig.MaxPayloadSize = DEFAULT_MAX_PAYLOAD_SIZE
	}
	if conf.SubmissionConfig.MaxPhotoSize <= 0 {
		conf.SubmissionConfig.MaxPhotoSize = DEFAULT_MAX_PHOTO_SIZE
	}

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Init DBs
	initDBs()

	initBlobStore()

	initPublisher()
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_REPORT_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.ReportsDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_REPORT_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.ReportsDB.Password = dbPassword
	}

	if signKey := os.Getenv(ENV_REPORTER_JWT_SIGN_KEY); signKey != "" {
		conf.ReporterJWTConfig.SignKey = signKey
	}

	if natsURL := os.Getenv(ENV_NATS_URL); natsURL != "" {
		conf.NatsConfig.URL = natsURL
	}

	if viewer := os.Getenv(ENV_PRIVILEGED_VIEWER_MAIL); viewer != "" {
		conf.PrivilegedViewerEmail = viewer
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

func initBlobStore() {
	var err error
	switch conf.BlobStoreConfig.Type {
	case BLOB_STORE_GRIDFS:
		blobStore, err = blobstore.NewGridFSStore(reportsDBService.Database())
	case BLOB_STORE_FILESYSTEM, "":
		blobStore, err = blobstore.NewFilesystemStore(conf.BlobStoreConfig.FilesystemRoot)
	default:
		slog.Error("unknown blob store type", slog.String("type", conf.BlobStoreConfig.Type))
		panic("unknown blob store type")
	}
	if err != nil {
		slog.Error("Error initializing blob store", slog.String("type", conf.BlobStoreConfig.Type), slog.String("error", err.Error()))
		panic(err)
	}
	if conf.BlobStoreConfig.PublicBaseURL == "" {
		slog.Warn("public base URL not set, photo URLs will be relative")
	}
}

func initPublisher() {
	if conf.NatsConfig.URL == "" {
		slog.Warn("NATS not configured, report created events will not be published")
		publisher = events.NoopPublisher{}
		return
	}
	if conf.NatsConfig.Name == "" {
		conf.NatsConfig.Name = "report-api"
	}

	var err error
	natsBus, err = events.Connect(conf.NatsConfig)
	if err != nil {
		slog.Error("Error connecting to NATS, report created events will not be published", slog.String("error", err.Error()))
		publisher = events.NoopPublisher{}
		return
	}
	publisher = natsBus
}
