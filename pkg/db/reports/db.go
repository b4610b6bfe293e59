package reports

import (
	"context"
	"log/slog"
	"time"

	"github.com/saladoop/shift-report-backend/pkg/db"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection names
const (
	COLLECTION_NAME_REPORTS         = "reports"
	COLLECTION_NAME_RATE_LIMIT_HITS = "rate-limit-hits"
)

type ReportsDBService struct {
	DBClient        *mongo.Client
	timeout         int
	noCursorTimeout bool
	DBNamePrefix    string
	clock           *MonotonicClock
}

func NewReportsDBService(configs db.DBConfig) (*ReportsDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)

	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	reportsDBSc := &ReportsDBService{
		DBClient:        dbClient,
		timeout:         configs.Timeout,
		noCursorTimeout: configs.NoCursorTimeout,
		DBNamePrefix:    configs.DBNamePrefix,
		clock:           NewMonotonicClock(time.Now),
	}

	if configs.RunIndexCreation {
		reportsDBSc.ensureIndexes()
	}

	return reportsDBSc, nil
}

func (dbService *ReportsDBService) getDBName() string {
	return dbService.DBNamePrefix + "shift_reports"
}

// Database exposes the underlying database, used for the GridFS photo bucket.
func (dbService *ReportsDBService) Database() *mongo.Database {
	return dbService.DBClient.Database(dbService.getDBName())
}

func (dbService *ReportsDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *ReportsDBService) collectionReports() *mongo.Collection {
	return dbService.Database().Collection(COLLECTION_NAME_REPORTS)
}

func (dbService *ReportsDBService) collectionRateLimitHits() *mongo.Collection {
	return dbService.Database().Collection(COLLECTION_NAME_RATE_LIMIT_HITS)
}

func (dbService *ReportsDBService) ensureIndexes() {
	slog.Debug("Ensuring indexes for reports DB")

	dbService.CreateDefaultIndexesForReportsCollection()
	dbService.CreateDefaultIndexesForRateLimitHitsCollection()
}

func (dbService *ReportsDBService) Close() error {
	ctx, cancel := dbService.getContext()
	defer cancel()
	return dbService.DBClient.Disconnect(ctx)
}
