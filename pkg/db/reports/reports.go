package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saladoop/shift-report-backend/pkg/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
)

const (
	DEFAULT_PAGE_SIZE = 20
	MAX_PAGE_SIZE     = 100
)

var ErrReportNotFound = errors.New("report not found")

type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("report store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

var indexesForReportsCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "reporterUid", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("reporterUid_1_createdAt_-1"),
	},
	{
		Keys: bson.D{
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("createdAt_-1"),
	},
	{
		Keys: bson.D{
			{Key: "notification.completedAt", Value: 1},
			{Key: "createdAt", Value: 1},
		},
		Options: options.Index().SetName("notification.completedAt_1_createdAt_1"),
	},
}

func (dbService *ReportsDBService) DropIndexForReportsCollection(dropAll bool) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if dropAll {
		_, err := dbService.collectionReports().Indexes().DropAll(ctx)
		if err != nil {
			slog.Error("Error dropping all indexes for reports", slog.String("error", err.Error()))
		}
		return
	}
	for _, index := range indexesForReportsCollection {
		if index.Options == nil || index.Options.Name == nil {
			slog.Error("Index name is nil for reports collection", slog.String("index", fmt.Sprintf("%+v", index)))
			continue
		}
		indexName := *index.Options.Name
		_, err := dbService.collectionReports().Indexes().DropOne(ctx, indexName)
		if err != nil {
			slog.Error("Error dropping index for reports", slog.String("error", err.Error()), slog.String("indexName", indexName))
		}
	}
}

func (dbService *ReportsDBService) CreateDefaultIndexesForReportsCollection() {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionReports().Indexes().CreateMany(ctx, indexesForReportsCollection)
	if err != nil {
		slog.Error("Error creating index for reports", slog.String("error", err.Error()))
	}
}

func (dbService *ReportsDBService) ListReportIndexes(ctx context.Context) ([]bson.M, error) {
	return db.ListCollectionIndexes(ctx, dbService.collectionReports())
}

// InsertReport appends one record. The creation time is assigned here and never decreases.
func (dbService *ReportsDBService) InsertReport(report reportTypes.Report) (reportTypes.Report, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	report.ID = primitive.NilObjectID
	report.CreatedAt = dbService.clock.Now()
	report.HasPhoto = len(report.Photos) > 0
	if report.Checklist == nil {
		report.Checklist = map[string]bool{}
	}
	if report.Photos == nil {
		report.Photos = []reportTypes.PhotoEntry{}
	}
	report.Notification = reportTypes.NotificationState{}

	res, err := dbService.collectionReports().InsertOne(ctx, report)
	if err != nil {
		return report, &StoreError{Op: "insert", Err: err}
	}
	report.ID = res.InsertedID.(primitive.ObjectID)
	return report, nil
}

func (dbService *ReportsDBService) GetReportByID(reportID string) (report reportTypes.Report, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return report, ErrReportNotFound
	}

	filter := bson.M{
		"_id": _id,
	}

	err = dbService.collectionReports().FindOne(ctx, filter).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return report, ErrReportNotFound
	}
	return report, err
}

func (dbService *ReportsDBService) GetReportCountForScope(scope Scope) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	return dbService.collectionReports().CountDocuments(ctx, scope.Filter())
}

// GetReports returns one page of the reports visible in scope, newest first.
func (dbService *ReportsDBService) GetReports(scope Scope, page int64, limit int64) (reports []reportTypes.Report, paginationInfo *db.PaginationInfos, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	totalCount, err := dbService.GetReportCountForScope(scope)
	if err != nil {
		return reports, nil, err
	}

	paginationInfo = db.PrepPaginationInfos(
		totalCount,
		page,
		ClampPageSize(limit),
	)

	skip := (paginationInfo.CurrentPage - 1) * paginationInfo.PageSize

	opts := options.Find()
	opts.SetSort(reportSortNewestFirst)
	opts.SetSkip(skip)
	opts.SetLimit(paginationInfo.PageSize)

	cursor, err := dbService.collectionReports().Find(ctx, scope.Filter(), opts)
	if err != nil {
		return reports, nil, err
	}

	defer cursor.Close(ctx)

	reports = []reportTypes.Report{}
	err = cursor.All(ctx, &reports)
	return reports, paginationInfo, err
}

// iterate over reports visible in scope, newest first; each call opens a fresh cursor
func (dbService *ReportsDBService) FindAndExecuteOnReports(
	ctx context.Context,
	scope Scope,
	fn func(report reportTypes.Report, args ...interface{}) error,
	args ...interface{},
) error {
	opts := options.Find().SetSort(reportSortNewestFirst)
	if dbService.noCursorTimeout {
		opts.SetNoCursorTimeout(true)
	}

	cursor, err := dbService.collectionReports().Find(ctx, scope.Filter(), opts)
	if err != nil {
		return err
	}

	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var report reportTypes.Report
		if err = cursor.Decode(&report); err != nil {
			slog.Error("Error while decoding report", slog.String("error", err.Error()))
			continue
		}

		if err = fn(report, args...); err != nil {
			slog.Error("Error executing function on report", slog.String("reportID", report.ID.Hex()), slog.String("error", err.Error()))
			continue
		}
	}
	return cursor.Err()
}

func ClampPageSize(limit int64) int64 {
	if limit <= 0 {
		return DEFAULT_PAGE_SIZE
	}
	if limit > MAX_PAGE_SIZE {
		return MAX_PAGE_SIZE
	}
	return limit
}
