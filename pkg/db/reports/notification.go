package reports

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
)

// ErrNotClaimable is returned when a report is already notified or currently claimed by another relay.
var ErrNotClaimable = errors.New("report not claimable for notification")

func claimFilter(_id primitive.ObjectID, lockedBefore int64) bson.M {
	return bson.M{
		"_id":                        _id,
		"notification.completedAt":   0,
		"notification.lastAttemptAt": bson.M{"$lt": lockedBefore},
	}
}

// ClaimReportForNotification atomically marks a pending report as being notified by the caller.
func (dbService *ReportsDBService) ClaimReportForNotification(reportID string, lockDuration time.Duration) (report reportTypes.Report, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return report, ErrReportNotFound
	}

	now := time.Now()
	filter := claimFilter(_id, now.Add(-lockDuration).Unix())
	update := bson.M{"$set": bson.M{"notification.lastAttemptAt": now.Unix()}}

	err = dbService.collectionReports().FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return report, ErrNotClaimable
	}
	return report, err
}

// SaveNotificationOutcome records the per-channel results and closes the report for notification.
func (dbService *ReportsDBService) SaveNotificationOutcome(reportID string, slack reportTypes.ChannelOutcome, email reportTypes.ChannelOutcome) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return ErrReportNotFound
	}

	update := bson.M{"$set": bson.M{
		"notification.slack":       slack,
		"notification.email":       email,
		"notification.completedAt": time.Now().Unix(),
	}}
	res, err := dbService.collectionReports().UpdateOne(ctx, bson.M{"_id": _id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return ErrReportNotFound
	}
	return nil
}

// ResetNotificationState reopens a report so the next claim notifies it again.
func (dbService *ReportsDBService) ResetNotificationState(reportID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return ErrReportNotFound
	}

	update := bson.M{"$set": bson.M{"notification": reportTypes.NotificationState{}}}
	res, err := dbService.collectionReports().UpdateOne(ctx, bson.M{"_id": _id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return ErrReportNotFound
	}
	return nil
}

// GetReportsPendingNotification returns reports created before createdBefore that were never
// notified and are not currently claimed, oldest first.
func (dbService *ReportsDBService) GetReportsPendingNotification(createdBefore time.Time, lockDuration time.Duration, limit int64) (reports []reportTypes.Report, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"notification.completedAt":   0,
		"notification.lastAttemptAt": bson.M{"$lt": time.Now().Add(-lockDuration).Unix()},
		"createdAt":                  bson.M{"$lt": createdBefore},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(limit).
		SetProjection(bson.M{"_id": 1, "createdAt": 1, "reporterUid": 1})

	cursor, err := dbService.collectionReports().Find(ctx, filter, opts)
	if err != nil {
		return reports, err
	}
	defer cursor.Close(ctx)

	reports = []reportTypes.Report{}
	err = cursor.All(ctx, &reports)
	return reports, err
}
