package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RateLimitHit struct {
	Key       string    `bson:"key"`
	At        time.Time `bson:"at"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

var indexesForRateLimitHitsCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "key", Value: 1},
			{Key: "at", Value: 1},
		},
		Options: options.Index().SetName("key_1_at_1"),
	},
	{
		Keys: bson.D{
			{Key: "expiresAt", Value: 1},
		},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expiresAt_1"),
	},
}

func (dbService *ReportsDBService) DropIndexForRateLimitHitsCollection(dropAll bool) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if dropAll {
		_, err := dbService.collectionRateLimitHits().Indexes().DropAll(ctx)
		if err != nil {
			slog.Error("Error dropping all indexes for rate limit hits", slog.String("error", err.Error()))
		}
		return
	}
	for _, index := range indexesForRateLimitHitsCollection {
		if index.Options == nil || index.Options.Name == nil {
			slog.Error("Index name is nil for rate limit hits collection", slog.String("index", fmt.Sprintf("%+v", index)))
			continue
		}
		indexName := *index.Options.Name
		_, err := dbService.collectionRateLimitHits().Indexes().DropOne(ctx, indexName)
		if err != nil {
			slog.Error("Error dropping index for rate limit hits", slog.String("error", err.Error()), slog.String("indexName", indexName))
		}
	}
}

func (dbService *ReportsDBService) CreateDefaultIndexesForRateLimitHitsCollection() {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionRateLimitHits().Indexes().CreateMany(ctx, indexesForRateLimitHitsCollection)
	if err != nil {
		slog.Error("Error creating index for rate limit hits", slog.String("error", err.Error()))
	}
}

// rateLimitHitsFilter matches hits for key strictly after since; a hit exactly one window old has expired.
func rateLimitHitsFilter(key string, since time.Time) bson.M {
	return bson.M{
		"key": key,
		"at":  bson.M{"$gt": since},
	}
}

// CountRateLimitHits counts recorded hits for key after since.
func (dbService *ReportsDBService) CountRateLimitHits(ctx context.Context, key string, since time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(dbService.timeout)*time.Second)
	defer cancel()

	return dbService.collectionRateLimitHits().CountDocuments(ctx, rateLimitHitsFilter(key, since))
}

// AddRateLimitHit records one accepted request; the TTL index removes it after window.
func (dbService *ReportsDBService) AddRateLimitHit(ctx context.Context, key string, at time.Time, window time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(dbService.timeout)*time.Second)
	defer cancel()

	_, err := dbService.collectionRateLimitHits().InsertOne(ctx, RateLimitHit{
		Key:       key,
		At:        at,
		ExpiresAt: at.Add(window),
	})
	return err
}
