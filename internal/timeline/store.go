package timeline

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flock/internal/constants"
	"flock/pkg/metrics"
)

//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/timeline_store_mock.go -package=mocks -mock_names=Store=MockTimelineStore

// Store serves timeline pages newest first, ties broken by entry id.
type Store interface {
	GetPage(ctx context.Context, ownerID string, pageNumber, pageSize int) ([]Entry, int64, error)
}

// MongoStore keeps one document per (owner, message). This is the
// fan-out-on-write layout: a message costs one write per follower so that
// reading a timeline is a single indexed range scan.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(constants.TimelinesCollection)}
}

type pageResult struct {
	Total []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
	Items []Entry `bson:"items"`
}

// GetPage returns the page and the owner's total entry count in one aggregation.
func (s *MongoStore) GetPage(ctx context.Context, ownerID string, pageNumber, pageSize int) ([]Entry, int64, error) {
	start := time.Now()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner_id", Value: ownerID}}}},
		{{Key: "$facet", Value: bson.D{
			{Key: "total", Value: bson.A{
				bson.D{{Key: "$count", Value: "count"}},
			}},
			{Key: "items", Value: bson.A{
				bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
				bson.D{{Key: "$skip", Value: int64(pageNumber-1) * int64(pageSize)}},
				bson.D{{Key: "$limit", Value: int64(pageSize)}},
			}},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.ObserveDatabaseQuery("mongodb", "timeline_page", start, err)
		return nil, 0, fmt.Errorf("failed to query timeline: %w", err)
	}
	defer cursor.Close(ctx)

	var results []pageResult
	err = cursor.All(ctx, &results)
	metrics.ObserveDatabaseQuery("mongodb", "timeline_page", start, err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode timeline page: %w", err)
	}

	if len(results) == 0 {
		return []Entry{}, 0, nil
	}

	var total int64
	if len(results[0].Total) > 0 {
		total = results[0].Total[0].Count
	}
	items := results[0].Items
	if items == nil {
		items = []Entry{}
	}
	return items, total, nil
}

// BulkUpsert inserts entries that do not exist yet and leaves existing ones
// untouched. It returns the number of newly created entries.
func (s *MongoStore) BulkUpsert(ctx context.Context, entries []Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	start := time.Now()

	models := make([]mongo.WriteModel, 0, len(entries))
	for _, e := range entries {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: e.ID}}).
			SetUpdate(bson.D{{Key: "$setOnInsert", Value: bson.D{
				{Key: "owner_id", Value: e.OwnerID},
				{Key: "message_id", Value: e.MessageID},
				{Key: "author_id", Value: e.AuthorID},
				{Key: "content", Value: e.Content},
				{Key: "created_at", Value: e.CreatedAt},
			}}}).
			SetUpsert(true))
	}

	res, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	metrics.ObserveDatabaseQuery("mongodb", "timeline_bulk_upsert", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert timeline entries: %w", err)
	}
	return res.UpsertedCount, nil
}
