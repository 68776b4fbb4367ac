package migrations

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flock/internal/constants"
)

// EnsureMongoIndexes creates the indexes the timeline page query and the
// message lookups rely on. CreateMany is a no-op for existing identical indexes.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	timelineIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_timelines_owner_created_at"),
		},
		{
			Keys:    bson.D{{Key: "message_id", Value: 1}},
			Options: options.Index().SetName("idx_timelines_message_id"),
		},
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}},
			Options: options.Index().SetName("idx_timelines_author_id"),
		},
	}

	if _, err := db.Collection(constants.TimelinesCollection).Indexes().CreateMany(ctx, timelineIndexes); err != nil {
		return fmt.Errorf("failed to create timeline indexes: %w", err)
	}

	messageIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_messages_author_created_at"),
		},
	}

	if _, err := db.Collection(constants.MessagesCollection).Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	return nil
}
