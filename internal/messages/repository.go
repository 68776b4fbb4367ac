package messages

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"flock/internal/constants"
	pkgerrors "flock/pkg/errors"
	"flock/pkg/metrics"
)

//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=../mocks/messages_repository_mock.go -package=mocks -mock_names=Repository=MockMessageRepository

type Repository interface {
	Insert(ctx context.Context, msg *Message) error
}

type MongoStore struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(constants.MessagesCollection)}
}

func (r *MongoStore) Insert(ctx context.Context, msg *Message) error {
	start := time.Now()
	_, err := r.collection.InsertOne(ctx, msg)
	metrics.ObserveDatabaseQuery("mongodb", "insert_message", start, err)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return pkgerrors.ErrConflict.WithCause(err).WithDetail("message_id", msg.ID)
		}
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}
