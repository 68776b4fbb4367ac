package fanout_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"flock/internal/config"
	"flock/internal/constants"
	"flock/internal/fanout"
	"flock/internal/logger"
	"flock/internal/mocks"
	"flock/internal/timeline"
	"flock/pkg/models"
	"flock/pkg/retry"
)

const (
	testMessageID = "0b8f7c1e-2a4d-4e6f-9a1b-3c5d7e9f1a2b"
	testAuthorID  = "6d1e2f3a-4b5c-4d6e-8f7a-9b0c1d2e3f4a"
)

// memoryWriter upserts by entry id like the Mongo store does.
type memoryWriter struct {
	mu      sync.Mutex
	entries map[string]timeline.Entry
}

func newMemoryWriter() *memoryWriter {
	return &memoryWriter{entries: make(map[string]timeline.Entry)}
}

func (w *memoryWriter) BulkUpsert(_ context.Context, entries []timeline.Entry) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var created int64
	for _, e := range entries {
		if _, ok := w.entries[e.ID]; ok {
			continue
		}
		w.entries[e.ID] = e
		created++
	}
	return created, nil
}

func (w *memoryWriter) owners(messageID string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for _, e := range w.entries {
		if e.MessageID == messageID {
			out = append(out, e.OwnerID)
		}
	}
	return out
}

func event(messageID, authorID string) models.EventEnvelope {
	env, err := models.NewMessageCreatedEnvelope(models.MessageCreated{
		MessageID: messageID,
		AuthorID:  authorID,
		Text:      "hello",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}, "")
	if err != nil {
		panic(err)
	}
	return *env
}

func newService(followers fanout.FollowerSource, writer fanout.EntryWriter, inv fanout.CacheInvalidator, mode string) *fanout.Service {
	return fanout.NewService(followers, writer, inv,
		config.TimelineConfig{Invalidation: mode},
		config.FanoutConfig{InvalidationConcurrency: 2},
		logger.NopLogger())
}

func TestService_Completeness(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	followers := mocks.NewMockFollowerSource(ctrl)
	invalidator := mocks.NewMockCacheInvalidator(ctrl)
	writer := newMemoryWriter()
	svc := newService(followers, writer, invalidator, constants.InvalidationPattern)

	followers.EXPECT().GetFollowerIDs(gomock.Any(), testAuthorID).Return([]string{"f1", "f2", "f3"}, nil)
	invalidator.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(nil).Times(4)

	require.NoError(t, svc.Handle(ctx, event(testMessageID, testAuthorID)))
	assert.ElementsMatch(t, []string{testAuthorID, "f1", "f2", "f3"}, writer.owners(testMessageID))
}

func TestService_AuthorWithoutFollowers(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	followers := mocks.NewMockFollowerSource(ctrl)
	writer := newMemoryWriter()
	svc := newService(followers, writer, nil, constants.InvalidationNone)

	followers.EXPECT().GetFollowerIDs(gomock.Any(), testAuthorID).Return([]string{}, nil)

	require.NoError(t, svc.Handle(ctx, event(testMessageID, testAuthorID)))
	assert.Equal(t, []string{testAuthorID}, writer.owners(testMessageID))
}

func TestService_RedeliveryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	followers := mocks.NewMockFollowerSource(ctrl)
	writer := newMemoryWriter()
	svc := newService(followers, writer, nil, constants.InvalidationNone)

	followers.EXPECT().GetFollowerIDs(gomock.Any(), testAuthorID).Return([]string{"f1", "f2"}, nil).Times(2)

	env := event(testMessageID, testAuthorID)
	require.NoError(t, svc.Handle(ctx, env))
	require.NoError(t, svc.Handle(ctx, env))
	assert.Len(t, writer.owners(testMessageID), 3)
}

func TestService_BuildsDeterministicEntries(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	followers := mocks.NewMockFollowerSource(ctrl)
	writer := mocks.NewMockEntryWriter(ctrl)
	svc := newService(followers, writer, nil, constants.InvalidationNone)

	followers.EXPECT().GetFollowerIDs(gomock.Any(), testAuthorID).Return([]string{"f1", testAuthorID}, nil)
	writer.EXPECT().BulkUpsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, entries []timeline.Entry) (int64, error) {
		require.Len(t, entries, 2, "the author is not duplicated")
		for _, e := range entries {
			assert.Equal(t, timeline.EntryID(e.OwnerID, testMessageID), e.ID)
			assert.Equal(t, testAuthorID, e.AuthorID)
			assert.Equal(t, "hello", e.Content)
		}
		return 2, nil
	})

	require.NoError(t, svc.Handle(ctx, event(testMessageID, testAuthorID)))
}

func TestService_FailuresAreRetryable(t *testing.T) {
	ctx := context.Background()

	t.Run("follower lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		followers := mocks.NewMockFollowerSource(ctrl)
		writer := mocks.NewMockEntryWriter(ctrl)
		svc := newService(followers, writer, nil, constants.InvalidationNone)

		followers.EXPECT().GetFollowerIDs(gomock.Any(), gomock.Any()).Return(nil, errors.New("postgres down"))

		err := svc.Handle(ctx, event(testMessageID, testAuthorID))
		require.Error(t, err)
		assert.False(t, retry.IsFatal(err))
	})

	t.Run("bulk write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		followers := mocks.NewMockFollowerSource(ctrl)
		writer := mocks.NewMockEntryWriter(ctrl)
		invalidator := mocks.NewMockCacheInvalidator(ctrl)
		svc := newService(followers, writer, invalidator, constants.InvalidationPattern)

		followers.EXPECT().GetFollowerIDs(gomock.Any(), gomock.Any()).Return([]string{"f1"}, nil)
		writer.EXPECT().BulkUpsert(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("mongo down"))

		err := svc.Handle(ctx, event(testMessageID, testAuthorID))
		require.Error(t, err)
		assert.False(t, retry.IsFatal(err))
	})
}

func TestService_InvalidationIsBestEffort(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	followers := mocks.NewMockFollowerSource(ctrl)
	invalidator := mocks.NewMockCacheInvalidator(ctrl)
	svc := newService(followers, newMemoryWriter(), invalidator, constants.InvalidationPattern)

	followers.EXPECT().GetFollowerIDs(gomock.Any(), gomock.Any()).Return([]string{"f1"}, nil)
	invalidator.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(errors.New("redis down")).Times(2)

	assert.NoError(t, svc.Handle(ctx, event(testMessageID, testAuthorID)))
}

func TestService_InvalidPayloadIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newService(mocks.NewMockFollowerSource(ctrl), mocks.NewMockEntryWriter(ctrl), nil, constants.InvalidationNone)

	env := event(testMessageID, testAuthorID)
	env.Payload = json.RawMessage(`{"messageId":""}`)

	err := svc.Handle(context.Background(), env)
	require.Error(t, err)
	assert.True(t, retry.IsFatal(err))
}

func TestService_NonUUIDAuthorIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newService(mocks.NewMockFollowerSource(ctrl), mocks.NewMockEntryWriter(ctrl), nil, constants.InvalidationNone)

	env := event(testMessageID, testAuthorID)
	env.Payload = json.RawMessage(`{"messageId":"` + testMessageID + `","authorId":"not-a-uuid","createdAt":"2025-01-01T00:00:00Z"}`)

	err := svc.Handle(context.Background(), env)
	require.Error(t, err)
	assert.True(t, retry.IsFatal(err), "a malformed author id can never succeed and must not be retried")
}

func TestService_SkipsOtherEventTypes(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newService(mocks.NewMockFollowerSource(ctrl), mocks.NewMockEntryWriter(ctrl), nil, constants.InvalidationNone)

	env := event(testMessageID, testAuthorID)
	env.Type = "user.created"

	assert.NoError(t, svc.Handle(context.Background(), env))
}
