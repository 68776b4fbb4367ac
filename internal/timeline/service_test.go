package timeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"flock/internal/logger"
	"flock/internal/mocks"
	"flock/internal/timeline"
	"flock/internal/users"
	pkgerrors "flock/pkg/errors"
	"flock/pkg/retry"
)

type fixture struct {
	store *mocks.MockTimelineStore
	cache *mocks.MockTimelineCache
	users *mocks.MockUserDirectory
	svc   timeline.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := fixture{
		store: mocks.NewMockTimelineStore(ctrl),
		cache: mocks.NewMockTimelineCache(ctrl),
		users: mocks.NewMockUserDirectory(ctrl),
	}
	f.svc = timeline.NewService(f.store, f.cache, f.users, timeline.Options{
		CacheTTL:    time.Minute,
		MaxPageSize: 50,
		StoreRetry:  retry.Policy{MaxAttempts: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1},
	}, logger.NopLogger())
	return f
}

// entries builds n entries for owner, newest first, all written by author.
func entries(owner, author string, n int, base time.Time) []timeline.Entry {
	out := make([]timeline.Entry, 0, n)
	for i := n; i > 0; i-- {
		msgID := fmt.Sprintf("m-%02d", i)
		out = append(out, timeline.NewEntry(owner, msgID, author, "text "+msgID, base.Add(time.Duration(i)*time.Second)))
	}
	return out
}

func TestService_GetTimeline_Pagination(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	all := entries(owner, owner, 15, base)

	tests := []struct {
		page         int
		wantNext     bool
		wantPrevious bool
	}{
		{1, true, false},
		{2, true, true},
		{3, false, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			f := newFixture(t)
			key := timeline.PageKey(owner, tt.page, 5)
			slice := all[(tt.page-1)*5 : tt.page*5]

			f.users.EXPECT().GetUser(gomock.Any(), owner).Return(&users.User{ID: owner, Username: "Alice"}, nil)
			f.cache.EXPECT().Get(gomock.Any(), key).Return(nil, false, nil)
			f.store.EXPECT().GetPage(gomock.Any(), owner, tt.page, 5).Return(slice, int64(15), nil)
			f.users.EXPECT().GetUsersByIDs(gomock.Any(), []string{owner}).Return([]users.User{{ID: owner, Username: "Alice"}}, nil)
			f.cache.EXPECT().Set(gomock.Any(), key, gomock.Any(), time.Minute).Return(nil)

			page, err := f.svc.GetTimeline(ctx, owner, tt.page, 5)
			require.NoError(t, err)
			assert.Len(t, page.Items, 5)
			assert.Equal(t, int64(15), page.TotalCount)
			assert.Equal(t, 3, page.TotalPages)
			assert.Equal(t, tt.wantNext, page.HasNext)
			assert.Equal(t, tt.wantPrevious, page.HasPrevious)
			assert.Equal(t, slice[0].MessageID, page.Items[0].ID)
			assert.Equal(t, "Alice", page.Items[0].Username)
		})
	}
}

func TestService_GetTimeline_CacheHitSkipsStore(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()
	f := newFixture(t)

	cached := timeline.NewPage([]timeline.Item{{ID: "m-1", Username: "Bob"}}, 1, 10, 1)
	f.users.EXPECT().GetUser(gomock.Any(), owner).Return(&users.User{ID: owner}, nil)
	f.cache.EXPECT().Get(gomock.Any(), timeline.PageKey(owner, 1, 10)).Return(cached, true, nil)

	page, err := f.svc.GetTimeline(ctx, owner, 1, 10)
	require.NoError(t, err)
	assert.Same(t, cached, page)
}

func TestService_GetTimeline_NormalizesPageParams(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()

	tests := []struct {
		name             string
		page, size       int
		wantPage, wantSz int
	}{
		{"zero values use defaults", 0, 0, 1, 10},
		{"negative values use defaults", -3, -1, 1, 10},
		{"size clamped to max", 2, 1000, 2, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			cached := timeline.NewPage(nil, tt.wantPage, tt.wantSz, 0)
			f.users.EXPECT().GetUser(gomock.Any(), owner).Return(&users.User{ID: owner}, nil)
			f.cache.EXPECT().Get(gomock.Any(), timeline.PageKey(owner, tt.wantPage, tt.wantSz)).Return(cached, true, nil)

			_, err := f.svc.GetTimeline(ctx, owner, tt.page, tt.size)
			require.NoError(t, err)
		})
	}
}

func TestService_GetTimeline_UnknownUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := uuid.NewString()

	f.users.EXPECT().GetUser(gomock.Any(), owner).Return(nil, pkgerrors.ErrNotFound)

	_, err := f.svc.GetTimeline(ctx, owner, 1, 10)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestService_GetTimeline_MalformedUserID(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetTimeline(context.Background(), "nope", 1, 10)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestService_GetTimeline_CacheErrorFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()
	f := newFixture(t)

	f.users.EXPECT().GetUser(gomock.Any(), owner).Return(&users.User{ID: owner}, nil)
	f.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, errors.New("redis down"))
	f.store.EXPECT().GetPage(gomock.Any(), owner, 1, 10).Return([]timeline.Entry{}, int64(0), nil)
	f.cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	page, err := f.svc.GetTimeline(ctx, owner, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}

func TestService_GetTimeline_StoreRetriedThenUnavailable(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()

	t.Run("recovers on retry", func(t *testing.T) {
		f := newFixture(t)
		f.users.EXPECT().GetUser(gomock.Any(), owner).Return(&users.User{ID: owner}, nil)
		f.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, nil)
		gomock.InOrder(
			f.store.EXPECT().GetPage(gomock.Any(), owner, 1, 10).Return(nil, int64(0), errors.New("timeout")),
			f.store.EXPECT().GetPage(gomock.Any(), owner, 1, 10).Return([]timeline.Entry{}, int64(0), nil),
		)
		f.cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.svc.GetTimeline(ctx, owner, 1, 10)
		assert.NoError(t, err)
	})

	t.Run("exhausted", func(t *testing.T) {
		f := newFixture(t)
		f.users.EXPECT().GetUser(gomock.Any(), owner).Return(&users.User{ID: owner}, nil)
		f.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, nil)
		f.store.EXPECT().GetPage(gomock.Any(), owner, 1, 10).Return(nil, int64(0), errors.New("timeout")).Times(2)

		_, err := f.svc.GetTimeline(ctx, owner, 1, 10)
		assert.True(t, pkgerrors.IsServiceUnavailable(err))
	})
}

func TestService_GetTimeline_EnrichesAuthorsOnce(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()
	alice, gone := uuid.NewString(), uuid.NewString()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t)

	page := []timeline.Entry{
		timeline.NewEntry(owner, "m-3", alice, "three", base.Add(3*time.Second)),
		timeline.NewEntry(owner, "m-2", gone, "two", base.Add(2*time.Second)),
		timeline.NewEntry(owner, "m-1", alice, "one", base.Add(time.Second)),
	}

	f.users.EXPECT().GetUser(gomock.Any(), owner).Return(&users.User{ID: owner}, nil)
	f.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, nil)
	f.store.EXPECT().GetPage(gomock.Any(), owner, 1, 10).Return(page, int64(3), nil)
	f.users.EXPECT().GetUsersByIDs(gomock.Any(), []string{alice, gone}).Return([]users.User{{ID: alice, Username: "Alice"}}, nil)
	f.cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	got, err := f.svc.GetTimeline(ctx, owner, 1, 10)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, []string{"m-3", "m-2", "m-1"}, []string{got.Items[0].ID, got.Items[1].ID, got.Items[2].ID})
	assert.Equal(t, "Alice", got.Items[0].Username)
	assert.Equal(t, "Unknown", got.Items[1].Username)
	assert.Equal(t, gone, got.Items[1].UserID)
}
