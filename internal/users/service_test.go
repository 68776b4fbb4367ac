package users_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"flock/internal/logger"
	"flock/internal/mocks"
	"flock/internal/users"
	pkgerrors "flock/pkg/errors"
)

func newService(t *testing.T) (users.Service, *mocks.MockUserRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	return users.NewService(repo, logger.NopLogger()), repo
}

func TestService_GetUser(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects malformed id without touching the store", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.GetUser(ctx, "not-a-uuid")
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("propagates not found", func(t *testing.T) {
		svc, repo := newService(t)
		id := uuid.NewString()
		repo.EXPECT().GetUser(ctx, id).Return(nil, pkgerrors.ErrNotFound)

		_, err := svc.GetUser(ctx, id)
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}

func TestService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("trims the username", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().CreateUser(ctx, "dave").Return(&users.User{ID: uuid.NewString(), Username: "dave"}, nil)

		user, err := svc.CreateUser(ctx, users.CreateUserRequest{Username: "  dave "})
		require.NoError(t, err)
		assert.Equal(t, "dave", user.Username)
	})

	t.Run("blank username is invalid", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.CreateUser(ctx, users.CreateUserRequest{Username: "   "})
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("too long username is invalid", func(t *testing.T) {
		svc, _ := newService(t)
		long := make([]byte, 51)
		for i := range long {
			long[i] = 'a'
		}
		_, err := svc.CreateUser(ctx, users.CreateUserRequest{Username: string(long)})
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().CreateUser(ctx, "alice").Return(nil, pkgerrors.ErrConflict)

		_, err := svc.CreateUser(ctx, users.CreateUserRequest{Username: "alice"})
		assert.True(t, pkgerrors.IsConflict(err))
	})
}

func TestService_Follow(t *testing.T) {
	ctx := context.Background()
	follower, followed := uuid.NewString(), uuid.NewString()
	req := users.FollowRequest{FollowerID: follower, FollowedID: followed}

	t.Run("adds the edge when both users exist", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetUser(ctx, follower).Return(&users.User{ID: follower}, nil)
		repo.EXPECT().GetUser(ctx, followed).Return(&users.User{ID: followed}, nil)
		repo.EXPECT().AddFollow(ctx, follower, followed).Return(nil)

		assert.NoError(t, svc.Follow(ctx, req))
	})

	t.Run("self follow is rejected", func(t *testing.T) {
		svc, _ := newService(t)
		err := svc.Follow(ctx, users.FollowRequest{FollowerID: follower, FollowedID: follower})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
		assert.Contains(t, err.Error(), "themselves")
	})

	t.Run("missing follower", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetUser(ctx, follower).Return(nil, pkgerrors.ErrNotFound)

		err := svc.Follow(ctx, req)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsNotFound(err))
		assert.Equal(t, "follower not found", pkgerrors.ToErrorResponse(err).Error)
	})

	t.Run("missing followed user", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetUser(ctx, follower).Return(&users.User{ID: follower}, nil)
		repo.EXPECT().GetUser(ctx, followed).Return(nil, pkgerrors.ErrNotFound)

		err := svc.Follow(ctx, req)
		require.Error(t, err)
		assert.Equal(t, "followed user not found", pkgerrors.ToErrorResponse(err).Error)
	})

	t.Run("already following conflicts", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetUser(ctx, gomock.Any()).Return(&users.User{}, nil).Times(2)
		repo.EXPECT().AddFollow(ctx, follower, followed).Return(pkgerrors.ErrConflict)

		assert.True(t, pkgerrors.IsConflict(svc.Follow(ctx, req)))
	})

	t.Run("malformed ids are invalid", func(t *testing.T) {
		svc, _ := newService(t)
		err := svc.Follow(ctx, users.FollowRequest{FollowerID: "x", FollowedID: followed})
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestService_Unfollow(t *testing.T) {
	ctx := context.Background()
	follower, followed := uuid.NewString(), uuid.NewString()

	svc, repo := newService(t)
	repo.EXPECT().GetUser(ctx, gomock.Any()).Return(&users.User{}, nil).Times(2)
	repo.EXPECT().RemoveFollow(ctx, follower, followed).Return(pkgerrors.ErrConflict.WithMessage("not following"))

	err := svc.Unfollow(ctx, users.FollowRequest{FollowerID: follower, FollowedID: followed})
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestService_GetFollowers_SortedByUsername(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	svc, repo := newService(t)
	repo.EXPECT().GetUser(ctx, id).Return(&users.User{ID: id}, nil)
	repo.EXPECT().GetFollowerIDs(ctx, id).Return([]string{"c", "a", "b"}, nil)
	repo.EXPECT().GetUsersByIDs(ctx, []string{"c", "a", "b"}).Return([]users.User{
		{ID: "c", Username: "Charlie"},
		{ID: "a", Username: "Alice"},
		{ID: "b", Username: "Bob"},
	}, nil)

	followers, err := svc.GetFollowers(ctx, id)
	require.NoError(t, err)
	names := make([]string, 0, len(followers))
	for _, u := range followers {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, names)
}

func TestService_GetFollowing_StoreError(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	svc, repo := newService(t)
	repo.EXPECT().GetUser(ctx, id).Return(&users.User{ID: id}, nil)
	repo.EXPECT().GetFollowingIDs(ctx, id).Return(nil, errors.New("connection reset"))

	_, err := svc.GetFollowing(ctx, id)
	assert.EqualError(t, err, "connection reset")
}
