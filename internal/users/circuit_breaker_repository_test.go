package users_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"flock/internal/config"
	"flock/internal/mocks"
	"flock/internal/users"
	pkgerrors "flock/pkg/errors"
)

func TestCircuitBreakerRepository(t *testing.T) {
	ctx := context.Background()
	cfg := config.CircuitBreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Timeout:      time.Hour,
		FailureRatio: 0.5,
		MinRequests:  2,
	}

	t.Run("not found never opens the breaker", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockUserRepository(ctrl)
		repo := users.NewCircuitBreakerRepository(inner, cfg)

		inner.EXPECT().GetUser(ctx, gomock.Any()).Return(nil, pkgerrors.ErrNotFound).Times(5)
		for range 5 {
			_, err := repo.GetUser(ctx, uuid.NewString())
			assert.True(t, pkgerrors.IsNotFound(err))
		}
	})

	t.Run("store failures open it", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockUserRepository(ctrl)
		repo := users.NewCircuitBreakerRepository(inner, cfg)

		inner.EXPECT().GetFollowerIDs(ctx, gomock.Any()).Return(nil, errors.New("connection refused")).Times(2)
		for range 2 {
			_, err := repo.GetFollowerIDs(ctx, "u")
			assert.EqualError(t, err, "connection refused")
		}

		_, err := repo.GetFollowerIDs(ctx, "u")
		assert.True(t, pkgerrors.IsServiceUnavailable(err))
	})

	t.Run("disabled passes through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockUserRepository(ctrl)
		repo := users.NewCircuitBreakerRepository(inner, config.CircuitBreakerConfig{})

		inner.EXPECT().AddFollow(ctx, "a", "b").Return(nil)
		assert.NoError(t, repo.AddFollow(ctx, "a", "b"))
	})
}
