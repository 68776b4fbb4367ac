package users

import (
	"context"
	"fmt"

	"flock/internal/config"
	"flock/pkg/circuitbreaker"
	pkgerrors "flock/pkg/errors"
)

// CircuitBreakerRepository guards the Postgres store. Client errors such as
// NotFound or Conflict count as successes so they never trip the breaker.
type CircuitBreakerRepository struct {
	repo Repository
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerRepository(repo Repository, cfg config.CircuitBreakerConfig) *CircuitBreakerRepository {
	if !cfg.Enabled {
		return &CircuitBreakerRepository{repo: repo}
	}

	cbConfig := circuitbreaker.DefaultConfig("postgres-users")
	if cfg.MaxRequests > 0 {
		cbConfig.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbConfig.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbConfig.Timeout = cfg.Timeout
	}
	cbConfig = cbConfig.WithFailureRatio(cfg.FailureRatio, cfg.MinRequests)
	cbConfig.IsSuccessful = func(err error) bool {
		return err == nil || pkgerrors.IsNotFound(err) || pkgerrors.IsConflict(err) || pkgerrors.IsValidation(err)
	}

	return &CircuitBreakerRepository{
		repo: repo,
		cb:   circuitbreaker.NewWrapper(cbConfig),
	}
}

func guard[T any](ctx context.Context, r *CircuitBreakerRepository, fn func() (T, error)) (T, error) {
	if r.cb == nil {
		return fn()
	}
	result, err := circuitbreaker.Execute(ctx, r.cb, fn)
	if err != nil && circuitbreaker.IsBreakerError(err) {
		var zero T
		return zero, pkgerrors.ErrServiceUnavailable.
			WithCause(fmt.Errorf("circuit breaker is open for %s: %w", r.cb.Name(), err))
	}
	return result, err
}

func (r *CircuitBreakerRepository) GetUser(ctx context.Context, id string) (*User, error) {
	return guard(ctx, r, func() (*User, error) { return r.repo.GetUser(ctx, id) })
}

func (r *CircuitBreakerRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]User, error) {
	return guard(ctx, r, func() ([]User, error) { return r.repo.GetUsersByIDs(ctx, ids) })
}

func (r *CircuitBreakerRepository) ListUsers(ctx context.Context) ([]User, error) {
	return guard(ctx, r, func() ([]User, error) { return r.repo.ListUsers(ctx) })
}

func (r *CircuitBreakerRepository) CreateUser(ctx context.Context, username string) (*User, error) {
	return guard(ctx, r, func() (*User, error) { return r.repo.CreateUser(ctx, username) })
}

func (r *CircuitBreakerRepository) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return guard(ctx, r, func() ([]string, error) { return r.repo.GetFollowerIDs(ctx, userID) })
}

func (r *CircuitBreakerRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return guard(ctx, r, func() ([]string, error) { return r.repo.GetFollowingIDs(ctx, userID) })
}

func (r *CircuitBreakerRepository) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	return guard(ctx, r, func() (bool, error) { return r.repo.IsFollowing(ctx, followerID, followedID) })
}

func (r *CircuitBreakerRepository) AddFollow(ctx context.Context, followerID, followedID string) error {
	_, err := guard(ctx, r, func() (struct{}, error) {
		return struct{}{}, r.repo.AddFollow(ctx, followerID, followedID)
	})
	return err
}

func (r *CircuitBreakerRepository) RemoveFollow(ctx context.Context, followerID, followedID string) error {
	_, err := guard(ctx, r, func() (struct{}, error) {
		return struct{}{}, r.repo.RemoveFollow(ctx, followerID, followedID)
	})
	return err
}

func (r *CircuitBreakerRepository) State() string {
	if r.cb == nil {
		return "disabled"
	}
	return r.cb.State().String()
}

func (r *CircuitBreakerRepository) IsOpen() bool {
	if r.cb == nil {
		return false
	}
	return r.cb.IsOpen()
}
