package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	pkgerrors "flock/pkg/errors"
	"flock/pkg/metrics"
)

//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=../mocks/users_repository_mock.go -package=mocks -mock_names=Repository=MockUserRepository

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// Repository is the follow-graph store: users and directed follow edges.
type Repository interface {
	GetUser(ctx context.Context, id string) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, username string) (*User, error)
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
	GetFollowingIDs(ctx context.Context, userID string) ([]string, error)
	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)
	AddFollow(ctx context.Context, followerID, followedID string) error
	RemoveFollow(ctx context.Context, followerID, followedID string) error
}

type PostgresStore struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (r *PostgresStore) GetUser(ctx context.Context, id string) (user *User, err error) {
	defer observe("get_user", time.Now(), &err)

	var u User
	err = r.db.GetContext(ctx, &u, `SELECT id, username, created_at FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.
			WithMessage(fmt.Sprintf("user %s not found", id)).
			WithDetail("user_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetUsersByIDs returns the users that exist among ids, in no particular order.
func (r *PostgresStore) GetUsersByIDs(ctx context.Context, ids []string) (result []User, err error) {
	if len(ids) == 0 {
		return []User{}, nil
	}
	defer observe("get_users_by_ids", time.Now(), &err)

	query, args, err := sqlx.In(`SELECT id, username, created_at FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build users query: %w", err)
	}

	users := make([]User, 0, len(ids))
	if err = r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

func (r *PostgresStore) ListUsers(ctx context.Context) (result []User, err error) {
	defer observe("list_users", time.Now(), &err)

	users := make([]User, 0)
	if err = r.db.SelectContext(ctx, &users, `SELECT id, username, created_at FROM users ORDER BY username`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *PostgresStore) CreateUser(ctx context.Context, username string) (user *User, err error) {
	defer observe("create_user", time.Now(), &err)

	var u User
	err = r.db.GetContext(ctx, &u,
		`INSERT INTO users (username) VALUES ($1) RETURNING id, username, created_at`, username)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case pqUniqueViolation:
				return nil, pkgerrors.ErrConflict.WithCause(err).
					WithMessage(fmt.Sprintf("username '%s' is already taken", username))
			case pqCheckViolation:
				return nil, pkgerrors.ErrValidation.WithCause(err).
					WithMessage("username must be between 1 and 50 characters")
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

func (r *PostgresStore) GetFollowerIDs(ctx context.Context, userID string) (ids []string, err error) {
	defer observe("get_follower_ids", time.Now(), &err)

	ids = make([]string, 0)
	if err = r.db.SelectContext(ctx, &ids,
		`SELECT follower_id FROM user_follows WHERE followed_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return ids, nil
}

func (r *PostgresStore) GetFollowingIDs(ctx context.Context, userID string) (ids []string, err error) {
	defer observe("get_following_ids", time.Now(), &err)

	ids = make([]string, 0)
	if err = r.db.SelectContext(ctx, &ids,
		`SELECT followed_id FROM user_follows WHERE follower_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to get followees: %w", err)
	}
	return ids, nil
}

func (r *PostgresStore) IsFollowing(ctx context.Context, followerID, followedID string) (following bool, err error) {
	defer observe("is_following", time.Now(), &err)

	err = r.db.GetContext(ctx, &following,
		`SELECT EXISTS (SELECT 1 FROM user_follows WHERE follower_id = $1 AND followed_id = $2)`,
		followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return following, nil
}

func (r *PostgresStore) AddFollow(ctx context.Context, followerID, followedID string) (err error) {
	defer observe("add_follow", time.Now(), &err)

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_follows (follower_id, followed_id) VALUES ($1, $2)`, followerID, followedID)
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return pkgerrors.ErrConflict.WithCause(err).
				WithMessage(fmt.Sprintf("user %s is already following user %s", followerID, followedID))
		case pqForeignKeyViolation:
			return pkgerrors.ErrNotFound.WithCause(err).WithMessage("user not found")
		case pqCheckViolation:
			return pkgerrors.ErrValidation.WithCause(err).WithMessage("users cannot follow themselves")
		}
	}
	return fmt.Errorf("failed to add follow: %w", err)
}

func (r *PostgresStore) RemoveFollow(ctx context.Context, followerID, followedID string) (err error) {
	defer observe("remove_follow", time.Now(), &err)

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_follows WHERE follower_id = $1 AND followed_id = $2`, followerID, followedID)
	if err != nil {
		return fmt.Errorf("failed to remove follow: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrConflict.
			WithMessage(fmt.Sprintf("user %s is not following user %s", followerID, followedID))
	}
	return nil
}

func observe(operation string, start time.Time, err *error) {
	metrics.ObserveDatabaseQuery("postgres", operation, start, *err)
}
