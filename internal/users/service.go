package users

import (
	"context"
	"slices"
	"strings"

	"flock/internal/logger"
	pkgerrors "flock/pkg/errors"
	"flock/pkg/validation"
)

type Service interface {
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	Follow(ctx context.Context, req FollowRequest) error
	Unfollow(ctx context.Context, req FollowRequest) error
	GetFollowers(ctx context.Context, userID string) ([]User, error)
	GetFollowing(ctx context.Context, userID string) ([]User, error)
}

type service struct {
	repo   Repository
	logger logger.Logger
}

func NewService(repo Repository, log logger.Logger) Service {
	return &service{repo: repo, logger: log}
}

func validateUserID(id string) error {
	if !validation.UUID(id) {
		return pkgerrors.ErrValidation.
			WithMessage("user id must be a valid UUID").
			WithDetail("user_id", id)
	}
	return nil
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	if err := validateUserID(id); err != nil {
		return nil, err
	}
	return s.repo.GetUser(ctx, id)
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	s.logger.InfowCtx(ctx, "User created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *service) Follow(ctx context.Context, req FollowRequest) error {
	if err := s.checkPair(ctx, req); err != nil {
		return err
	}

	if err := s.repo.AddFollow(ctx, req.FollowerID, req.FollowedID); err != nil {
		return err
	}

	s.logger.InfowCtx(ctx, "User followed", "follower_id", req.FollowerID, "followed_id", req.FollowedID)
	return nil
}

func (s *service) Unfollow(ctx context.Context, req FollowRequest) error {
	if err := s.checkPair(ctx, req); err != nil {
		return err
	}

	if err := s.repo.RemoveFollow(ctx, req.FollowerID, req.FollowedID); err != nil {
		return err
	}

	s.logger.InfowCtx(ctx, "User unfollowed", "follower_id", req.FollowerID, "followed_id", req.FollowedID)
	return nil
}

// checkPair validates both ids, rejects self-follow and requires both users to exist.
func (s *service) checkPair(ctx context.Context, req FollowRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if req.FollowerID == req.FollowedID {
		return pkgerrors.ErrValidation.
			WithMessage("users cannot follow themselves").
			WithDetail("user_id", req.FollowerID)
	}

	if _, err := s.repo.GetUser(ctx, req.FollowerID); err != nil {
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.ErrNotFound.WithMessage("follower not found").WithDetail("user_id", req.FollowerID)
		}
		return err
	}
	if _, err := s.repo.GetUser(ctx, req.FollowedID); err != nil {
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.ErrNotFound.WithMessage("followed user not found").WithDetail("user_id", req.FollowedID)
		}
		return err
	}
	return nil
}

func (s *service) GetFollowers(ctx context.Context, userID string) ([]User, error) {
	return s.related(ctx, userID, s.repo.GetFollowerIDs)
}

func (s *service) GetFollowing(ctx context.Context, userID string) ([]User, error) {
	return s.related(ctx, userID, s.repo.GetFollowingIDs)
}

func (s *service) related(ctx context.Context, userID string, ids func(context.Context, string) ([]string, error)) ([]User, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	relatedIDs, err := ids(ctx, userID)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.GetUsersByIDs(ctx, relatedIDs)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(users, func(a, b User) int { return strings.Compare(a.Username, b.Username) })
	return users, nil
}
