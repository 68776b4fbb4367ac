package timeline

import (
	"context"
	"time"

	"github.com/samber/lo"

	"flock/internal/config"
	"flock/internal/constants"
	"flock/internal/logger"
	"flock/internal/users"
	pkgerrors "flock/pkg/errors"
	"flock/pkg/logging"
	"flock/pkg/metrics"
	"flock/pkg/retry"
	"flock/pkg/validation"
)

//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=../mocks/timeline_service_mock.go -package=mocks -mock_names=UserDirectory=MockUserDirectory,Service=MockTimelineService

// UserDirectory resolves timeline owners and message authors.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*users.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]users.User, error)
}

type Service interface {
	GetTimeline(ctx context.Context, userID string, pageNumber, pageSize int) (*Page, error)
}

type Options struct {
	CacheTTL        time.Duration
	DefaultPageSize int
	MaxPageSize     int
	StoreRetry      retry.Policy
}

func OptionsFromConfig(cfg config.TimelineConfig) Options {
	return Options{
		CacheTTL:        cfg.CacheTTL(),
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
		StoreRetry:      retry.ReadPolicy(cfg.StoreRetryAttempts),
	}
}

type service struct {
	store  Store
	cache  Cache
	users  UserDirectory
	opts   Options
	logger logger.Logger
}

func NewService(store Store, cache Cache, directory UserDirectory, opts Options, log logger.Logger) Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = constants.DefaultTimelineCacheTTL
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = constants.DefaultTimelinePageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = constants.DefaultTimelineMaxPageSize
	}
	if opts.StoreRetry.MaxAttempts <= 0 {
		opts.StoreRetry.MaxAttempts = 2
	}
	return &service{store: store, cache: cache, users: directory, opts: opts, logger: log}
}

func (s *service) normalize(pageNumber, pageSize int) (int, int) {
	if pageNumber < 1 {
		pageNumber = constants.DefaultTimelinePageNumber
	}
	if pageSize < 1 {
		pageSize = s.opts.DefaultPageSize
	}
	return pageNumber, min(pageSize, s.opts.MaxPageSize)
}

// GetTimeline serves one page cache-aside. Cache failures degrade to a store
// read; a store that keeps failing after the configured retries answers 503.
func (s *service) GetTimeline(ctx context.Context, userID string, pageNumber, pageSize int) (*Page, error) {
	start := time.Now()

	if !validation.UUID(userID) {
		return nil, pkgerrors.ErrValidation.
			WithMessage("user id must be a valid UUID").
			WithDetail("user_id", userID)
	}

	ctx = logging.WithOwnerID(ctx, userID)
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	pageNumber, pageSize = s.normalize(pageNumber, pageSize)
	key := PageKey(userID, pageNumber, pageSize)

	if s.cache != nil {
		page, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.IncCacheResult("error")
			s.logger.WarnwCtx(ctx, "Timeline cache read failed, falling back to store", "error", err, "key", key)
		case ok:
			metrics.IncCacheResult("hit")
			metrics.ObserveTimelineRead("cache", time.Since(start))
			return page, nil
		default:
			metrics.IncCacheResult("miss")
		}
	}

	entries, total, err := s.queryStore(ctx, userID, pageNumber, pageSize)
	if err != nil {
		return nil, err
	}

	items, err := s.enrich(ctx, entries)
	if err != nil {
		return nil, err
	}

	page := NewPage(items, pageNumber, pageSize, total)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, page, s.opts.CacheTTL); err != nil {
			s.logger.WarnwCtx(ctx, "Failed to cache timeline page", "error", err, "key", key)
		}
	}

	metrics.ObserveTimelineRead("store", time.Since(start))
	return page, nil
}

func (s *service) queryStore(ctx context.Context, ownerID string, pageNumber, pageSize int) ([]Entry, int64, error) {
	var (
		entries []Entry
		total   int64
	)
	err := retry.RetryWithCallback(ctx, s.opts.StoreRetry, func() error {
		var err error
		entries, total, err = s.store.GetPage(ctx, ownerID, pageNumber, pageSize)
		return err
	}, func(attempt int, err error, next time.Duration) {
		s.logger.WarnwCtx(ctx, "Timeline query failed, retrying",
			"error", err,
			"attempt", attempt,
			"next_delay", next,
		)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, pkgerrors.ErrServiceUnavailable.
			WithMessage("timeline store unavailable").
			WithCause(err)
	}
	return entries, total, nil
}

// enrich resolves author names in one batch. Authors that no longer exist are
// shown as "Unknown" rather than failing the page.
func (s *service) enrich(ctx context.Context, entries []Entry) ([]Item, error) {
	if len(entries) == 0 {
		return []Item{}, nil
	}

	authorIDs := lo.Uniq(lo.Map(entries, func(e Entry, _ int) string { return e.AuthorID }))
	authors, err := s.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	names := lo.SliceToMap(authors, func(u users.User) (string, string) { return u.ID, u.Username })

	return lo.Map(entries, func(e Entry, _ int) Item {
		username, ok := names[e.AuthorID]
		if !ok {
			username = constants.UnknownUsername
		}
		return Item{
			ID:        e.MessageID,
			Content:   e.Content,
			CreatedAt: e.CreatedAt,
			UserID:    e.AuthorID,
			Username:  username,
		}
	}), nil
}
