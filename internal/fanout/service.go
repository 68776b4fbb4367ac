// Package fanout turns MessageCreated events into timeline entries.
//
// Timelines are materialized on write: each message costs one entry per
// follower plus one for the author, so that a timeline read is a single
// indexed page scan with no joins. The price is write amplification for
// authors with many followers, and followers gained after a message was
// posted never see it (no backfill).
package fanout

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"flock/internal/config"
	"flock/internal/constants"
	"flock/internal/logger"
	"flock/internal/timeline"
	pkgerrors "flock/pkg/errors"
	"flock/pkg/metrics"
	"flock/pkg/models"
	"flock/pkg/retry"
	"flock/pkg/tracing"
)

//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=../mocks/fanout_mock.go -package=mocks -mock_names=FollowerSource=MockFollowerSource,EntryWriter=MockEntryWriter,CacheInvalidator=MockCacheInvalidator

type FollowerSource interface {
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
}

// EntryWriter must be idempotent per entry id.
type EntryWriter interface {
	BulkUpsert(ctx context.Context, entries []timeline.Entry) (int64, error)
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, ownerID string) error
}

type Service struct {
	followers   FollowerSource
	writer      EntryWriter
	invalidator CacheInvalidator
	mode        string
	concurrency int
	logger      logger.Logger
}

func NewService(followers FollowerSource, writer EntryWriter, invalidator CacheInvalidator, timelineCfg config.TimelineConfig, fanoutCfg config.FanoutConfig, log logger.Logger) *Service {
	concurrency := fanoutCfg.InvalidationConcurrency
	if concurrency <= 0 {
		concurrency = constants.DefaultInvalidationConcurrency
	}
	return &Service{
		followers:   followers,
		writer:      writer,
		invalidator: invalidator,
		mode:        timelineCfg.InvalidationMode(),
		concurrency: concurrency,
		logger:      log,
	}
}

// Handle processes one envelope. A nil return means the entries are durable
// and the event may be acknowledged. Malformed payloads are returned as fatal
// so the consumer parks them instead of redelivering forever.
func (s *Service) Handle(ctx context.Context, env models.EventEnvelope) error {
	if env.Type != models.EventTypeMessageCreated {
		s.logger.DebugwCtx(ctx, "Skipping event of unknown type", "type", env.Type)
		metrics.FanoutEventsTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	event, err := env.DecodeMessageCreated()
	if err != nil {
		metrics.FanoutEventsTotal.WithLabelValues("invalid").Inc()
		return retry.NewFatalError(pkgerrors.ErrValidation.
			WithMessage("invalid message.created payload").
			WithCause(err))
	}

	return s.FanOut(ctx, event)
}

func (s *Service) FanOut(ctx context.Context, event *models.MessageCreated) error {
	ctx, span := tracing.GetTracer(constants.ServiceNameFanout).Start(ctx, "fanout.process")
	defer span.End()
	span.SetAttributes(
		attribute.String("message.id", event.MessageID),
		attribute.String("author.id", event.AuthorID),
	)

	start := time.Now()

	followerIDs, err := s.followers.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		metrics.ObserveFanoutDuration(time.Since(start), "error")
		metrics.FanoutEventsTotal.WithLabelValues("error").Inc()
		return err
	}

	owners := lo.Uniq(append([]string{event.AuthorID}, followerIDs...))
	entries := lo.Map(owners, func(owner string, _ int) timeline.Entry {
		return timeline.NewEntry(owner, event.MessageID, event.AuthorID, event.Text, event.CreatedAt)
	})
	metrics.FanoutRecipients.Observe(float64(len(entries)))

	created, err := s.writer.BulkUpsert(ctx, entries)
	if err != nil {
		metrics.ObserveFanoutDuration(time.Since(start), "error")
		metrics.FanoutEventsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.FanoutEntriesWrittenTotal.Add(float64(created))

	s.invalidate(ctx, owners)

	metrics.ObserveFanoutDuration(time.Since(start), "success")
	metrics.FanoutEventsTotal.WithLabelValues("success").Inc()
	s.logger.InfowCtx(ctx, "Message fanned out",
		"message_id", event.MessageID,
		"author_id", event.AuthorID,
		"recipients", len(entries),
		"created", created,
	)
	return nil
}

// invalidate is best-effort. A failed delete leaves a page stale until its TTL.
func (s *Service) invalidate(ctx context.Context, owners []string) {
	if s.invalidator == nil || s.mode == constants.InvalidationNone {
		return
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, owner := range owners {
		g.Go(func() error {
			if err := s.invalidator.Invalidate(ctx, owner); err != nil {
				metrics.IncCacheInvalidation(s.mode, "error")
				s.logger.WarnwCtx(ctx, "Failed to invalidate timeline cache", "error", err, "owner_id", owner)
				return nil
			}
			metrics.IncCacheInvalidation(s.mode, "success")
			return nil
		})
	}
	_ = g.Wait()
}
