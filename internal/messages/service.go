package messages

import (
	"context"
	"time"

	"github.com/google/uuid"

	"flock/internal/logger"
	"flock/internal/users"
	pkgerrors "flock/pkg/errors"
	"flock/pkg/logging"
	"flock/pkg/metrics"
	"flock/pkg/validation"
)

//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=../mocks/messages_service_mock.go -package=mocks -mock_names=AuthorLookup=MockAuthorLookup,Service=MockMessageService

type AuthorLookup interface {
	GetUser(ctx context.Context, id string) (*users.User, error)
}

type Service interface {
	CreateMessage(ctx context.Context, req CreateMessageRequest) (*MessageResponse, error)
}

type service struct {
	repo      Repository
	authors   AuthorLookup
	publisher Publisher
	logger    logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, authors AuthorLookup, publisher Publisher, log logger.Logger) Service {
	return &service{
		repo:      repo,
		authors:   authors,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// CreateMessage stores the message and then publishes MessageCreated. It
// never waits for fan-out. A publish failure is reported to the caller even
// though the message itself is already stored.
func (s *service) CreateMessage(ctx context.Context, req CreateMessageRequest) (*MessageResponse, error) {
	if err := validation.Struct(req); err != nil {
		metrics.MessagesCreatedTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	author, err := s.authors.GetUser(ctx, req.UserID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			metrics.MessagesCreatedTotal.WithLabelValues("invalid").Inc()
		}
		return nil, err
	}

	msg := &Message{
		ID:        uuid.NewString(),
		AuthorID:  author.ID,
		Text:      req.Content,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	ctx = logging.WithMessageID(ctx, msg.ID)

	if err := s.repo.Insert(ctx, msg); err != nil {
		metrics.MessagesCreatedTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.publisher.PublishMessageCreated(ctx, msg); err != nil {
		metrics.MessagesCreatedTotal.WithLabelValues("unpublished").Inc()
		s.logger.ErrorwCtx(ctx, "Message stored without event", "error", err, "author_id", msg.AuthorID)
		return nil, err
	}

	metrics.MessagesCreatedTotal.WithLabelValues("success").Inc()
	s.logger.InfowCtx(ctx, "Message created", "author_id", msg.AuthorID)

	return &MessageResponse{
		ID:        msg.ID,
		Content:   msg.Text,
		CreatedAt: msg.CreatedAt,
		UserID:    author.ID,
		Username:  author.Username,
	}, nil
}
