package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/clock"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/repository"
	apperrors "github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"
)

// MessageService is the chat log seen through the visibility rules.
type MessageService interface {
	Send(ctx context.Context, from, to, text string, kind domain.MessageKind) (*domain.Message, error)
	// AppendStatus writes a system join/leave notice for name.
	AppendStatus(ctx context.Context, name, text string) (*domain.Message, error)
	// ListVisible returns what requester may read. With a limit the result
	// is the newest limit entries, newest first; without one it is the
	// whole visible log in insertion order.
	ListVisible(ctx context.Context, requester string, limit *int) ([]*domain.Message, error)
}

type messageService struct {
	messageRepo     repository.MessageRepository
	participantRepo repository.ParticipantRepository
	clock           clock.Clock
	broadcastTarget string
	defaultLimit    int
	log             logger.Logger
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	participantRepo repository.ParticipantRepository,
	clk clock.Clock,
	broadcastTarget string,
	defaultLimit int,
	log logger.Logger,
) MessageService {
	return &messageService{
		messageRepo:     messageRepo,
		participantRepo: participantRepo,
		clock:           clk,
		broadcastTarget: broadcastTarget,
		defaultLimit:    defaultLimit,
		log:             log,
	}
}

func (s *messageService) Send(ctx context.Context, from, to, text string, kind domain.MessageKind) (*domain.Message, error) {
	if from == "" {
		return nil, apperrors.ErrMissingUser
	}
	// client-facing field messages come from request validation; these
	// checks only guard callers that bypass it
	if to == "" || text == "" {
		return nil, fmt.Errorf("%w: message needs a recipient and text", apperrors.ErrInvalidInput)
	}
	if _, err := domain.ParseMessageKind(string(kind)); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	if _, err := s.participantRepo.Get(ctx, from); err != nil {
		if errors.Is(err, apperrors.ErrParticipantNotFound) {
			s.log.Debug("Rejected message from absent participant", "from", from)
		}
		return nil, err
	}

	message := &domain.Message{
		From:   from,
		To:     to,
		Text:   text,
		Kind:   kind,
		SentAt: s.clock.Now(),
	}
	if err := s.messageRepo.Append(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

func (s *messageService) AppendStatus(ctx context.Context, name, text string) (*domain.Message, error) {
	message := domain.NewStatusMessage(name, text, s.broadcastTarget)
	message.SentAt = s.clock.Now()
	if err := s.messageRepo.Append(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *messageService) ListVisible(ctx context.Context, requester string, limit *int) ([]*domain.Message, error) {
	if requester == "" {
		return nil, apperrors.ErrMissingUser
	}
	if limit != nil && *limit <= 0 {
		return nil, apperrors.ErrInvalidLimit
	}

	messages, err := s.messageRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := domain.VisibleTo(messages, requester, s.broadcastTarget)
	switch {
	case limit != nil:
		return domain.MostRecent(visible, *limit), nil
	case s.defaultLimit > 0:
		return domain.MostRecent(visible, s.defaultLimit), nil
	default:
		return visible, nil
	}
}
