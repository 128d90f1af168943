package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/clock"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/repository"
	apperrors "github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/samber/lo"
)

// ParticipantService is the participant registry: who is present and when
// each participant last sent a heartbeat.
type ParticipantService interface {
	// Register adds the participant and writes the join notice. Callers
	// never observe one without the other.
	Register(ctx context.Context, name string) (*domain.Participant, error)
	Heartbeat(ctx context.Context, name string) error
	Get(ctx context.Context, name string) (*domain.Participant, error)
	List(ctx context.Context) ([]*domain.Participant, error)
	Remove(ctx context.Context, name string) (bool, error)
	// Expired snapshots the participants whose last heartbeat is at least
	// timeout old.
	Expired(ctx context.Context, timeout time.Duration) ([]*domain.Participant, time.Time, error)
	// Expire removes the participant only if it has not sent a heartbeat
	// since cutoff.
	Expire(ctx context.Context, name string, cutoff time.Time) (bool, error)
}

type participantService struct {
	participantRepo repository.ParticipantRepository
	messageRepo     repository.MessageRepository
	clock           clock.Clock
	broadcastTarget string
	log             logger.Logger
}

func NewParticipantService(
	participantRepo repository.ParticipantRepository,
	messageRepo repository.MessageRepository,
	clk clock.Clock,
	broadcastTarget string,
	log logger.Logger,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		messageRepo:     messageRepo,
		clock:           clk,
		broadcastTarget: broadcastTarget,
		log:             log,
	}
}

func (s *participantService) Register(ctx context.Context, name string) (*domain.Participant, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	participant := &domain.Participant{
		Name:       name,
		LastStatus: s.clock.Now(),
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		return nil, err
	}

	notice := domain.NewStatusMessage(name, domain.StatusJoinedText, s.broadcastTarget)
	notice.SentAt = participant.LastStatus
	if err := s.messageRepo.Append(ctx, notice); err != nil {
		s.log.Error("Failed to write join notice, rolling back registration", "error", err, "name", name)
		// Undo the insert so a retry can succeed. The request ctx may be the
		// reason the append failed, so the rollback gets its own.
		rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if _, rbErr := s.participantRepo.Delete(rollbackCtx, name); rbErr != nil {
			s.log.Error("Failed to roll back registration", "error", rbErr, "name", name)
			return nil, errors.Join(fmt.Errorf("write join notice: %w", err), rbErr)
		}
		return nil, fmt.Errorf("write join notice: %w", err)
	}

	s.log.Info("Participant registered", "name", name)
	return participant, nil
}

func (s *participantService) Heartbeat(ctx context.Context, name string) error {
	if name == "" {
		return apperrors.ErrParticipantNotFound
	}
	return s.participantRepo.Touch(ctx, name, s.clock.Now())
}

func (s *participantService) Get(ctx context.Context, name string) (*domain.Participant, error) {
	return s.participantRepo.Get(ctx, name)
}

func (s *participantService) List(ctx context.Context) ([]*domain.Participant, error) {
	return s.participantRepo.List(ctx)
}

func (s *participantService) Remove(ctx context.Context, name string) (bool, error) {
	return s.participantRepo.Delete(ctx, name)
}

func (s *participantService) Expired(ctx context.Context, timeout time.Duration) ([]*domain.Participant, time.Time, error) {
	now := s.clock.Now()
	participants, err := s.participantRepo.List(ctx)
	if err != nil {
		return nil, now, err
	}

	expired := lo.Filter(participants, func(p *domain.Participant, _ int) bool {
		return p.IsExpired(now, timeout)
	})
	return expired, now.Add(-timeout), nil
}

func (s *participantService) Expire(ctx context.Context, name string, cutoff time.Time) (bool, error) {
	return s.participantRepo.DeleteStale(ctx, name, cutoff)
}
