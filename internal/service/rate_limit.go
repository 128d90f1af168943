package service

import (
	"context"
	"time"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/repository"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"
)

type RateLimitService interface {
	// Allow counts one request for scope/key and reports whether it fits in
	// the current window.
	Allow(ctx context.Context, scope, key string) (*domain.RateLimitDecision, error)
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	limit         int
	window        time.Duration
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, limit int, window time.Duration, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		limit:         limit,
		window:        window,
		log:           log,
	}
}

func (s *rateLimitService) Allow(ctx context.Context, scope, key string) (*domain.RateLimitDecision, error) {
	count, ttl, err := s.rateLimitRepo.Increment(ctx, scope+":"+key, s.window)
	if err != nil {
		return nil, err
	}
	if ttl < 0 {
		ttl = s.window
	}

	decision := &domain.RateLimitDecision{
		Allowed:   count <= int64(s.limit),
		Limit:     s.limit,
		Remaining: max(s.limit-int(count), 0),
		ResetIn:   ttl,
	}
	if !decision.Allowed {
		s.log.Warn("Rate limit exceeded", "scope", scope, "key", key, "count", count)
	}
	return decision, nil
}
