package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/config"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/redis/go-redis/v9"
)

type Repositories struct {
	Participant ParticipantRepository
	Message     MessageRepository
	RateLimit   RateLimitRepository

	closers []func() error
}

// NewRepositories opens the store selected by cfg.Storage.Driver. The redis
// client is optional and only backs the rate limiter.
func NewRepositories(ctx context.Context, cfg *config.Config, rdb *redis.Client, log logger.Logger) (*Repositories, error) {
	repos := &Repositories{}

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pool, err := OpenPostgres(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		repos.Participant = NewParticipantRepository(pool, log)
		repos.Message = NewMessageRepository(pool, log)
		repos.closers = append(repos.closers, func() error {
			pool.Close()
			return nil
		})

	case config.StorageDriverBadger:
		db, err := OpenBadger(cfg.Badger.Path, log)
		if err != nil {
			return nil, err
		}
		participants, err := NewBadgerParticipantRepository(db, log)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		repos.Participant = participants
		repos.Message = NewBadgerMessageRepository(db, log)
		// the sequence must be released before the db closes
		repos.closers = append(repos.closers, participants.Close, db.Close)

	case config.StorageDriverMemory:
		repos.Participant = NewMemoryParticipantRepository()
		repos.Message = NewMemoryMessageRepository()
		log.Warn("Using in-memory storage, state is lost on restart")

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if rdb != nil {
		repos.RateLimit = NewRateLimitRepository(rdb, log)
		log.Info("RateLimit repository initialized")
	}

	log.Info("Repositories initialized", "driver", cfg.Storage.Driver)
	return repos, nil
}

func (r *Repositories) Close() error {
	var errs []error
	for _, closeFn := range r.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
