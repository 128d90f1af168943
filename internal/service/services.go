package service

import (
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/clock"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/config"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/repository"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"
)

type Services struct {
	Participant ParticipantService
	Message     MessageService
	Chat        ChatService
	Sweeper     *Sweeper
	RateLimit   RateLimitService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, clk clock.Clock, log logger.Logger) *Services {
	participants := NewParticipantService(repos.Participant, repos.Message, clk, cfg.Chat.BroadcastTarget, log)
	messages := NewMessageService(repos.Message, repos.Participant, clk, cfg.Chat.BroadcastTarget, cfg.Chat.DefaultLimit, log)

	services := &Services{
		Participant: participants,
		Message:     messages,
		Chat:        NewChatService(participants, messages),
		Sweeper:     NewSweeper(participants, messages, cfg.Chat, log),
	}

	// Rate limiting needs redis
	if repos.RateLimit != nil && cfg.RateLimit.Enabled {
		services.RateLimit = NewRateLimitService(repos.RateLimit, cfg.RateLimit.Requests, cfg.RateLimit.Window, log)
		log.Info("RateLimit service initialized", "requests", cfg.RateLimit.Requests, "window", cfg.RateLimit.Window)
	} else {
		log.Warn("RateLimit repository is nil, rate limiting disabled")
	}

	return services
}
