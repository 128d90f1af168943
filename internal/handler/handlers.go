package handler

import (
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/config"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/service"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"
)

type Handlers struct {
	Health      *HealthHandler
	Participant *ParticipantHandler
	Message     *MessageHandler
	Status      *StatusHandler
}

func NewHandlers(services *service.Services, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(cfg),
		Participant: NewParticipantHandler(services.Chat, log),
		Message:     NewMessageHandler(services.Chat, log),
		Status:      NewStatusHandler(services.Chat, log),
	}
}
