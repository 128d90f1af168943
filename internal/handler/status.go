package handler

import (
	"net/http"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/middleware"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/service"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	chatService service.ChatService
	log         logger.Logger
}

func NewStatusHandler(chatService service.ChatService, log logger.Logger) *StatusHandler {
	return &StatusHandler{
		chatService: chatService,
		log:         log,
	}
}

// Heartbeat keeps the participant in the User header alive. A missing
// header is treated like an unknown participant.
func (h *StatusHandler) Heartbeat(c *gin.Context) {
	if err := h.chatService.Heartbeat(c.Request.Context(), middleware.User(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusOK)
}
