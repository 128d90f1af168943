package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/middleware"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/service"
	apperrors "github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TimeLayout is how message times are shown to clients (HH:mm:ss).
const TimeLayout = "15:04:05"

type MessageHandler struct {
	chatService service.ChatService
	log         logger.Logger
}

func NewMessageHandler(chatService service.ChatService, log logger.Logger) *MessageHandler {
	return &MessageHandler{
		chatService: chatService,
		log:         log,
	}
}

type SendMessageRequest struct {
	To   string `json:"to" validate:"required"`
	Text string `json:"text" validate:"required"`
	Type string `json:"type" validate:"required,oneof=message private_message"`
	// Kind is accepted as an alias of Type.
	Kind string `json:"kind,omitempty" validate:"-"`
}

type MessageResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

func newMessageResponse(m *domain.Message) MessageResponse {
	return MessageResponse{
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Type: string(m.Kind),
		Time: m.SentAt.Local().Format(TimeLayout),
	}
}

func (h *MessageHandler) Send(c *gin.Context) {
	from := middleware.User(c)
	if from == "" {
		_ = c.Error(apperrors.ErrMissingUser)
		return
	}

	var req SendMessageRequest
	if err := decodeJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.Type == "" {
		req.Type = req.Kind
	}
	if err := validateBody(&req); err != nil {
		_ = c.Error(err)
		return
	}

	_, err := h.chatService.SendMessage(c.Request.Context(), from, req.To, req.Text, req.Type)
	if err != nil {
		if errors.Is(err, apperrors.ErrParticipantNotFound) {
			err = apperrors.NewValidationError(`"User" must be a participant in the room`)
		}
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusCreated)
}

func (h *MessageHandler) List(c *gin.Context) {
	requester := middleware.User(c)
	if requester == "" {
		_ = c.Error(apperrors.ErrMissingUser)
		return
	}

	var limit *int
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			_ = c.Error(apperrors.ErrInvalidLimit)
			return
		}
		limit = &n
	}

	messages, err := h.chatService.ListVisibleMessages(c.Request.Context(), requester, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, newMessageResponse(m))
	}
	c.JSON(http.StatusOK, response)
}
