package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/service"
	apperrors "github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ParticipantHandler struct {
	chatService service.ChatService
	log         logger.Logger
}

func NewParticipantHandler(chatService service.ChatService, log logger.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		chatService: chatService,
		log:         log,
	}
}

type RegisterParticipantRequest struct {
	Name string `json:"name" validate:"required"`
}

type ParticipantResponse struct {
	Name string `json:"name"`
	// LastStatus is milliseconds since the Unix epoch.
	LastStatus int64 `json:"lastStatus"`
}

func newParticipantResponse(p *domain.Participant) ParticipantResponse {
	return ParticipantResponse{
		Name:       p.Name,
		LastStatus: p.LastStatus.UnixMilli(),
	}
}

// decodeJSON decodes the body into req. An empty body decodes as {} so that
// missing fields are reported by validation.
func decodeJSON(c *gin.Context, req any) error {
	err := c.ShouldBindJSON(req)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeMismatch(typeErr)
	}
	return errMalformedBody
}

func bindJSON(c *gin.Context, req any) error {
	if err := decodeJSON(c, req); err != nil {
		return err
	}
	return validateBody(req)
}

func (h *ParticipantHandler) Register(c *gin.Context) {
	var req RegisterParticipantRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	if _, err := h.chatService.RegisterParticipant(c.Request.Context(), req.Name); err != nil {
		if errors.Is(err, apperrors.ErrInvalidName) {
			err = apperrors.NewValidationError(`"name" is not allowed to be empty`)
		}
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusCreated)
}

func (h *ParticipantHandler) List(c *gin.Context) {
	participants, err := h.chatService.ListParticipants(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	response := make([]ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		response = append(response, newParticipantResponse(p))
	}
	c.JSON(http.StatusOK, response)
}
