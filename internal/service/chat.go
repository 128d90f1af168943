package service

import (
	"context"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
)

// ChatService is what the HTTP layer talks to.
type ChatService interface {
	RegisterParticipant(ctx context.Context, name string) (*domain.Participant, error)
	ListParticipants(ctx context.Context) ([]*domain.Participant, error)
	SendMessage(ctx context.Context, from, to, text, kind string) (*domain.Message, error)
	ListVisibleMessages(ctx context.Context, requester string, limit *int) ([]*domain.Message, error)
	Heartbeat(ctx context.Context, name string) error
}

type chatService struct {
	participants ParticipantService
	messages     MessageService
}

func NewChatService(participants ParticipantService, messages MessageService) ChatService {
	return &chatService{
		participants: participants,
		messages:     messages,
	}
}

func (s *chatService) RegisterParticipant(ctx context.Context, name string) (*domain.Participant, error) {
	return s.participants.Register(ctx, name)
}

func (s *chatService) ListParticipants(ctx context.Context) ([]*domain.Participant, error) {
	return s.participants.List(ctx)
}

func (s *chatService) SendMessage(ctx context.Context, from, to, text, kind string) (*domain.Message, error) {
	return s.messages.Send(ctx, from, to, text, domain.MessageKind(kind))
}

func (s *chatService) ListVisibleMessages(ctx context.Context, requester string, limit *int) ([]*domain.Message, error) {
	return s.messages.ListVisible(ctx, requester, limit)
}

func (s *chatService) Heartbeat(ctx context.Context, name string) error {
	return s.participants.Heartbeat(ctx, name)
}
