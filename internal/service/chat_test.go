package service

import (
	"context"
	"testing"
	"time"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/clock"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/repository"
	apperrors "github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/stretchr/testify/require"
)

func TestChatService_Scenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	clk := clock.Fake(epoch)
	participantRepo := repository.NewMemoryParticipantRepository()
	messageRepo := repository.NewMemoryMessageRepository()
	participants := NewParticipantService(participantRepo, messageRepo, clk, "Todos", logger.Discard())
	messages := NewMessageService(messageRepo, participantRepo, clk, "Todos", 0, logger.Discard())
	chat := NewChatService(participants, messages)
	sweeper := NewSweeper(participants, messages, sweepConfig, logger.Discard())

	_, err := chat.RegisterParticipant(ctx, "Ana")
	req.NoError(err)
	_, err = chat.RegisterParticipant(ctx, "Ana")
	req.ErrorIs(err, apperrors.ErrNameTaken)

	clk.Advance(time.Second)
	_, err = chat.SendMessage(ctx, "Ana", "Todos", "hi", "message")
	req.NoError(err)

	visible, err := chat.ListVisibleMessages(ctx, "Ana", nil)
	req.NoError(err)
	req.Equal([]string{domain.StatusJoinedText, "hi"}, texts(visible))

	// Ana goes quiet past the timeout
	clk.Advance(sweepConfig.HeartbeatTimeout)
	report := sweeper.Sweep(ctx)
	req.Equal([]string{"Ana"}, report.Expired)

	list, err := chat.ListParticipants(ctx)
	req.NoError(err)
	req.Empty(list)

	visible, err = chat.ListVisibleMessages(ctx, "Ana", intPtr(1))
	req.NoError(err)
	req.Len(visible, 1)
	req.Equal(domain.StatusLeftText, visible[0].Text)
	req.Equal("Ana", visible[0].From)

	req.ErrorIs(chat.Heartbeat(ctx, "Ana"), apperrors.ErrParticipantNotFound)
	_, err = chat.SendMessage(ctx, "Ana", "Todos", "ainda aqui?", "message")
	req.ErrorIs(err, apperrors.ErrParticipantNotFound)
}

func TestChatService_SendMessage_UnknownKind(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	clk := clock.Fake(epoch)
	participantRepo := repository.NewMemoryParticipantRepository()
	messageRepo := repository.NewMemoryMessageRepository()
	chat := NewChatService(
		NewParticipantService(participantRepo, messageRepo, clk, "Todos", logger.Discard()),
		NewMessageService(messageRepo, participantRepo, clk, "Todos", 0, logger.Discard()),
	)

	_, err := chat.RegisterParticipant(ctx, "Ana")
	req.NoError(err)

	_, err = chat.SendMessage(ctx, "Ana", "Todos", "oi", "shout")
	req.ErrorIs(err, apperrors.ErrInvalidInput)
}
