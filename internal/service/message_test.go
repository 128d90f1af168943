package service

import (
	"context"
	"testing"
	"time"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/clock"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/mocks"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/repository"
	apperrors "github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMessageService_Send_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	// validation happens before any store access
	svc := NewMessageService(
		mocks.NewMockMessageRepository(ctrl),
		mocks.NewMockParticipantRepository(ctrl),
		clock.Fake(epoch), "Todos", 0, logger.Discard(),
	)

	tests := []struct {
		name    string
		from    string
		to      string
		text    string
		kind    domain.MessageKind
		wantErr error
	}{
		{
			name:    "missing sender",
			to:      "Todos",
			text:    "oi",
			kind:    domain.KindBroadcast,
			wantErr: apperrors.ErrMissingUser,
		},
		{
			name:    "missing fields",
			from:    "Ana",
			kind:    domain.KindBroadcast,
			wantErr: apperrors.ErrInvalidInput,
		},
		{
			name:    "status cannot be sent",
			from:    "Ana",
			to:      "Todos",
			text:    "oi",
			kind:    domain.KindStatus,
			wantErr: apperrors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, err := svc.Send(context.Background(), tt.from, tt.to, tt.text, tt.kind)
			req.ErrorIs(err, tt.wantErr)
			req.Equal(422, apperrors.HTTPStatusFromError(err))
		})
	}
}

func TestMessageService_Send_UnknownSender(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messageRepo := mocks.NewMockMessageRepository(ctrl)
	participantRepo := mocks.NewMockParticipantRepository(ctrl)
	svc := NewMessageService(messageRepo, participantRepo, clock.Fake(epoch), "Todos", 0, logger.Discard())

	participantRepo.EXPECT().Get(gomock.Any(), "Ana").Return(nil, apperrors.ErrParticipantNotFound)
	messageRepo.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.Send(context.Background(), "Ana", "Todos", "oi", domain.KindBroadcast)
	req.ErrorIs(err, apperrors.ErrParticipantNotFound)
}

func TestMessageService_Send(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messageRepo := mocks.NewMockMessageRepository(ctrl)
	participantRepo := mocks.NewMockParticipantRepository(ctrl)
	svc := NewMessageService(messageRepo, participantRepo, clock.Fake(epoch), "Todos", 0, logger.Discard())

	participantRepo.EXPECT().Get(gomock.Any(), "Ana").Return(&domain.Participant{Name: "Ana", LastStatus: epoch}, nil)
	messageRepo.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *domain.Message) error {
			m.ID = 42
			return nil
		})

	m, err := svc.Send(context.Background(), "Ana", "Bia", "psiu", domain.KindPrivate)
	req.NoError(err)
	req.EqualValues(42, m.ID)
	req.Equal("Bia", m.To)
	req.Equal(domain.KindPrivate, m.Kind)
	req.True(epoch.Equal(m.SentAt))
}

func intPtr(n int) *int { return &n }

// seedLog builds a log with a join notice, two broadcasts and private
// messages both to and from Ana plus one between strangers.
func seedLog(t *testing.T, defaultLimit int) MessageService {
	t.Helper()
	req := require.New(t)
	ctx := context.Background()
	clk := clock.Fake(epoch)
	participants := repository.NewMemoryParticipantRepository()
	messages := repository.NewMemoryMessageRepository()
	registry := NewParticipantService(participants, messages, clk, "Todos", logger.Discard())
	svc := NewMessageService(messages, participants, clk, "Todos", defaultLimit, logger.Discard())

	for _, name := range []string{"Ana", "Bia", "Caio"} {
		_, err := registry.Register(ctx, name)
		req.NoError(err)
	}
	send := func(from, to, text string, kind domain.MessageKind) {
		clk.Advance(time.Second)
		_, err := svc.Send(ctx, from, to, text, kind)
		req.NoError(err)
	}
	send("Ana", "Todos", "oi", domain.KindBroadcast)
	send("Bia", "Caio", "so pra voce", domain.KindPrivate)
	send("Bia", "Ana", "psiu", domain.KindPrivate)
	send("Caio", "Bia", "em aberto", domain.KindBroadcast)
	send("Ana", "Caio", "oi Caio", domain.KindPrivate)
	return svc
}

func texts(messages []*domain.Message) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.Text)
	}
	return out
}

func TestMessageService_ListVisible(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := seedLog(t, 0)

	all, err := svc.ListVisible(ctx, "Ana", nil)
	req.NoError(err)
	req.Equal([]string{
		domain.StatusJoinedText, domain.StatusJoinedText, domain.StatusJoinedText,
		"oi", "psiu", "em aberto", "oi Caio",
	}, texts(all))

	// The limit window is the newest entries, newest first
	recent, err := svc.ListVisible(ctx, "Ana", intPtr(3))
	req.NoError(err)
	req.Equal([]string{"oi Caio", "em aberto", "psiu"}, texts(recent))
	for i, m := range recent {
		req.Equal(all[len(all)-1-i].ID, m.ID)
	}

	// A limit beyond the log size returns everything reversed
	everything, err := svc.ListVisible(ctx, "Ana", intPtr(100))
	req.NoError(err)
	req.Len(everything, len(all))
}

func TestMessageService_ListVisible_DefaultLimit(t *testing.T) {
	req := require.New(t)
	svc := seedLog(t, 2)

	recent, err := svc.ListVisible(context.Background(), "Caio", nil)
	req.NoError(err)
	req.Equal([]string{"oi Caio", "em aberto"}, texts(recent))
}

func TestMessageService_ListVisible_Errors(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := seedLog(t, 0)

	_, err := svc.ListVisible(ctx, "Ana", intPtr(0))
	req.ErrorIs(err, apperrors.ErrInvalidLimit)
	_, err = svc.ListVisible(ctx, "Ana", intPtr(-4))
	req.ErrorIs(err, apperrors.ErrInvalidLimit)
	_, err = svc.ListVisible(ctx, "", nil)
	req.ErrorIs(err, apperrors.ErrMissingUser)
}
