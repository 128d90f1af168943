package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
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

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestParticipantService_Register(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participantRepo := mocks.NewMockParticipantRepository(ctrl)
	messageRepo := mocks.NewMockMessageRepository(ctrl)
	ctx := context.Background()

	// Given a registry backed by mocks
	svc := NewParticipantService(participantRepo, messageRepo, clock.Fake(epoch), "Todos", logger.Discard())

	participantRepo.EXPECT().
		Create(gomock.Any(), &domain.Participant{Name: "Ana", LastStatus: epoch}).
		Return(nil)
	messageRepo.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *domain.Message) error {
			req.Equal("Ana", m.From)
			req.Equal("Todos", m.To)
			req.Equal(domain.StatusJoinedText, m.Text)
			req.Equal(domain.KindStatus, m.Kind)
			req.True(epoch.Equal(m.SentAt))
			return nil
		})

	// When registering
	p, err := svc.Register(ctx, "Ana")

	// Then the participant is stamped with the clock
	req.NoError(err)
	req.Equal("Ana", p.Name)
	req.True(epoch.Equal(p.LastStatus))
}

func TestParticipantService_Register_InvalidName(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	svc := NewParticipantService(
		mocks.NewMockParticipantRepository(ctrl),
		mocks.NewMockMessageRepository(ctrl),
		clock.Fake(epoch), "Todos", logger.Discard(),
	)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := svc.Register(context.Background(), name)
		req.ErrorIs(err, apperrors.ErrInvalidName)
		req.Equal(422, apperrors.HTTPStatusFromError(err))
	}
}

func TestParticipantService_Register_NameTaken(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participantRepo := mocks.NewMockParticipantRepository(ctrl)
	messageRepo := mocks.NewMockMessageRepository(ctrl)
	svc := NewParticipantService(participantRepo, messageRepo, clock.Fake(epoch), "Todos", logger.Discard())

	participantRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(apperrors.ErrNameTaken)
	// no join notice for a failed registration
	messageRepo.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.Register(context.Background(), "Ana")
	req.ErrorIs(err, apperrors.ErrNameTaken)
}

func TestParticipantService_Register_NoticeFailureRollsBack(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participantRepo := mocks.NewMockParticipantRepository(ctrl)
	messageRepo := mocks.NewMockMessageRepository(ctrl)
	svc := NewParticipantService(participantRepo, messageRepo, clock.Fake(epoch), "Todos", logger.Discard())

	storageErr := apperrors.Storage("append message", errors.New("connection reset"))
	gomock.InOrder(
		participantRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
		messageRepo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(storageErr),
		participantRepo.EXPECT().Delete(gomock.Any(), "Ana").Return(true, nil),
	)

	_, err := svc.Register(context.Background(), "Ana")
	req.ErrorIs(err, apperrors.ErrStorageUnavailable)
	req.Equal(500, apperrors.HTTPStatusFromError(err))
}

func TestParticipantService_Register_Concurrent(t *testing.T) {
	req := require.New(t)
	svc := NewParticipantService(
		repository.NewMemoryParticipantRepository(),
		repository.NewMemoryMessageRepository(),
		clock.Real(), "Todos", logger.Discard(),
	)

	const attempts = 32
	var ok, taken atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Register(context.Background(), "Ana")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, apperrors.ErrNameTaken):
				taken.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	req.EqualValues(1, ok.Load())
	req.EqualValues(attempts-1, taken.Load())
}

func TestParticipantService_Heartbeat(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	clk := clock.Fake(epoch)
	svc := NewParticipantService(
		repository.NewMemoryParticipantRepository(),
		repository.NewMemoryMessageRepository(),
		clk, "Todos", logger.Discard(),
	)

	_, err := svc.Register(ctx, "Ana")
	req.NoError(err)

	// When a heartbeat arrives later
	at := clk.Advance(7 * time.Second)
	req.NoError(svc.Heartbeat(ctx, "Ana"))

	// Then lastStatus is the heartbeat time
	p, err := svc.Get(ctx, "Ana")
	req.NoError(err)
	req.True(at.Equal(p.LastStatus))

	req.ErrorIs(svc.Heartbeat(ctx, "Bia"), apperrors.ErrParticipantNotFound)
	req.ErrorIs(svc.Heartbeat(ctx, ""), apperrors.ErrParticipantNotFound)
}

func TestParticipantService_ExpiredAndExpire(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	clk := clock.Fake(epoch)
	svc := NewParticipantService(
		repository.NewMemoryParticipantRepository(),
		repository.NewMemoryMessageRepository(),
		clk, "Todos", logger.Discard(),
	)

	_, err := svc.Register(ctx, "Ana")
	req.NoError(err)
	clk.Advance(5 * time.Second)
	_, err = svc.Register(ctx, "Bia")
	req.NoError(err)

	// At exactly the timeout Ana is expired, Bia is not
	clk.Advance(5 * time.Second)
	expired, cutoff, err := svc.Expired(ctx, 10*time.Second)
	req.NoError(err)
	req.Len(expired, 1)
	req.Equal("Ana", expired[0].Name)
	req.True(epoch.Equal(cutoff))

	// A heartbeat after the snapshot keeps Ana in
	req.NoError(svc.Heartbeat(ctx, "Ana"))
	removed, err := svc.Expire(ctx, "Ana", cutoff)
	req.NoError(err)
	req.False(removed)

	removed, err = svc.Remove(ctx, "Ana")
	req.NoError(err)
	req.True(removed)
	removed, err = svc.Remove(ctx, "Ana")
	req.NoError(err)
	req.False(removed)
}
