package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
	apperrors "github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
)

// In-process stores. They back the memory driver and the handler tests.

type memoryParticipant struct {
	participant domain.Participant
	seq         int64
}

type memoryParticipantRepository struct {
	mu      sync.RWMutex
	byName  map[string]*memoryParticipant
	nextSeq int64
}

func NewMemoryParticipantRepository() ParticipantRepository {
	return &memoryParticipantRepository{byName: make(map[string]*memoryParticipant)}
}

func (r *memoryParticipantRepository) Create(_ context.Context, participant *domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[participant.Name]; ok {
		return apperrors.ErrNameTaken
	}
	r.nextSeq++
	r.byName[participant.Name] = &memoryParticipant{participant: *participant, seq: r.nextSeq}
	return nil
}

func (r *memoryParticipantRepository) Get(_ context.Context, name string) (*domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byName[name]
	if !ok {
		return nil, apperrors.ErrParticipantNotFound
	}
	p := entry.participant
	return &p, nil
}

func (r *memoryParticipantRepository) List(_ context.Context) ([]*domain.Participant, error) {
	r.mu.RLock()
	entries := make([]*memoryParticipant, 0, len(r.byName))
	for _, entry := range r.byName {
		copied := *entry
		entries = append(entries, &copied)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	participants := make([]*domain.Participant, 0, len(entries))
	for _, entry := range entries {
		p := entry.participant
		participants = append(participants, &p)
	}
	return participants, nil
}

func (r *memoryParticipantRepository) Touch(_ context.Context, name string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byName[name]
	if !ok {
		return apperrors.ErrParticipantNotFound
	}
	entry.participant.LastStatus = at
	return nil
}

func (r *memoryParticipantRepository) Delete(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; !ok {
		return false, nil
	}
	delete(r.byName, name)
	return true, nil
}

func (r *memoryParticipantRepository) DeleteStale(_ context.Context, name string, cutoff time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byName[name]
	if !ok || entry.participant.LastStatus.After(cutoff) {
		return false, nil
	}
	delete(r.byName, name)
	return true, nil
}

type memoryMessageRepository struct {
	mu       sync.RWMutex
	messages []domain.Message
}

func NewMemoryMessageRepository() MessageRepository {
	return &memoryMessageRepository{}
}

func (r *memoryMessageRepository) Append(_ context.Context, message *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n := len(r.messages); n > 0 && message.SentAt.Before(r.messages[n-1].SentAt) {
		message.SentAt = r.messages[n-1].SentAt
	}
	message.ID = int64(len(r.messages) + 1)
	r.messages = append(r.messages, *message)
	return nil
}

func (r *memoryMessageRepository) List(_ context.Context) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := make([]*domain.Message, 0, len(r.messages))
	for i := range r.messages {
		m := r.messages[i]
		messages = append(messages, &m)
	}
	return messages, nil
}
