package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
	apperrors "github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/dgraph-io/badger/v4"
)

const (
	participantKeyPrefix = "participant:"
	messageKeyPrefix     = "msg:"
	messageHeadKey       = "meta:msg:head"
	participantSeqKey    = "seq:participants"

	// Optimistic transactions that lose a race are replayed against the
	// fresh state this many times before giving up.
	badgerConflictRetries = 5

	// Appends all rewrite the log head, so a burst of N sends can make one
	// of them lose up to N-1 times.
	badgerAppendRetries = 64
)

func OpenBadger(path string, log logger.Logger) (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	log.Info("Badger store opened", "path", path)
	return db, nil
}

func retryOnConflict(fn func() error) error {
	return retryConflicts(badgerConflictRetries, fn)
}

func retryConflicts(attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

type badgerParticipant struct {
	Name       string    `json:"name"`
	LastStatus time.Time `json:"lastStatus"`
	Seq        uint64    `json:"seq"`
}

type badgerParticipantRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log logger.Logger
}

// NewBadgerParticipantRepository keys participants by name. Uniqueness comes
// from badger's conflict detection: two transactions that both read a
// missing key and write it cannot both commit.
func NewBadgerParticipantRepository(db *badger.DB, log logger.Logger) (*badgerParticipantRepository, error) {
	seq, err := db.GetSequence([]byte(participantSeqKey), 64)
	if err != nil {
		return nil, fmt.Errorf("participant sequence: %w", err)
	}
	return &badgerParticipantRepository{db: db, seq: seq, log: log}, nil
}

func participantKey(name string) []byte {
	return []byte(participantKeyPrefix + name)
}

func (r *badgerParticipantRepository) Close() error {
	return r.seq.Release()
}

func (r *badgerParticipantRepository) Create(_ context.Context, participant *domain.Participant) error {
	seq, err := r.seq.Next()
	if err != nil {
		return apperrors.Storage("participant sequence", err)
	}
	data, err := json.Marshal(badgerParticipant{Name: participant.Name, LastStatus: participant.LastStatus, Seq: seq})
	if err != nil {
		return fmt.Errorf("marshal participant: %w", err)
	}

	err = retryOnConflict(func() error {
		return r.db.Update(func(txn *badger.Txn) error {
			key := participantKey(participant.Name)
			if _, err := txn.Get(key); err == nil {
				return apperrors.ErrNameTaken
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			return txn.Set(key, data)
		})
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNameTaken) {
			return err
		}
		r.log.Error("Failed to create participant", "error", err, "name", participant.Name)
		return apperrors.Storage("create participant", err)
	}
	return nil
}

func (r *badgerParticipantRepository) load(txn *badger.Txn, name string) (*badgerParticipant, error) {
	item, err := txn.Get(participantKey(name))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.ErrParticipantNotFound
		}
		return nil, err
	}
	var stored badgerParticipant
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &stored)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *badgerParticipantRepository) Get(_ context.Context, name string) (*domain.Participant, error) {
	var stored *badgerParticipant
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		stored, err = r.load(txn, name)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrParticipantNotFound) {
			return nil, err
		}
		r.log.Error("Failed to get participant", "error", err, "name", name)
		return nil, apperrors.Storage("get participant", err)
	}
	return &domain.Participant{Name: stored.Name, LastStatus: stored.LastStatus}, nil
}

func (r *badgerParticipantRepository) List(_ context.Context) ([]*domain.Participant, error) {
	var stored []badgerParticipant
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(participantKeyPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p badgerParticipant
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				return err
			}
			stored = append(stored, p)
		}
		return nil
	})
	if err != nil {
		r.log.Error("Failed to list participants", "error", err)
		return nil, apperrors.Storage("list participants", err)
	}

	sort.Slice(stored, func(i, j int) bool { return stored[i].Seq < stored[j].Seq })
	participants := make([]*domain.Participant, 0, len(stored))
	for _, p := range stored {
		participants = append(participants, &domain.Participant{Name: p.Name, LastStatus: p.LastStatus})
	}
	return participants, nil
}

func (r *badgerParticipantRepository) Touch(_ context.Context, name string, at time.Time) error {
	err := retryOnConflict(func() error {
		return r.db.Update(func(txn *badger.Txn) error {
			stored, err := r.load(txn, name)
			if err != nil {
				return err
			}
			stored.LastStatus = at
			data, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			return txn.Set(participantKey(name), data)
		})
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrParticipantNotFound) {
			return err
		}
		r.log.Error("Failed to update participant status", "error", err, "name", name)
		return apperrors.Storage("touch participant", err)
	}
	return nil
}

func (r *badgerParticipantRepository) Delete(_ context.Context, name string) (bool, error) {
	var removed bool
	err := retryOnConflict(func() error {
		removed = false
		return r.db.Update(func(txn *badger.Txn) error {
			key := participantKey(name)
			if _, err := txn.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return nil
				}
				return err
			}
			removed = true
			return txn.Delete(key)
		})
	})
	if err != nil {
		r.log.Error("Failed to delete participant", "error", err, "name", name)
		return false, apperrors.Storage("delete participant", err)
	}
	return removed, nil
}

func (r *badgerParticipantRepository) DeleteStale(_ context.Context, name string, cutoff time.Time) (bool, error) {
	var removed bool
	err := retryOnConflict(func() error {
		removed = false
		return r.db.Update(func(txn *badger.Txn) error {
			stored, err := r.load(txn, name)
			if err != nil {
				if errors.Is(err, apperrors.ErrParticipantNotFound) {
					return nil
				}
				return err
			}
			if stored.LastStatus.After(cutoff) {
				return nil
			}
			removed = true
			return txn.Delete(participantKey(name))
		})
	})
	if err != nil {
		r.log.Error("Failed to delete stale participant", "error", err, "name", name)
		return false, apperrors.Storage("delete stale participant", err)
	}
	return removed, nil
}

type badgerMessage struct {
	ID     int64     `json:"id"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Text   string    `json:"text"`
	Kind   string    `json:"kind"`
	SentAt time.Time `json:"sentAt"`
}

type badgerMessageHead struct {
	ID     int64     `json:"id"`
	SentAt time.Time `json:"sentAt"`
}

type badgerMessageRepository struct {
	db  *badger.DB
	log logger.Logger
}

// NewBadgerMessageRepository stores the log under "msg:{id}" with a
// 19-digit zero-padded id so a prefix scan returns insertion order.
func NewBadgerMessageRepository(db *badger.DB, log logger.Logger) MessageRepository {
	return &badgerMessageRepository{db: db, log: log}
}

func messageKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%019d", messageKeyPrefix, id))
}

func (r *badgerMessageRepository) Append(_ context.Context, message *domain.Message) error {
	stored := badgerMessage{
		From:   message.From,
		To:     message.To,
		Text:   message.Text,
		Kind:   string(message.Kind),
		SentAt: message.SentAt,
	}
	// concurrent appends conflict on the head key and are replayed
	err := retryConflicts(badgerAppendRetries, func() error {
		stored.SentAt = message.SentAt
		return r.db.Update(func(txn *badger.Txn) error {
			var head badgerMessageHead
			item, err := txn.Get([]byte(messageHeadKey))
			switch {
			case err == nil:
				if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &head) }); err != nil {
					return err
				}
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}

			stored.ID = head.ID + 1
			if stored.SentAt.Before(head.SentAt) {
				stored.SentAt = head.SentAt
			}

			data, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			headData, err := json.Marshal(badgerMessageHead{ID: stored.ID, SentAt: stored.SentAt})
			if err != nil {
				return err
			}
			if err := txn.Set(messageKey(stored.ID), data); err != nil {
				return err
			}
			return txn.Set([]byte(messageHeadKey), headData)
		})
	})
	if err != nil {
		r.log.Error("Failed to append message", "error", err, "from", message.From)
		return apperrors.Storage("append message", err)
	}

	message.ID = stored.ID
	message.SentAt = stored.SentAt
	return nil
}

func (r *badgerMessageRepository) List(_ context.Context) ([]*domain.Message, error) {
	messages := make([]*domain.Message, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messageKeyPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var m badgerMessage
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			})
			if err != nil {
				return err
			}
			messages = append(messages, &domain.Message{
				ID:     m.ID,
				From:   m.From,
				To:     m.To,
				Text:   m.Text,
				Kind:   domain.MessageKind(m.Kind),
				SentAt: m.SentAt,
			})
		}
		return nil
	})
	if err != nil {
		r.log.Error("Failed to list messages", "error", err)
		return nil, apperrors.Storage("list messages", err)
	}
	return messages, nil
}
