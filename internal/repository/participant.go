//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repository

import (
	"context"
	"time"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
	apperrors "github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ParticipantRepository interface {
	// Create fails with ErrNameTaken when the name is already present. The
	// check and the insert are a single atomic step.
	Create(ctx context.Context, participant *domain.Participant) error
	Get(ctx context.Context, name string) (*domain.Participant, error)
	// List returns participants in registration order.
	List(ctx context.Context) ([]*domain.Participant, error)
	Touch(ctx context.Context, name string, at time.Time) error
	// Delete reports whether the participant was present.
	Delete(ctx context.Context, name string) (bool, error)
	// DeleteStale removes the participant only if its last heartbeat is at
	// or before cutoff, so a heartbeat racing the sweeper wins.
	DeleteStale(ctx context.Context, name string, cutoff time.Time) (bool, error)
}

type participantRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewParticipantRepository(db *pgxpool.Pool, log logger.Logger) ParticipantRepository {
	return &participantRepository{db: db, log: log}
}

func (r *participantRepository) Create(ctx context.Context, participant *domain.Participant) error {
	query := `
		INSERT INTO participants (name, last_status)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, participant.Name, participant.LastStatus)
	if err != nil {
		r.log.Error("Failed to create participant", "error", err, "name", participant.Name)
		return apperrors.Storage("create participant", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNameTaken
	}

	return nil
}

func (r *participantRepository) Get(ctx context.Context, name string) (*domain.Participant, error) {
	query := `
		SELECT name, last_status
		FROM participants
		WHERE name = $1
	`

	participant := &domain.Participant{}
	err := r.db.QueryRow(ctx, query, name).Scan(&participant.Name, &participant.LastStatus)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrParticipantNotFound
		}
		r.log.Error("Failed to get participant", "error", err, "name", name)
		return nil, apperrors.Storage("get participant", err)
	}

	return participant, nil
}

func (r *participantRepository) List(ctx context.Context) ([]*domain.Participant, error) {
	query := `
		SELECT name, last_status
		FROM participants
		ORDER BY joined_seq ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list participants", "error", err)
		return nil, apperrors.Storage("list participants", err)
	}
	defer rows.Close()

	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		participant := &domain.Participant{}
		if err := rows.Scan(&participant.Name, &participant.LastStatus); err != nil {
			r.log.Error("Failed to scan participant", "error", err)
			return nil, apperrors.Storage("scan participant", err)
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("list participants", err)
	}

	return participants, nil
}

func (r *participantRepository) Touch(ctx context.Context, name string, at time.Time) error {
	query := `UPDATE participants SET last_status = $2 WHERE name = $1`

	tag, err := r.db.Exec(ctx, query, name, at)
	if err != nil {
		r.log.Error("Failed to update participant status", "error", err, "name", name)
		return apperrors.Storage("touch participant", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrParticipantNotFound
	}

	return nil
}

func (r *participantRepository) Delete(ctx context.Context, name string) (bool, error) {
	query := `DELETE FROM participants WHERE name = $1`

	tag, err := r.db.Exec(ctx, query, name)
	if err != nil {
		r.log.Error("Failed to delete participant", "error", err, "name", name)
		return false, apperrors.Storage("delete participant", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *participantRepository) DeleteStale(ctx context.Context, name string, cutoff time.Time) (bool, error) {
	query := `DELETE FROM participants WHERE name = $1 AND last_status <= $2`

	tag, err := r.db.Exec(ctx, query, name, cutoff)
	if err != nil {
		r.log.Error("Failed to delete stale participant", "error", err, "name", name)
		return false, apperrors.Storage("delete stale participant", err)
	}

	return tag.RowsAffected() > 0, nil
}
