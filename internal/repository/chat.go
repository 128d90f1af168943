//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_message_repository.go -package=mocks
package repository

import (
	"context"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
	apperrors "github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository is the append-only chat log.
type MessageRepository interface {
	// Append assigns message.ID and never lets SentAt go below the newest
	// entry already in the log.
	Append(ctx context.Context, message *domain.Message) error
	// List returns the whole log in insertion order.
	List(ctx context.Context) ([]*domain.Message, error)
}

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

func (r *messageRepository) Append(ctx context.Context, message *domain.Message) error {
	// The table lock serialises appends so id order and sent_at order agree.
	query := `
		INSERT INTO messages (from_name, to_name, text, kind, sent_at)
		SELECT $1, $2, $3, $4, GREATEST($5::timestamptz, COALESCE(MAX(sent_at), $5::timestamptz))
		FROM messages
		RETURNING id, sent_at
	`

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE messages IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}
		return tx.QueryRow(ctx, query,
			message.From, message.To, message.Text, string(message.Kind), message.SentAt,
		).Scan(&message.ID, &message.SentAt)
	})
	if err != nil {
		r.log.Error("Failed to append message", "error", err, "from", message.From)
		return apperrors.Storage("append message", err)
	}

	return nil
}

func (r *messageRepository) List(ctx context.Context) ([]*domain.Message, error) {
	query := `
		SELECT id, from_name, to_name, text, kind, sent_at
		FROM messages
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list messages", "error", err)
		return nil, apperrors.Storage("list messages", err)
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		message := &domain.Message{}
		var kind string
		err := rows.Scan(&message.ID, &message.From, &message.To, &message.Text, &kind, &message.SentAt)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, apperrors.Storage("scan message", err)
		}
		message.Kind = domain.MessageKind(kind)
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("list messages", err)
	}

	return messages, nil
}
