package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"resqlink-backend/internal/models"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// ListConversation returns every message exchanged between the two users,
// oldest first.
func (r *MessageRepo) ListConversation(ctx context.Context, userID, contactID uuid.UUID) ([]models.ChatMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender_id, receiver_id, message, read, created_at
		FROM chat_messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC
	`, userID, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Message, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (r *MessageRepo) Create(ctx context.Context, m *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, sender_id, receiver_id, message)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	m.ID = uuid.New()
	return r.pool.QueryRow(ctx, query, m.ID, m.SenderID, m.ReceiverID, m.Message).Scan(&m.CreatedAt)
}

func (r *MessageRepo) MarkRead(ctx context.Context, userID, contactID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE chat_messages SET read = TRUE WHERE receiver_id = $1 AND sender_id = $2 AND read = FALSE",
		userID, contactID,
	)
	return err
}
