package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/parleyhq/parley-backend/internal/repository"
)

// MessageRepository implements repository.MessageRepository using PostgreSQL
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new PostgreSQL message repository
func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &MessageRepository{db: db}
}

const insertMessage = `
	INSERT INTO messages (id, chat_id, role, content, file_url, prompt_tokens, completion_tokens, total_tokens, created_at)
	VALUES (:id, :chat_id, :role, :content, :file_url, :prompt_tokens, :completion_tokens, :total_tokens, :created_at)
`

// ListByChat retrieves messages for a chat in creation order
func (r *MessageRepository) ListByChat(ctx context.Context, chatID string) ([]repository.Message, error) {
	var messages []repository.Message
	query := `
		SELECT id, chat_id, role, content, file_url, prompt_tokens, completion_tokens, total_tokens, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC
	`

	err := r.db.SelectContext(ctx, &messages, query, chatID)
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// SaveTurnPair persists a user/assistant turn pair atomically. The chat row
// is locked and the message count re-checked inside the transaction, so the
// returned wasFirst reflects the state at commit time, not request start.
func (r *MessageRepository) SaveTurnPair(ctx context.Context, user, assistant repository.Message) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var chatID string
	if err := tx.GetContext(ctx, &chatID, "SELECT id FROM chats WHERE id = $1 FOR UPDATE", user.ChatID); err != nil {
		return false, err
	}

	var count int
	if err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM messages WHERE chat_id = $1", user.ChatID); err != nil {
		return false, err
	}
	wasFirst := count == 0

	now := time.Now()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if assistant.ID == "" {
		assistant.ID = uuid.New().String()
	}
	user.CreatedAt = now
	// The assistant turn sorts after the user turn it answers.
	assistant.CreatedAt = now.Add(time.Microsecond)

	if _, err := tx.NamedExecContext(ctx, insertMessage, user); err != nil {
		return false, err
	}
	if _, err := tx.NamedExecContext(ctx, insertMessage, assistant); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return wasFirst, nil
}

// SumTokensByChat recomputes the chat's running token totals
func (r *MessageRepository) SumTokensByChat(ctx context.Context, chatID string) (*repository.TokensSum, error) {
	var sum repository.TokensSum
	query := `
		SELECT COALESCE(SUM(prompt_tokens), 0) AS prompt_tokens,
		       COALESCE(SUM(completion_tokens), 0) AS completion_tokens
		FROM messages
		WHERE chat_id = $1
	`

	err := r.db.GetContext(ctx, &sum, query, chatID)
	if err != nil {
		return nil, err
	}

	return &sum, nil
}
