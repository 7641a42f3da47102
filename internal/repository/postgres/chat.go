package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/parleyhq/parley-backend/internal/repository"
)

// ChatRepository implements repository.ChatRepository using PostgreSQL
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository creates a new PostgreSQL chat repository
func NewChatRepository(db *sqlx.DB) repository.ChatRepository {
	return &ChatRepository{db: db}
}

// Create creates a new chat
func (r *ChatRepository) Create(ctx context.Context, chat repository.Chat) (string, error) {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	if chat.Title == "" {
		chat.Title = repository.DefaultChatTitle
	}
	chat.CreatedAt = time.Now()

	query := `
		INSERT INTO chats (id, title, model, max_tokens, web_search, custom_prompt_id, created_at)
		VALUES (:id, :title, :model, :max_tokens, :web_search, :custom_prompt_id, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, chat)
	if err != nil {
		return "", err
	}

	return chat.ID, nil
}

// Get retrieves a chat by ID
func (r *ChatRepository) Get(ctx context.Context, id string) (*repository.Chat, error) {
	var chat repository.Chat
	query := `
		SELECT id, title, model, max_tokens, web_search, custom_prompt_id, created_at
		FROM chats
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &chat, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &chat, nil
}

// List returns all chats, newest first
func (r *ChatRepository) List(ctx context.Context) ([]*repository.Chat, error) {
	var chats []*repository.Chat
	query := `
		SELECT id, title, model, max_tokens, web_search, custom_prompt_id, created_at
		FROM chats
		ORDER BY created_at DESC
	`

	err := r.db.SelectContext(ctx, &chats, query)
	if err != nil {
		return nil, err
	}

	return chats, nil
}

// UpdateTitle replaces a chat's title
func (r *ChatRepository) UpdateTitle(ctx context.Context, id string, title string) error {
	query := "UPDATE chats SET title = $1 WHERE id = $2"
	result, err := r.db.ExecContext(ctx, query, title, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("chat not found: %s", id)
	}

	return nil
}

// Delete deletes a chat; its messages go with it via FK cascade
func (r *ChatRepository) Delete(ctx context.Context, id string) error {
	query := "DELETE FROM chats WHERE id = $1"
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
