package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/parleyhq/parley-backend/internal/repository"
)

// CustomPromptRepository implements repository.CustomPromptRepository using PostgreSQL
type CustomPromptRepository struct {
	db *sqlx.DB
}

// NewCustomPromptRepository creates a new PostgreSQL custom prompt repository
func NewCustomPromptRepository(db *sqlx.DB) repository.CustomPromptRepository {
	return &CustomPromptRepository{db: db}
}

// Create creates a prompt template with its seed messages and params
func (r *CustomPromptRepository) Create(ctx context.Context, prompt repository.CustomPrompt) (string, error) {
	if prompt.ID == "" {
		prompt.ID = uuid.New().String()
	}
	prompt.CreatedAt = time.Now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO custom_prompts (id, name, content, created_at)
		VALUES (:id, :name, :content, :created_at)
	`
	if _, err := tx.NamedExecContext(ctx, query, prompt); err != nil {
		return "", err
	}

	if err := insertPromptChildren(ctx, tx, prompt); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return prompt.ID, nil
}

// Get retrieves a prompt template with its seed messages and params, both in
// stored order
func (r *CustomPromptRepository) Get(ctx context.Context, id string) (*repository.CustomPrompt, error) {
	var prompt repository.CustomPrompt
	query := "SELECT id, name, content, created_at FROM custom_prompts WHERE id = $1"

	err := r.db.GetContext(ctx, &prompt, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &prompt.Messages, `
		SELECT id, prompt_id, role, content, position
		FROM prompt_messages
		WHERE prompt_id = $1
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &prompt.Params, `
		SELECT id, prompt_id, name, value, position
		FROM prompt_params
		WHERE prompt_id = $1
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, err
	}

	return &prompt, nil
}

// List returns all prompt templates without their children
func (r *CustomPromptRepository) List(ctx context.Context) ([]*repository.CustomPrompt, error) {
	var prompts []*repository.CustomPrompt
	query := "SELECT id, name, content, created_at FROM custom_prompts ORDER BY name ASC"

	err := r.db.SelectContext(ctx, &prompts, query)
	if err != nil {
		return nil, err
	}

	return prompts, nil
}

// Update replaces a template's content, seed messages and params
func (r *CustomPromptRepository) Update(ctx context.Context, prompt repository.CustomPrompt) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE custom_prompts SET name = $1, content = $2 WHERE id = $3",
		prompt.Name, prompt.Content, prompt.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	// Children are replaced wholesale; ordering lives in position
	if _, err := tx.ExecContext(ctx, "DELETE FROM prompt_messages WHERE prompt_id = $1", prompt.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM prompt_params WHERE prompt_id = $1", prompt.ID); err != nil {
		return err
	}
	if err := insertPromptChildren(ctx, tx, prompt); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete deletes a prompt template; seed rows cascade
func (r *CustomPromptRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM custom_prompts WHERE id = $1", id)
	return err
}

func insertPromptChildren(ctx context.Context, tx *sqlx.Tx, prompt repository.CustomPrompt) error {
	for i, msg := range prompt.Messages {
		msg.ID = uuid.New().String()
		msg.PromptID = prompt.ID
		msg.Position = i
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO prompt_messages (id, prompt_id, role, content, position)
			VALUES (:id, :prompt_id, :role, :content, :position)
		`, msg)
		if err != nil {
			return err
		}
	}

	for i, param := range prompt.Params {
		param.ID = uuid.New().String()
		param.PromptID = prompt.ID
		param.Position = i
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO prompt_params (id, prompt_id, name, value, position)
			VALUES (:id, :prompt_id, :name, :value, :position)
		`, param)
		if err != nil {
			return err
		}
	}

	return nil
}
