package repository

import (
	"context"
	"time"
)

// Message roles. No other value is valid anywhere in the system.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultChatTitle is the placeholder title a chat keeps until one is generated.
const DefaultChatTitle = "New Chat"

// Chat represents a conversation with a chosen model and options.
type Chat struct {
	ID             string    `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Model          string    `db:"model" json:"model"`
	MaxTokens      int       `db:"max_tokens" json:"max_tokens"`
	WebSearch      bool      `db:"web_search" json:"web_search"`
	CustomPromptID *string   `db:"custom_prompt_id" json:"custom_prompt_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Message represents a single turn within a chat. Token fields are set once
// right after a provider call and never touched again: the user turn carries
// the exchange's prompt tokens, the assistant turn only completion and total.
type Message struct {
	ID               string    `db:"id" json:"id"`
	ChatID           string    `db:"chat_id" json:"chat_id"`
	Role             string    `db:"role" json:"role"`
	Content          string    `db:"content" json:"content"`
	FileURL          *string   `db:"file_url" json:"file_url,omitempty"`
	PromptTokens     *int64    `db:"prompt_tokens" json:"prompt_tokens,omitempty"`
	CompletionTokens *int64    `db:"completion_tokens" json:"completion_tokens,omitempty"`
	TotalTokens      *int64    `db:"total_tokens" json:"total_tokens,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// CustomPrompt is a reusable system-message template with optional seed
// messages and named parameters.
type CustomPrompt struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Messages []PromptMessage `json:"messages,omitempty"`
	Params   []PromptParam   `json:"params,omitempty"`
}

// PromptMessage is one seed turn replayed at the start of a templated chat.
type PromptMessage struct {
	ID       string `db:"id" json:"id"`
	PromptID string `db:"prompt_id" json:"prompt_id"`
	Role     string `db:"role" json:"role"`
	Content  string `db:"content" json:"content"`
	Position int    `db:"position" json:"position"`
}

// PromptParam fills one {name} placeholder in the template content.
type PromptParam struct {
	ID       string `db:"id" json:"id"`
	PromptID string `db:"prompt_id" json:"prompt_id"`
	Name     string `db:"name" json:"name"`
	Value    string `db:"value" json:"value"`
	Position int    `db:"position" json:"position"`
}

// TokensSum is the running token total for a chat, recomputed on read.
type TokensSum struct {
	PromptTokens     int64 `db:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int64 `db:"completion_tokens" json:"completion_tokens"`
}

// ChatRepository defines chat storage operations.
type ChatRepository interface {
	Create(ctx context.Context, chat Chat) (string, error)
	Get(ctx context.Context, id string) (*Chat, error)
	List(ctx context.Context) ([]*Chat, error)
	UpdateTitle(ctx context.Context, id string, title string) error
	Delete(ctx context.Context, id string) error
}

// MessageRepository defines message storage operations.
type MessageRepository interface {
	ListByChat(ctx context.Context, chatID string) ([]Message, error)
	// SaveTurnPair persists a user/assistant pair in one transaction and
	// reports whether the chat had no messages at commit time. The re-check
	// happens inside the transaction so concurrent turns on one chat cannot
	// both observe an empty chat.
	SaveTurnPair(ctx context.Context, user, assistant Message) (wasFirst bool, err error)
	SumTokensByChat(ctx context.Context, chatID string) (*TokensSum, error)
}

// CustomPromptRepository defines prompt-template storage operations.
type CustomPromptRepository interface {
	Create(ctx context.Context, prompt CustomPrompt) (string, error)
	Get(ctx context.Context, id string) (*CustomPrompt, error)
	List(ctx context.Context) ([]*CustomPrompt, error)
	Update(ctx context.Context, prompt CustomPrompt) error
	Delete(ctx context.Context, id string) error
}
