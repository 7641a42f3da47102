package providers

import (
	"context"
	"errors"
)

var (
	// ErrUnsupportedModel is returned when a model identifier matches no routing rule.
	ErrUnsupportedModel = errors.New("unsupported model")
	// ErrDispatchFailed wraps any network or provider-side failure of a send call.
	ErrDispatchFailed = errors.New("dispatch failed")
)

// Chat message roles as sent to providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// WebSearchToolName is the tool declared to a provider when a chat has web
// search enabled. The provider executes it; this backend only declares it.
const WebSearchToolName = "web_search"

// TitleMaxTokens caps the output of a title-generation call.
const TitleMaxTokens = 50

// Provider is one backend model family.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Send performs a chat completion over the assembled message list.
	Send(ctx context.Context, messages []ChatMessage, opts SendOptions) (*ChatResult, error)

	// GenerateTitle issues a short secondary call summarizing one exchange
	// into a conversation title.
	GenerateTitle(ctx context.Context, userText, assistantText string) (string, error)

	// Profile returns the provider's prompt-assembly defaults.
	Profile() AssemblerProfile
}

// ChatMessage is one entry in an assembled dispatch sequence. Only the newest
// user turn may carry an image.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Image   *Image `json:"image,omitempty"`
}

// Image is a resolved media attachment.
type Image struct {
	URL      string `json:"url"`
	MIMEType string `json:"mime_type"`
}

// SendOptions carry the per-chat knobs for a single dispatch.
type SendOptions struct {
	Model           string  `json:"model"`
	MaxTokens       int     `json:"max_tokens"`
	Temperature     float32 `json:"temperature"`
	EnableWebSearch bool    `json:"enable_web_search"`
}

// ChatResult is a normalized provider response. Token counts are zero when
// the provider reports no usage.
type ChatResult struct {
	Content          string `json:"content"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// AssemblerProfile describes how a provider family wants the default system
// preamble and template seed messages injected. The two families historically
// disagree on whether these are one coupled behavior or two independent ones,
// so each adapter carries its own flags.
type AssemblerProfile struct {
	// InjectSystem emits the system message (rendered template or default).
	InjectSystem bool
	// InjectSeeds replays the template's seed messages after the system message.
	InjectSeeds bool
}
