package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parleyhq/parley-backend/internal/attachment"
	"github.com/parleyhq/parley-backend/internal/prompt"
	"github.com/parleyhq/parley-backend/internal/providers"
	"github.com/parleyhq/parley-backend/internal/repository"
)

var (
	// ErrChatNotFound is returned when a chat identifier does not resolve.
	ErrChatNotFound = errors.New("chat not found")
	// ErrPromptNotFound is returned when a custom prompt identifier does not resolve.
	ErrPromptNotFound = errors.New("custom prompt not found")
)

// defaultMaxTokens is the output budget used when a new chat specifies none.
const defaultMaxTokens = 1024

// SendMessageInput is one incoming conversation turn. ChatID empty means a
// new chat is created from the remaining fields; otherwise model, budget and
// flags come from the stored chat.
type SendMessageInput struct {
	ChatID    string
	PromptID  string
	Model     string
	MaxTokens int
	WebSearch bool
	Content   string
	FileURL   string
}

// ChatResponse is the caller-facing result of one dispatch. ChatID and Title
// are set for new chats only; the running sums for continuing chats only.
type ChatResponse struct {
	ChatID              string `json:"chatId,omitempty"`
	Title               string `json:"title,omitempty"`
	Content             string `json:"content"`
	PromptTokens        int    `json:"promptTokens"`
	CompletionTokens    int    `json:"completionTokens"`
	TotalTokens         int    `json:"totalTokens"`
	SumPromptTokens     *int64 `json:"sumPromptTokens,omitempty"`
	SumCompletionTokens *int64 `json:"sumCompletionTokens,omitempty"`
}

// ChatService orchestrates the conversation lifecycle: chat resolution,
// prompt assembly, provider dispatch, token bookkeeping and title generation.
type ChatService struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	promptRepo  repository.CustomPromptRepository
	router      *providers.Router
	catalog     *providers.Catalog
}

// NewChatService creates a new chat service
func NewChatService(
	chatRepo repository.ChatRepository,
	messageRepo repository.MessageRepository,
	promptRepo repository.CustomPromptRepository,
	router *providers.Router,
	catalog *providers.Catalog,
) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		promptRepo:  promptRepo,
		router:      router,
		catalog:     catalog,
	}
}

// SendMessage processes one conversation turn end to end and returns the
// assistant's reply with token accounting.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*ChatResponse, error) {
	chat, create, err := s.resolveChat(ctx, input)
	if err != nil {
		return nil, err
	}

	// Routing runs before any persistence or network call so an unsupported
	// model can never leave an undispatched chat behind
	provider, err := s.router.Route(chat.Model)
	if err != nil {
		return nil, err
	}

	template, err := s.resolveTemplate(ctx, chat)
	if err != nil {
		return nil, err
	}

	var history []repository.Message
	if !create {
		history, err = s.messageRepo.ListByChat(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
	}

	// Only the brand-new turn is media-resolved; replayed history stays text-only
	media, err := attachment.Resolve(input.FileURL, false)
	if err != nil {
		return nil, err
	}

	if create {
		if _, err := s.chatRepo.Create(ctx, *chat); err != nil {
			return nil, err
		}
	}

	messages := prompt.Assemble(provider.Profile(), template, history, input.Content, media)

	result, err := provider.Send(ctx, messages, providers.SendOptions{
		Model:           chat.Model,
		MaxTokens:       chat.MaxTokens,
		Temperature:     s.catalog.Temperature(chat.Model),
		EnableWebSearch: chat.WebSearch,
	})
	if err != nil {
		return nil, err
	}

	// Token reconciliation: the user turn carries the exchange's prompt
	// tokens, the assistant turn only completion and total. Splitting the
	// counts this way keeps chat-level sums from double-counting prompts.
	userMsg := repository.Message{
		ChatID:       chat.ID,
		Role:         repository.RoleUser,
		Content:      input.Content,
		FileURL:      nullableString(input.FileURL),
		PromptTokens: tokenCount(result.PromptTokens),
	}
	assistantMsg := repository.Message{
		ChatID:           chat.ID,
		Role:             repository.RoleAssistant,
		Content:          result.Content,
		CompletionTokens: tokenCount(result.CompletionTokens),
		TotalTokens:      tokenCount(result.TotalTokens),
	}

	wasFirst, err := s.messageRepo.SaveTurnPair(ctx, userMsg, assistantMsg)
	if err != nil {
		return nil, fmt.Errorf("failed to persist turn pair: %w", err)
	}

	resp := &ChatResponse{
		Content:          result.Content,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens,
	}

	if wasFirst {
		resp.ChatID = chat.ID
		resp.Title = s.titleNewChat(ctx, chat, input.Content, result.Content)
		return resp, nil
	}

	sum, err := s.messageRepo.SumTokensByChat(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	resp.SumPromptTokens = &sum.PromptTokens
	resp.SumCompletionTokens = &sum.CompletionTokens

	return resp, nil
}

// resolveChat loads an existing chat or builds a new one from the input. The
// returned chat is not yet persisted when create is true. Newness for title
// purposes is a separate question, answered by the message count inside the
// persistence transaction: a created-but-never-dispatched chat is still new.
func (s *ChatService) resolveChat(ctx context.Context, input SendMessageInput) (chat *repository.Chat, create bool, err error) {
	if input.ChatID != "" {
		chat, err = s.chatRepo.Get(ctx, input.ChatID)
		if err != nil {
			return nil, false, err
		}
		if chat == nil {
			return nil, false, fmt.Errorf("%w: %s", ErrChatNotFound, input.ChatID)
		}
		return chat, false, nil
	}

	chat = &repository.Chat{
		ID:        newChatID(),
		Title:     repository.DefaultChatTitle,
		Model:     input.Model,
		MaxTokens: input.MaxTokens,
		WebSearch: input.WebSearch,
	}
	if chat.MaxTokens <= 0 {
		chat.MaxTokens = defaultMaxTokens
	}

	if input.PromptID != "" {
		template, err := s.promptRepo.Get(ctx, input.PromptID)
		if err != nil {
			return nil, false, err
		}
		if template == nil {
			return nil, false, fmt.Errorf("%w: %s", ErrPromptNotFound, input.PromptID)
		}
		chat.CustomPromptID = nullableString(input.PromptID)
	}

	return chat, true, nil
}

func (s *ChatService) resolveTemplate(ctx context.Context, chat *repository.Chat) (*repository.CustomPrompt, error) {
	if chat.CustomPromptID == nil {
		return nil, nil
	}

	template, err := s.promptRepo.Get(ctx, *chat.CustomPromptID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("%w: %s", ErrPromptNotFound, *chat.CustomPromptID)
	}
	return template, nil
}

// titleNewChat runs title generation for a freshly persisted first turn.
// Failure is cosmetic: the turn pair is already committed, so a failed title
// call logs a warning and the placeholder stands.
func (s *ChatService) titleNewChat(ctx context.Context, chat *repository.Chat, userText, assistantText string) string {
	title, err := s.GenerateTitle(ctx, chat.Model, userText, assistantText)
	if err != nil {
		logrus.WithError(err).WithField("chat_id", chat.ID).Warn("title generation failed, keeping placeholder")
		return chat.Title
	}

	if err := s.chatRepo.UpdateTitle(ctx, chat.ID, title); err != nil {
		logrus.WithError(err).WithField("chat_id", chat.ID).Warn("failed to store generated title")
		return chat.Title
	}

	return title
}

// GetChat retrieves a chat by ID
func (s *ChatService) GetChat(ctx context.Context, id string) (*repository.Chat, error) {
	chat, err := s.chatRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	return chat, nil
}

// ListChats returns all chats
func (s *ChatService) ListChats(ctx context.Context) ([]*repository.Chat, error) {
	return s.chatRepo.List(ctx)
}

// GetChatMessages returns a chat's messages in creation order
func (s *ChatService) GetChatMessages(ctx context.Context, chatID string) ([]repository.Message, error) {
	if _, err := s.GetChat(ctx, chatID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByChat(ctx, chatID)
}

// GetChatTokens returns a chat's running token totals
func (s *ChatService) GetChatTokens(ctx context.Context, chatID string) (*repository.TokensSum, error) {
	if _, err := s.GetChat(ctx, chatID); err != nil {
		return nil, err
	}
	return s.messageRepo.SumTokensByChat(ctx, chatID)
}

// DeleteChat deletes a chat and its messages
func (s *ChatService) DeleteChat(ctx context.Context, id string) error {
	return s.chatRepo.Delete(ctx, id)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func tokenCount(v int) *int64 {
	n := int64(v)
	return &n
}

func newChatID() string {
	return uuid.New().String()
}
