package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley-backend/internal/attachment"
	"github.com/parleyhq/parley-backend/internal/providers"
	"github.com/parleyhq/parley-backend/internal/repository"
)

// ───── fakes ─────

type fakeChatRepo struct {
	chats map[string]repository.Chat
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[string]repository.Chat)}
}

func (r *fakeChatRepo) Create(ctx context.Context, chat repository.Chat) (string, error) {
	r.chats[chat.ID] = chat
	return chat.ID, nil
}

func (r *fakeChatRepo) Get(ctx context.Context, id string) (*repository.Chat, error) {
	chat, ok := r.chats[id]
	if !ok {
		return nil, nil
	}
	return &chat, nil
}

func (r *fakeChatRepo) List(ctx context.Context) ([]*repository.Chat, error) {
	var chats []*repository.Chat
	for id := range r.chats {
		chat := r.chats[id]
		chats = append(chats, &chat)
	}
	return chats, nil
}

func (r *fakeChatRepo) UpdateTitle(ctx context.Context, id string, title string) error {
	chat, ok := r.chats[id]
	if !ok {
		return fmt.Errorf("chat not found: %s", id)
	}
	chat.Title = title
	r.chats[id] = chat
	return nil
}

func (r *fakeChatRepo) Delete(ctx context.Context, id string) error {
	delete(r.chats, id)
	return nil
}

type fakeMessageRepo struct {
	messages map[string][]repository.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string][]repository.Message)}
}

func (r *fakeMessageRepo) ListByChat(ctx context.Context, chatID string) ([]repository.Message, error) {
	return r.messages[chatID], nil
}

func (r *fakeMessageRepo) SaveTurnPair(ctx context.Context, user, assistant repository.Message) (bool, error) {
	wasFirst := len(r.messages[user.ChatID]) == 0
	now := time.Now()
	user.CreatedAt = now
	assistant.CreatedAt = now.Add(time.Microsecond)
	r.messages[user.ChatID] = append(r.messages[user.ChatID], user, assistant)
	return wasFirst, nil
}

func (r *fakeMessageRepo) SumTokensByChat(ctx context.Context, chatID string) (*repository.TokensSum, error) {
	var sum repository.TokensSum
	for _, msg := range r.messages[chatID] {
		if msg.PromptTokens != nil {
			sum.PromptTokens += *msg.PromptTokens
		}
		if msg.CompletionTokens != nil {
			sum.CompletionTokens += *msg.CompletionTokens
		}
	}
	return &sum, nil
}

type fakePromptRepo struct {
	prompts map[string]repository.CustomPrompt
}

func newFakePromptRepo() *fakePromptRepo {
	return &fakePromptRepo{prompts: make(map[string]repository.CustomPrompt)}
}

func (r *fakePromptRepo) Create(ctx context.Context, prompt repository.CustomPrompt) (string, error) {
	r.prompts[prompt.ID] = prompt
	return prompt.ID, nil
}

func (r *fakePromptRepo) Get(ctx context.Context, id string) (*repository.CustomPrompt, error) {
	prompt, ok := r.prompts[id]
	if !ok {
		return nil, nil
	}
	return &prompt, nil
}

func (r *fakePromptRepo) List(ctx context.Context) ([]*repository.CustomPrompt, error) {
	return nil, nil
}

func (r *fakePromptRepo) Update(ctx context.Context, prompt repository.CustomPrompt) error {
	r.prompts[prompt.ID] = prompt
	return nil
}

func (r *fakePromptRepo) Delete(ctx context.Context, id string) error {
	delete(r.prompts, id)
	return nil
}

type stubProvider struct {
	name string

	sendCalls    int
	lastMessages []providers.ChatMessage
	lastOpts     providers.SendOptions
	result       providers.ChatResult
	sendErr      error

	titleCalls int
	title      string
	titleErr   error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Send(ctx context.Context, messages []providers.ChatMessage, opts providers.SendOptions) (*providers.ChatResult, error) {
	p.sendCalls++
	p.lastMessages = messages
	p.lastOpts = opts
	if p.sendErr != nil {
		return nil, p.sendErr
	}
	result := p.result
	return &result, nil
}

func (p *stubProvider) GenerateTitle(ctx context.Context, userText, assistantText string) (string, error) {
	p.titleCalls++
	if p.titleErr != nil {
		return "", p.titleErr
	}
	return p.title, nil
}

func (p *stubProvider) Profile() providers.AssemblerProfile {
	return providers.AssemblerProfile{InjectSystem: true, InjectSeeds: true}
}

// ───── harness ─────

type chatServiceFixture struct {
	svc         *ChatService
	chatRepo    *fakeChatRepo
	messageRepo *fakeMessageRepo
	promptRepo  *fakePromptRepo
	openai      *stubProvider
	googleai    *stubProvider
}

func newChatServiceFixture() *chatServiceFixture {
	f := &chatServiceFixture{
		chatRepo:    newFakeChatRepo(),
		messageRepo: newFakeMessageRepo(),
		promptRepo:  newFakePromptRepo(),
		openai: &stubProvider{
			name:   providers.ProviderOpenAI,
			result: providers.ChatResult{Content: "Hi there!", PromptTokens: 12, CompletionTokens: 7, TotalTokens: 19},
			title:  "Friendly Greeting",
		},
		googleai: &stubProvider{
			name:   providers.ProviderGoogleAI,
			result: providers.ChatResult{Content: "Gemini says hi", PromptTokens: 30, CompletionTokens: 9, TotalTokens: 39},
			title:  "Gemini Chat",
		},
	}

	router := providers.NewRouter(map[string]providers.Provider{
		providers.ProviderOpenAI:   f.openai,
		providers.ProviderGoogleAI: f.googleai,
	}, providers.DefaultRoutingRules())

	f.svc = NewChatService(f.chatRepo, f.messageRepo, f.promptRepo, router, providers.NewCatalog())
	return f
}

// ───── tests ─────

func TestSendMessage_NewChat(t *testing.T) {
	f := newChatServiceFixture()

	resp, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		Model:   "gpt-4.1-2025-04-14",
		Content: "Hello",
	})
	require.NoError(t, err)

	// New chats surface their id and a generated, non-placeholder title
	assert.NotEmpty(t, resp.ChatID)
	assert.Equal(t, "Friendly Greeting", resp.Title)
	assert.NotEqual(t, repository.DefaultChatTitle, resp.Title)
	assert.Equal(t, "Hi there!", resp.Content)
	assert.Nil(t, resp.SumPromptTokens)
	assert.Nil(t, resp.SumCompletionTokens)

	// No custom prompt: exactly default system + the user turn
	require.Len(t, f.openai.lastMessages, 2)
	assert.Equal(t, providers.RoleSystem, f.openai.lastMessages[0].Role)
	assert.Equal(t, "Hello", f.openai.lastMessages[1].Content)

	// The generated title is persisted on the chat record
	chat, err := f.chatRepo.Get(context.Background(), resp.ChatID)
	require.NoError(t, err)
	assert.Equal(t, "Friendly Greeting", chat.Title)
	assert.Equal(t, 1, f.openai.titleCalls)
}

func TestSendMessage_TokenReconciliation(t *testing.T) {
	f := newChatServiceFixture()

	resp, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		Model:   "gpt-4o",
		Content: "Hello",
	})
	require.NoError(t, err)

	msgs := f.messageRepo.messages[resp.ChatID]
	require.Len(t, msgs, 2)

	user, assistant := msgs[0], msgs[1]
	assert.Equal(t, repository.RoleUser, user.Role)
	assert.Equal(t, repository.RoleAssistant, assistant.Role)

	// The user turn carries the exchange's prompt tokens; the assistant turn
	// carries only completion and total, its prompt count stays null
	require.NotNil(t, user.PromptTokens)
	assert.EqualValues(t, 12, *user.PromptTokens)
	assert.Nil(t, assistant.PromptTokens)
	require.NotNil(t, assistant.CompletionTokens)
	assert.EqualValues(t, 7, *assistant.CompletionTokens)
	require.NotNil(t, assistant.TotalTokens)
	assert.EqualValues(t, 19, *assistant.TotalTokens)
}

func TestSendMessage_ContinuingChatWithImageAndWebSearch(t *testing.T) {
	f := newChatServiceFixture()

	f.chatRepo.chats["c1"] = repository.Chat{
		ID: "c1", Title: "Older chat", Model: "gemini-2.0-flash",
		MaxTokens: 512, WebSearch: true,
	}
	f.messageRepo.messages["c1"] = []repository.Message{
		{ChatID: "c1", Role: repository.RoleUser, Content: "q1", PromptTokens: nullInt64(10)},
		{ChatID: "c1", Role: repository.RoleAssistant, Content: "a1", CompletionTokens: nullInt64(5)},
		{ChatID: "c1", Role: repository.RoleUser, Content: "q2", PromptTokens: nullInt64(20)},
	}

	resp, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		ChatID:  "c1",
		Content: "what is on this picture?",
		FileURL: "https://files.example.com/image.jpg",
	})
	require.NoError(t, err)

	// Continuing chats omit id and title but report running totals
	assert.Empty(t, resp.ChatID)
	assert.Empty(t, resp.Title)
	require.NotNil(t, resp.SumPromptTokens)
	require.NotNil(t, resp.SumCompletionTokens)
	assert.EqualValues(t, 10+20+30, *resp.SumPromptTokens)
	assert.EqualValues(t, 5+9, *resp.SumCompletionTokens)
	assert.Equal(t, 0, f.googleai.titleCalls)

	// system + 3 history turns + new turn with media
	require.Len(t, f.googleai.lastMessages, 5)
	last := f.googleai.lastMessages[4]
	require.NotNil(t, last.Image)
	assert.Equal(t, "image/jpeg", last.Image.MIMEType)
	for _, msg := range f.googleai.lastMessages[:4] {
		assert.Nil(t, msg.Image)
	}

	assert.True(t, f.googleai.lastOpts.EnableWebSearch)
	assert.Equal(t, "gemini-2.0-flash", f.googleai.lastOpts.Model)
	assert.Equal(t, 512, f.googleai.lastOpts.MaxTokens)
	assert.Equal(t, float32(0.7), f.googleai.lastOpts.Temperature)
}

func TestSendMessage_CustomPromptSeedsReplayed(t *testing.T) {
	f := newChatServiceFixture()

	f.promptRepo.prompts["p1"] = repository.CustomPrompt{
		ID:      "p1",
		Name:    "tutor",
		Content: "You teach {subject}.",
		Params:  []repository.PromptParam{{Name: "subject", Value: "math"}},
		Messages: []repository.PromptMessage{
			{Role: repository.RoleUser, Content: "Teach me."},
			{Role: repository.RoleAssistant, Content: "Gladly."},
		},
	}

	resp, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		Model:    "gpt-4o",
		PromptID: "p1",
		Content:  "What is 2+2?",
	})
	require.NoError(t, err)

	require.Len(t, f.openai.lastMessages, 4)
	assert.Equal(t, "You teach math.", f.openai.lastMessages[0].Content)
	assert.Equal(t, "Teach me.", f.openai.lastMessages[1].Content)
	assert.Equal(t, "Gladly.", f.openai.lastMessages[2].Content)
	assert.Equal(t, "What is 2+2?", f.openai.lastMessages[3].Content)

	chat, err := f.chatRepo.Get(context.Background(), resp.ChatID)
	require.NoError(t, err)
	require.NotNil(t, chat.CustomPromptID)
	assert.Equal(t, "p1", *chat.CustomPromptID)
}

func TestSendMessage_NewnessFlipsAfterFirstTurn(t *testing.T) {
	f := newChatServiceFixture()

	first, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		Model:   "gpt-4o",
		Content: "Hello",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ChatID)
	assert.NotEmpty(t, first.Title)

	second, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		ChatID:  first.ChatID,
		Content: "And again",
	})
	require.NoError(t, err)
	assert.Empty(t, second.ChatID)
	assert.Empty(t, second.Title)
	assert.NotNil(t, second.SumPromptTokens)
	assert.Equal(t, 1, f.openai.titleCalls)
}

func TestSendMessage_UnsupportedModel(t *testing.T) {
	f := newChatServiceFixture()

	_, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		Model:   "claude-3-opus",
		Content: "Hello",
	})
	assert.ErrorIs(t, err, providers.ErrUnsupportedModel)

	// Fails fast: nothing persisted, no provider touched
	assert.Empty(t, f.chatRepo.chats)
	assert.Zero(t, f.openai.sendCalls)
	assert.Zero(t, f.googleai.sendCalls)
}

func TestSendMessage_ChatNotFound(t *testing.T) {
	f := newChatServiceFixture()

	_, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		ChatID:  "missing",
		Content: "Hello",
	})
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestSendMessage_PromptNotFound(t *testing.T) {
	f := newChatServiceFixture()

	_, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		Model:    "gpt-4o",
		PromptID: "missing",
		Content:  "Hello",
	})
	assert.ErrorIs(t, err, ErrPromptNotFound)
	assert.Empty(t, f.chatRepo.chats)
}

func TestSendMessage_UnsupportedAttachmentBlocksDispatch(t *testing.T) {
	f := newChatServiceFixture()

	_, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		Model:   "gpt-4o",
		Content: "Hello",
		FileURL: "https://files.example.com/archive.zip",
	})
	assert.ErrorIs(t, err, attachment.ErrUnsupportedFileType)
	assert.Zero(t, f.openai.sendCalls)
}

func TestSendMessage_DispatchFailure(t *testing.T) {
	f := newChatServiceFixture()
	f.openai.sendErr = fmt.Errorf("%w: connection reset", providers.ErrDispatchFailed)

	_, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		Model:   "gpt-4o",
		Content: "Hello",
	})
	assert.ErrorIs(t, err, providers.ErrDispatchFailed)

	// No partial turn pair may survive a failed dispatch
	for _, msgs := range f.messageRepo.messages {
		assert.Empty(t, msgs)
	}
}

func TestSendMessage_TitleFailureIsNotFatal(t *testing.T) {
	f := newChatServiceFixture()
	f.openai.titleErr = errors.New("title model unavailable")

	resp, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		Model:   "gpt-4o",
		Content: "Hello",
	})
	require.NoError(t, err)

	// The turn pair is committed; the placeholder title stands
	assert.Equal(t, "Hi there!", resp.Content)
	assert.Equal(t, repository.DefaultChatTitle, resp.Title)
	require.Len(t, f.messageRepo.messages[resp.ChatID], 2)

	chat, err := f.chatRepo.Get(context.Background(), resp.ChatID)
	require.NoError(t, err)
	assert.Equal(t, repository.DefaultChatTitle, chat.Title)
}

func TestSendMessage_DefaultMaxTokens(t *testing.T) {
	f := newChatServiceFixture()

	_, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		Model:   "gpt-4o",
		Content: "Hello",
	})
	require.NoError(t, err)
	assert.Equal(t, defaultMaxTokens, f.openai.lastOpts.MaxTokens)
}

func TestGenerateTitle_RoutesIndependently(t *testing.T) {
	f := newChatServiceFixture()

	_, err := f.svc.GenerateTitle(context.Background(), "not-a-model", "hi", "hello")
	assert.ErrorIs(t, err, providers.ErrUnsupportedModel)
	assert.Zero(t, f.openai.titleCalls)

	title, err := f.svc.GenerateTitle(context.Background(), "gemini-2.0-flash", "hi", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Gemini Chat", title)
}

func TestGenerateTitle_TrimsQuotes(t *testing.T) {
	f := newChatServiceFixture()
	f.openai.title = "\"Quoted Title\"\n"

	title, err := f.svc.GenerateTitle(context.Background(), "gpt-4o", "hi", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Quoted Title", title)
}

func nullInt64(v int64) *int64 {
	return &v
}
