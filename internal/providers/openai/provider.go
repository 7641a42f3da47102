package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/parleyhq/parley-backend/internal/config"
	"github.com/parleyhq/parley-backend/internal/providers"
)

// titleInstruction is the fixed prompt for the secondary title call. This
// family sends it instruction-first, as a system message.
const titleInstruction = "Generate a concise title for this conversation, " +
	"five words at most. Reply with the title only, no markdown, no quotes, " +
	"in the same language as the conversation."

// Provider implements the OpenAI-family adapter
type Provider struct {
	config config.OpenAIConfig
	client *openai.Client
}

// NewProvider creates a new OpenAI provider
func NewProvider(cfg config.OpenAIConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	client := openai.NewClient(cfg.APIKey)

	return &Provider{
		config: cfg,
		client: client,
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providers.ProviderOpenAI
}

// Profile returns the prompt-assembly defaults. This family injects template
// seed messages right after the system message; the two flags move together.
func (p *Provider) Profile() providers.AssemblerProfile {
	return providers.AssemblerProfile{
		InjectSystem: true,
		InjectSeeds:  true,
	}
}

// Send performs a chat completion
func (p *Provider) Send(ctx context.Context, messages []providers.ChatMessage, opts providers.SendOptions) (*providers.ChatResult, error) {
	req := p.convertRequest(messages, opts)

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrDispatchFailed, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", providers.ErrDispatchFailed)
	}

	return &providers.ChatResult{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// GenerateTitle issues the cheap secondary call that names a new chat
func (p *Provider) GenerateTitle(ctx context.Context, userText, assistantText string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.config.TitleModel,
		MaxTokens: providers.TitleMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: titleInstruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("User: %s\n\nAssistant: %s", userText, assistantText),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", providers.ErrDispatchFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", providers.ErrDispatchFailed)
	}

	return resp.Choices[0].Message.Content, nil
}

// convertRequest converts an assembled message list to an OpenAI request
func (p *Provider) convertRequest(messages []providers.ChatMessage, opts providers.SendOptions) openai.ChatCompletionRequest {
	converted := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		if msg.Image != nil {
			// Multimodal turns use MultiContent; Content must stay empty
			converted[i] = openai.ChatCompletionMessage{
				Role: msg.Role,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: msg.Content,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: msg.Image.URL,
						},
					},
				},
			}
			continue
		}
		converted[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    converted,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	if opts.EnableWebSearch {
		req.Tools = []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        providers.WebSearchToolName,
					Description: "Search the web for current information",
					Parameters: map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"query": map[string]interface{}{
								"type":        "string",
								"description": "The search query",
							},
						},
						"required": []string{"query"},
					},
				},
			},
		}
	}

	return req
}
