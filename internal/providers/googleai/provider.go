package googleai

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/parleyhq/parley-backend/internal/config"
	"github.com/parleyhq/parley-backend/internal/providers"
)

// titleInstruction is the fixed prompt for the secondary title call. This
// family sends it instruction-last, appended to the conversation text.
const titleInstruction = "Write a concise title for the conversation above, " +
	"five words at most. Reply with the title only, no markdown, in the same " +
	"language as the conversation."

// Provider implements the Gemini-family adapter
type Provider struct {
	config config.GoogleAIConfig
	client *googleai.GoogleAI
}

// NewProvider creates a new Gemini provider
func NewProvider(ctx context.Context, cfg config.GoogleAIConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Google AI API key is required")
	}

	client, err := googleai.New(ctx, googleai.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}

	return &Provider{
		config: cfg,
		client: client,
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providers.ProviderGoogleAI
}

// Profile returns the prompt-assembly defaults. This family treats system
// and seed injection as independent toggles.
func (p *Provider) Profile() providers.AssemblerProfile {
	return providers.AssemblerProfile{
		InjectSystem: true,
		InjectSeeds:  true,
	}
}

// Send performs a chat completion
func (p *Provider) Send(ctx context.Context, messages []providers.ChatMessage, opts providers.SendOptions) (*providers.ChatResult, error) {
	content := p.convertMessages(messages)

	callOpts := []llms.CallOption{
		llms.WithModel(opts.Model),
		llms.WithMaxTokens(opts.MaxTokens),
		llms.WithTemperature(float64(opts.Temperature)),
	}
	if opts.EnableWebSearch {
		callOpts = append(callOpts, llms.WithTools([]llms.Tool{
			{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        providers.WebSearchToolName,
					Description: "Search the web for current information",
					Parameters: map[string]any{
						"type": "object",
						"properties": map[string]any{
							"query": map[string]any{
								"type":        "string",
								"description": "The search query",
							},
						},
						"required": []string{"query"},
					},
				},
			},
		}))
	}

	resp, err := p.client.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrDispatchFailed, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", providers.ErrDispatchFailed)
	}

	choice := resp.Choices[0]
	return &providers.ChatResult{
		Content:          choice.Content,
		PromptTokens:     usageCount(choice.GenerationInfo, "input_tokens"),
		CompletionTokens: usageCount(choice.GenerationInfo, "output_tokens"),
		TotalTokens:      usageCount(choice.GenerationInfo, "total_tokens"),
	}, nil
}

// GenerateTitle issues the cheap secondary call that names a new chat
func (p *Provider) GenerateTitle(ctx context.Context, userText, assistantText string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman,
			fmt.Sprintf("User: %s\n\nAssistant: %s\n\n%s", userText, assistantText, titleInstruction)),
	}

	resp, err := p.client.GenerateContent(ctx, content,
		llms.WithModel(p.config.TitleModel),
		llms.WithMaxTokens(providers.TitleMaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", providers.ErrDispatchFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", providers.ErrDispatchFailed)
	}

	return resp.Choices[0].Content, nil
}

// convertMessages converts an assembled message list to langchaingo content
func (p *Provider) convertMessages(messages []providers.ChatMessage) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		parts := []llms.ContentPart{llms.TextPart(msg.Content)}
		if msg.Image != nil {
			parts = append(parts, llms.ImageURLPart(msg.Image.URL))
		}
		content = append(content, llms.MessageContent{
			Role:  convertRole(msg.Role),
			Parts: parts,
		})
	}
	return content
}

func convertRole(role string) llms.ChatMessageType {
	switch role {
	case providers.RoleSystem:
		return llms.ChatMessageTypeSystem
	case providers.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// usageCount reads one token count from GenerationInfo. Absent or oddly
// typed usage surfaces as zero rather than breaking accounting downstream.
func usageCount(info map[string]any, key string) int {
	if info == nil {
		return 0
	}
	switch v := info[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
