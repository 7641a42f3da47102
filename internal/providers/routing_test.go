package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedProvider struct {
	name string
}

func (p *namedProvider) Name() string { return p.name }

func (p *namedProvider) Send(ctx context.Context, messages []ChatMessage, opts SendOptions) (*ChatResult, error) {
	return &ChatResult{}, nil
}

func (p *namedProvider) GenerateTitle(ctx context.Context, userText, assistantText string) (string, error) {
	return "", nil
}

func (p *namedProvider) Profile() AssemblerProfile {
	return AssemblerProfile{InjectSystem: true, InjectSeeds: true}
}

func newTestRouter() *Router {
	return NewRouter(map[string]Provider{
		ProviderOpenAI:   &namedProvider{name: ProviderOpenAI},
		ProviderGoogleAI: &namedProvider{name: ProviderGoogleAI},
	}, DefaultRoutingRules())
}

func TestRoute_KnownModels(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		model        string
		wantProvider string
	}{
		{model: "gpt-4.1-2025-04-14", wantProvider: ProviderOpenAI},
		{model: "gpt-4o", wantProvider: ProviderOpenAI},
		{model: "o3-mini", wantProvider: ProviderOpenAI},
		{model: "o4-mini-2025-04-16", wantProvider: ProviderOpenAI},
		{model: "gemini-2.0-flash", wantProvider: ProviderGoogleAI},
		{model: "gemini-2.5-pro", wantProvider: ProviderGoogleAI},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			p, err := router.Route(tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.wantProvider, p.Name())
		})
	}
}

func TestRoute_UnsupportedModels(t *testing.T) {
	router := newTestRouter()

	tests := []string{
		"claude-3-opus",
		"llama-3-70b",
		"davinci",
		"ollama",    // "o" prefix without a digit
		"GPT-4o",    // prefixes are case-sensitive
		"pgpt-4",    // prefix must anchor at the start
		"",
	}

	for _, model := range tests {
		t.Run("model="+model, func(t *testing.T) {
			p, err := router.Route(model)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrUnsupportedModel)
		})
	}
}

func TestRoute_UnconfiguredProvider(t *testing.T) {
	// A matching rule whose provider has no credentials still fails fast
	router := NewRouter(map[string]Provider{
		ProviderOpenAI: &namedProvider{name: ProviderOpenAI},
	}, DefaultRoutingRules())

	p, err := router.Route("gemini-2.0-flash")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestCatalog_Temperature(t *testing.T) {
	catalog := NewCatalog()

	assert.Equal(t, float32(0.7), catalog.Temperature("gemini-2.0-flash"))
	assert.Equal(t, float32(1), catalog.Temperature("gpt-4o"))

	// Unknown models default to zero
	assert.Equal(t, float32(0), catalog.Temperature("some-unknown-model"))
}

func TestCatalog_Get(t *testing.T) {
	catalog := NewCatalog()

	spec, ok := catalog.Get("gpt-4.1-2025-04-14")
	require.True(t, ok)
	assert.Equal(t, ProviderOpenAI, spec.Provider)

	_, ok = catalog.Get("unknown")
	assert.False(t, ok)
}
