package providers

import (
	"fmt"
	"regexp"
	"strings"
)

// Provider identifiers used by the routing rules.
const (
	ProviderOpenAI   = "openai"
	ProviderGoogleAI = "googleai"
)

// RoutingRule maps a model-identifier predicate to a provider id. Rules are
// data so a third family is an added row, not new branching.
type RoutingRule struct {
	Prefix   string
	Pattern  *regexp.Regexp
	Provider string
}

func (r RoutingRule) matches(model string) bool {
	if r.Prefix != "" && strings.HasPrefix(model, r.Prefix) {
		return true
	}
	return r.Pattern != nil && r.Pattern.MatchString(model)
}

// DefaultRoutingRules is the built-in rule table, evaluated in order.
func DefaultRoutingRules() []RoutingRule {
	return []RoutingRule{
		{Prefix: "gpt-", Provider: ProviderOpenAI},
		{Pattern: regexp.MustCompile(`^o[0-9]`), Provider: ProviderOpenAI},
		{Prefix: "gemini-", Provider: ProviderGoogleAI},
	}
}

// Router resolves a chat's model identifier to a registered provider. It is
// immutable after construction and safe for concurrent use.
type Router struct {
	rules     []RoutingRule
	providers map[string]Provider
}

// NewRouter creates a router over the given providers and rule table.
func NewRouter(registered map[string]Provider, rules []RoutingRule) *Router {
	providers := make(map[string]Provider, len(registered))
	for id, p := range registered {
		providers[id] = p
	}
	return &Router{rules: rules, providers: providers}
}

// Route returns the provider for a model identifier. Unrecognized identifiers
// fail with ErrUnsupportedModel before any network call is attempted.
func (r *Router) Route(model string) (Provider, error) {
	for _, rule := range r.rules {
		if !rule.matches(model) {
			continue
		}
		p, ok := r.providers[rule.Provider]
		if !ok {
			return nil, fmt.Errorf("%w: %s (provider %s not configured)", ErrUnsupportedModel, model, rule.Provider)
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, model)
}
