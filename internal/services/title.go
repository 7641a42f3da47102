package services

import (
	"context"
	"strings"
)

// GenerateTitle summarizes one exchange into a short chat title. The model
// identifier is routed independently of the send path; a chat's model governs
// both, and an unsupported model fails here too before any network call.
func (s *ChatService) GenerateTitle(ctx context.Context, model, userText, assistantText string) (string, error) {
	provider, err := s.router.Route(model)
	if err != nil {
		return "", err
	}

	title, err := provider.GenerateTitle(ctx, userText, assistantText)
	if err != nil {
		return "", err
	}

	// Providers occasionally wrap the title in quotes despite the instruction
	return strings.Trim(strings.TrimSpace(title), `"`), nil
}
