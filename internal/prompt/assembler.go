// Package prompt builds the ordered message sequence handed to a provider
// for one dispatch call.
package prompt

import (
	"github.com/parleyhq/parley-backend/internal/providers"
	"github.com/parleyhq/parley-backend/internal/repository"
)

// DefaultSystemMessage is emitted when a chat has no custom prompt.
const DefaultSystemMessage = "You are a helpful assistant."

// Assemble produces the exact dispatch sequence: system preamble, template
// seed messages, prior turns, then the new user turn. Historical turns are
// always text-only; only the new turn may carry media.
func Assemble(profile providers.AssemblerProfile, template *repository.CustomPrompt, history []repository.Message, content string, image *providers.Image) []providers.ChatMessage {
	messages := make([]providers.ChatMessage, 0, len(history)+2)

	if profile.InjectSystem {
		system := DefaultSystemMessage
		if template != nil {
			system = Render(template.Content, template.Params)
		}
		messages = append(messages, providers.ChatMessage{
			Role:    providers.RoleSystem,
			Content: system,
		})
	}

	if profile.InjectSeeds && template != nil {
		for _, seed := range template.Messages {
			role, ok := mapRole(seed.Role)
			if !ok {
				// Unknown seed roles are dropped, not an error
				continue
			}
			messages = append(messages, providers.ChatMessage{
				Role:    role,
				Content: seed.Content,
			})
		}
	}

	for _, msg := range history {
		role, ok := mapRole(msg.Role)
		if !ok {
			continue
		}
		messages = append(messages, providers.ChatMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	messages = append(messages, providers.ChatMessage{
		Role:    providers.RoleUser,
		Content: content,
		Image:   image,
	})

	return messages
}

func mapRole(role string) (string, bool) {
	switch role {
	case repository.RoleUser:
		return providers.RoleUser, true
	case repository.RoleAssistant:
		return providers.RoleAssistant, true
	default:
		return "", false
	}
}
