package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/parleyhq/parley-backend/internal/prompt"
	"github.com/parleyhq/parley-backend/internal/repository"
)

// ErrInvalidPrompt is returned when a template fails validation.
var ErrInvalidPrompt = errors.New("invalid custom prompt")

// CustomPromptService manages reusable prompt templates. Placeholder
// validation happens here, on create and update, never at dispatch.
type CustomPromptService struct {
	promptRepo repository.CustomPromptRepository
}

// NewCustomPromptService creates a new custom prompt service
func NewCustomPromptService(promptRepo repository.CustomPromptRepository) *CustomPromptService {
	return &CustomPromptService{promptRepo: promptRepo}
}

// Create validates and stores a new prompt template
func (s *CustomPromptService) Create(ctx context.Context, p repository.CustomPrompt) (string, error) {
	if err := s.validate(p); err != nil {
		return "", err
	}
	return s.promptRepo.Create(ctx, p)
}

// Get retrieves a prompt template with its seed messages and params
func (s *CustomPromptService) Get(ctx context.Context, id string) (*repository.CustomPrompt, error) {
	p, err := s.promptRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPromptNotFound, id)
	}
	return p, nil
}

// List returns all prompt templates
func (s *CustomPromptService) List(ctx context.Context) ([]*repository.CustomPrompt, error) {
	return s.promptRepo.List(ctx)
}

// Update validates and replaces a prompt template
func (s *CustomPromptService) Update(ctx context.Context, p repository.CustomPrompt) error {
	if err := s.validate(p); err != nil {
		return err
	}
	if err := s.promptRepo.Update(ctx, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrPromptNotFound, p.ID)
		}
		return err
	}
	return nil
}

// Delete deletes a prompt template
func (s *CustomPromptService) Delete(ctx context.Context, id string) error {
	return s.promptRepo.Delete(ctx, id)
}

func (s *CustomPromptService) validate(p repository.CustomPrompt) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPrompt)
	}
	if p.Content == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidPrompt)
	}
	if err := prompt.Validate(p.Content, p.Params); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPrompt, err)
	}
	return nil
}
