package services

import (
	"github.com/parleyhq/parley-backend/internal/filestorage"
	"github.com/parleyhq/parley-backend/internal/providers"
)

// Services bundles everything the API layer needs
type Services struct {
	Chat    *ChatService
	Prompts *CustomPromptService
	Files   *filestorage.S3Store
	Catalog *providers.Catalog
}
