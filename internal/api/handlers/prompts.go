package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/parleyhq/parley-backend/internal/repository"
	"github.com/parleyhq/parley-backend/internal/services"
)

type promptRequest struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Params []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"params"`
}

func (r promptRequest) toPrompt() repository.CustomPrompt {
	p := repository.CustomPrompt{
		Name:    r.Name,
		Content: r.Content,
	}
	for _, m := range r.Messages {
		p.Messages = append(p.Messages, repository.PromptMessage{Role: m.Role, Content: m.Content})
	}
	for _, param := range r.Params {
		p.Params = append(p.Params, repository.PromptParam{Name: param.Name, Value: param.Value})
	}
	return p
}

// CreatePrompt validates and stores a prompt template
func CreatePrompt(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req promptRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		id, err := svc.Prompts.Create(c.Context(), req.toPrompt())
		if err != nil {
			return errorResponse(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
	}
}

// GetPrompts returns all prompt templates
func GetPrompts(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		prompts, err := svc.Prompts.List(c.Context())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(prompts)
	}
}

// GetPrompt returns a prompt template with its seed messages and params
func GetPrompt(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Prompts.Get(c.Context(), c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(p)
	}
}

// UpdatePrompt validates and replaces a prompt template
func UpdatePrompt(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req promptRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		p := req.toPrompt()
		p.ID = c.Params("id")
		if err := svc.Prompts.Update(c.Context(), p); err != nil {
			return errorResponse(c, err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeletePrompt deletes a prompt template
func DeletePrompt(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Prompts.Delete(c.Context(), c.Params("id")); err != nil {
			return errorResponse(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
