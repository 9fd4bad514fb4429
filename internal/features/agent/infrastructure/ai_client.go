package infrastructure

import (
	"context"

	"synthetic-persona/backend/internal/features/agent/domain"
)

// GenerationRequest is one prompt plus optional images for the model.
type GenerationRequest struct {
	Prompt string
	// Notes are extra text parts appended after the prompt.
	Notes  []string
	Images []domain.Media
	Params domain.ModelParams
}

// AIClient defines a generic interface for multimodal generation services.
type AIClient interface {
	// Generate returns the model's text reply.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	// Model names the model used when a request does not choose one.
	Model() string
}
