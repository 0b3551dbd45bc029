package port

import "context"

// Generator produces text from a system instruction and a user prompt.
type Generator interface {
	// Generate returns the model's completion for the prompt pair.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the generation model.
	ModelName() string
}
