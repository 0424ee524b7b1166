package driven

import (
	"context"
)

// LLMService provides generator/judge capabilities: answering a grounded
// question given assembled context, and scoring a prior answer for the
// Evaluator's relevance/faithfulness judge calls.
type LLMService interface {
	// Generate produces an answer given a fixed system instruction and a
	// user prompt (already carrying the assembled context, for the
	// Orchestrator, or a judge rubric, for the Evaluator).
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Model returns the model name being used.
	Model() string

	// Ping verifies the LLM service is available.
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service.
	Close() error
}
