package driving

import (
	"context"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
)

// HybridFuser normalizes and linearly combines Semantic and Lexical search
// results, applies the query's Filter, and returns at most TopK fragments
// with transient score metadata attached (C5).
type HybridFuser interface {
	Search(ctx context.Context, query domain.Query) ([]*domain.Fragment, error)
}

// Redactor detects and masks PII in outbound text, and can restore its own
// masking within the same request (C6).
type Redactor interface {
	Mask(text string) domain.MaskingRecord
	Restore(masked string, mappings map[string]string) string
}

// Orchestrator composes redaction, hybrid retrieval, context assembly,
// generator invocation and citation binding into a chat response (C7).
type Orchestrator interface {
	Chat(ctx context.Context, query domain.Query) (*domain.Response, error)
}

// Evaluator runs a query through the Orchestrator and scores the result
// with an LLM judge (C8).
type Evaluator interface {
	Evaluate(ctx context.Context, queryText string) (*domain.EvaluationResult, error)
}

// Ingestor walks a filesystem path, chunks each supported file, and commits
// the resulting fragments to the stores (C2).
type Ingestor interface {
	Ingest(ctx context.Context, rootPath string) (int, error)
}
