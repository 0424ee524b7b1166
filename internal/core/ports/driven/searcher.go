package driven

import (
	"context"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
)

// LexicalSearcher runs a BM25-like query against the persisted tokenized
// content column (C3). On backend error it returns an empty slice, nil —
// failures never propagate past this boundary.
type LexicalSearcher interface {
	Search(ctx context.Context, queryText string, topK int) ([]domain.RankedFragment, error)
}

// SemanticSearcher runs an approximate-nearest-neighbor query against the
// vector index (C4). Results are ordered by decreasing cosine similarity
// and already filtered to similarity >= threshold. On backend error it
// returns an empty slice, nil.
type SemanticSearcher interface {
	Search(ctx context.Context, queryEmbedding []float32, topK int, similarityThreshold float64) ([]domain.RankedFragment, error)
}

// VectorIndexer keeps the ANN backend (Vespa) in sync with FragmentStore.
// FragmentStore.Save fans out to it after committing to the row store.
type VectorIndexer interface {
	Index(ctx context.Context, fragments []*domain.Fragment) error
	DeleteBySource(ctx context.Context, source string) error
}

// FragmentStore persists Fragments and keeps the lexical/vector indexes
// in sync. Save transparently embeds fragments that arrive without one and
// pushes them to the configured VectorIndexer.
type FragmentStore interface {
	// Save persists a batch of fragments, embedding any that lack a vector.
	Save(ctx context.Context, fragments []*domain.Fragment) error

	// Count returns the total number of persisted fragments.
	Count(ctx context.Context) (int, error)

	// GetBySource retrieves all fragments ingested from a given source path,
	// ordered by chunk_index; used to reconstruct a document's content.
	GetBySource(ctx context.Context, source string) ([]*domain.Fragment, error)

	// DeleteBySource removes all fragments for a source (used to make
	// re-ingestion of an unchanged file idempotent by identity).
	DeleteBySource(ctx context.Context, source string) error

	// HealthCheck verifies the store is reachable.
	HealthCheck(ctx context.Context) error
}
