package postgres

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.LexicalSearcher = (*LexicalSearcher)(nil)

// LexicalSearcher implements driven.LexicalSearcher using PostgreSQL's
// built-in full-text search, grounded on KeywordSearchService.java's
// ts_rank_cd / plainto_tsquery query shape.
type LexicalSearcher struct {
	db *DB
}

// NewLexicalSearcher creates a new LexicalSearcher.
func NewLexicalSearcher(db *DB) *LexicalSearcher {
	return &LexicalSearcher{db: db}
}

// Search runs a BM25-like query against content_tsv. Any backend error is
// swallowed into an empty result, matching spec.md's graceful-degradation
// contract for search backends.
func (s *LexicalSearcher) Search(ctx context.Context, queryText string, topK int) ([]domain.RankedFragment, error) {
	query := `
		SELECT
			id, content, metadata,
			ts_rank_cd(content_tsv, plainto_tsquery('english', $1)) AS score
		FROM fragments
		WHERE content_tsv @@ plainto_tsquery('english', $1)
		ORDER BY score DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, queryText, topK)
	if err != nil {
		return nil, nil
	}
	defer rows.Close()

	var results []domain.RankedFragment
	for rows.Next() {
		var f domain.Fragment
		var metadataJSON []byte
		var score float64
		if err := rows.Scan(&f.ID, &f.Content, &metadataJSON, &score); err != nil {
			return nil, nil
		}
		if err := json.Unmarshal(metadataJSON, &f.Metadata); err != nil {
			continue
		}
		results = append(results, domain.RankedFragment{Fragment: &f, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, nil
	}

	return results, nil
}
