package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.FragmentStore = (*FragmentStore)(nil)

// FragmentStore implements driven.FragmentStore using PostgreSQL. The
// lexical index (content_tsv) is maintained by the schema's trigger; this
// store only ever writes id/source/content/metadata/embedding.
type FragmentStore struct {
	db       *DB
	embedder driven.EmbeddingService
	index    driven.VectorIndexer
}

// NewFragmentStore creates a new FragmentStore. embedder fills in embeddings
// for any fragment that arrives without one; index receives every saved
// batch so the ANN backend stays in sync with the row store.
func NewFragmentStore(db *DB, embedder driven.EmbeddingService, index driven.VectorIndexer) *FragmentStore {
	return &FragmentStore{db: db, embedder: embedder, index: index}
}

// Save persists a batch of fragments, embedding any that lack a vector.
func (s *FragmentStore) Save(ctx context.Context, fragments []*domain.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}

	if err := s.embedMissing(ctx, fragments); err != nil {
		return fmt.Errorf("fragment store: embed batch: %w", err)
	}

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO fragments (id, source, content, metadata, embedding, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (id) DO UPDATE SET
				content = EXCLUDED.content,
				metadata = EXCLUDED.metadata,
				embedding = EXCLUDED.embedding
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, f := range fragments {
			if f.ID == "" {
				f.ID = domain.GenerateID()
			}
			metadataJSON, err := json.Marshal(f.Metadata)
			if err != nil {
				return fmt.Errorf("marshal metadata for %s: %w", f.Metadata.Source(), err)
			}

			if _, err := stmt.ExecContext(ctx, f.ID, f.Metadata.Source(), f.Content, metadataJSON, pgvector.NewVector(f.Embedding)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.Index(ctx, fragments); err != nil {
			return fmt.Errorf("fragment store: vector index: %w", err)
		}
	}
	return nil
}

// HealthCheck verifies the store is reachable.
func (s *FragmentStore) HealthCheck(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *FragmentStore) embedMissing(ctx context.Context, fragments []*domain.Fragment) error {
	var toEmbed []*domain.Fragment
	var texts []string
	for _, f := range fragments {
		if len(f.Embedding) == 0 {
			toEmbed = append(toEmbed, f)
			texts = append(texts, f.Content)
		}
	}
	if len(toEmbed) == 0 {
		return nil
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(toEmbed) {
		return fmt.Errorf("embedding service returned %d vectors for %d texts", len(vectors), len(toEmbed))
	}
	for i, f := range toEmbed {
		f.Embedding = vectors[i]
	}
	return nil
}

// Count returns the total number of persisted fragments.
func (s *FragmentStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fragments`).Scan(&count)
	return count, err
}

// GetBySource retrieves all fragments ingested from a given source path,
// ordered by chunk_index.
func (s *FragmentStore) GetBySource(ctx context.Context, source string) ([]*domain.Fragment, error) {
	query := `
		SELECT id, content, metadata
		FROM fragments
		WHERE source = $1
		ORDER BY (metadata->>'chunk_index')::int ASC NULLS LAST
	`

	rows, err := s.db.QueryContext(ctx, query, source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fragments []*domain.Fragment
	for rows.Next() {
		f, err := scanFragment(rows)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, f)
	}
	return fragments, rows.Err()
}

// DeleteBySource removes all fragments for a source, making re-ingestion of
// an unchanged file idempotent by identity.
func (s *FragmentStore) DeleteBySource(ctx context.Context, source string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fragments WHERE source = $1`, source); err != nil {
		return err
	}
	if s.index != nil {
		return s.index.DeleteBySource(ctx, source)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFragment(row rowScanner) (*domain.Fragment, error) {
	var f domain.Fragment
	var metadataJSON []byte
	if err := row.Scan(&f.ID, &f.Content, &metadataJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metadataJSON, &f.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata for fragment %s: %w", f.ID, err)
	}
	return &f, nil
}
