package features

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
)

// fakeFragmentStore is an in-memory driven.FragmentStore. Saved fragments
// are also indexed for the fake lexical/semantic searchers so a scenario's
// ingest step feeds its chat step without a real database or Vespa.
type fakeFragmentStore struct {
	mu        sync.Mutex
	fragments []*domain.Fragment
}

func (s *fakeFragmentStore) Save(ctx context.Context, fragments []*domain.Fragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments = append(s.fragments, fragments...)
	return nil
}

func (s *fakeFragmentStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fragments), nil
}

func (s *fakeFragmentStore) GetBySource(ctx context.Context, source string) ([]*domain.Fragment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Fragment
	for _, f := range s.fragments {
		if f.Metadata.Source() == source {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeFragmentStore) DeleteBySource(ctx context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []*domain.Fragment
	for _, f := range s.fragments {
		if f.Metadata.Source() != source {
			kept = append(kept, f)
		}
	}
	s.fragments = kept
	return nil
}

func (s *fakeFragmentStore) HealthCheck(ctx context.Context) error { return nil }

func (s *fakeFragmentStore) all() []*domain.Fragment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Fragment, len(s.fragments))
	copy(out, s.fragments)
	return out
}

// fakeLexicalSearcher matches every stored fragment whose content contains
// at least one of the query's tokens, standing in for a real BM25 backend.
type fakeLexicalSearcher struct {
	store *fakeFragmentStore
}

func (l *fakeLexicalSearcher) Search(ctx context.Context, queryText string, topK int) ([]domain.RankedFragment, error) {
	var out []domain.RankedFragment
	tokens := strings.FieldsFunc(strings.ToLower(queryText), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	for _, f := range l.store.all() {
		content := strings.ToLower(f.Content)
		matched := len(tokens) == 0
		for _, tok := range tokens {
			if strings.Contains(content, tok) {
				matched = true
				break
			}
		}
		if matched {
			out = append(out, domain.RankedFragment{Fragment: f, Score: 1})
		}
		if len(out) >= topK {
			break
		}
	}
	return out, nil
}

// fakeSemanticSearcher returns nothing: the scenarios exercise the lexical
// side of the fuser, since a real ANN index has no in-memory stand-in
// grounded in the pack.
type fakeSemanticSearcher struct{}

func (s *fakeSemanticSearcher) Search(ctx context.Context, queryEmbedding []float32, topK int, similarityThreshold float64) ([]domain.RankedFragment, error) {
	return nil, nil
}

// fakeEmbedder returns a fixed-length zero vector; the semantic side is a
// no-op in these scenarios so the exact values never matter.
type fakeEmbedder struct{}

func (e *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, 8)
	}
	return out, nil
}

func (e *fakeEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return make([]float32, 8), nil
}

func (e *fakeEmbedder) Dimensions() int { return 8 }
func (e *fakeEmbedder) Model() string   { return "fake-embedder" }
func (e *fakeEmbedder) HealthCheck(ctx context.Context) error { return nil }
func (e *fakeEmbedder) Close() error                          { return nil }

// fakeLLM echoes a deterministic answer instead of calling a real provider.
type fakeLLM struct{}

func (l *fakeLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "sercha-core is a retrieval core [1]", nil
}

func (l *fakeLLM) Model() string             { return "fake-llm" }
func (l *fakeLLM) Ping(ctx context.Context) error { return nil }
func (l *fakeLLM) Close() error              { return nil }
