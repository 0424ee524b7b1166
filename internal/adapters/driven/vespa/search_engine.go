package vespa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.SemanticSearcher = (*SemanticSearcher)(nil)
	_ driven.VectorIndexer    = (*SemanticSearcher)(nil)
)

// SemanticSearcher implements driven.SemanticSearcher over Vespa's HTTP
// search API, narrowed to a single nearestNeighbor YQL shape — BM25/hybrid
// mixing lives one layer up in the Hybrid Fuser, not here.
type SemanticSearcher struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds Vespa connection configuration.
type Config struct {
	// BaseURL is the Vespa endpoint (e.g., http://localhost:19071).
	BaseURL string

	// Timeout for HTTP requests.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}

// NewSemanticSearcher creates a new Vespa-backed SemanticSearcher.
func NewSemanticSearcher(cfg Config) *SemanticSearcher {
	return &SemanticSearcher{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type vespaFields struct {
	ID       string            `json:"id"`
	Source   string            `json:"source"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

type vespaSearchResponse struct {
	Root struct {
		Children []struct {
			Relevance float64     `json:"relevance"`
			Fields    vespaFields `json:"fields"`
		} `json:"children"`
	} `json:"root"`
}

// Search runs a nearestNeighbor-only ANN query against the "semantic" rank
// profile, filtering client-side on similarity >= threshold (the profile
// returns cosine similarity as relevance in this schema). Any backend error
// returns an empty result, per spec's graceful-degradation contract.
func (s *SemanticSearcher) Search(ctx context.Context, queryEmbedding []float32, topK int, similarityThreshold float64) ([]domain.RankedFragment, error) {
	if len(queryEmbedding) == 0 || topK <= 0 {
		return nil, nil
	}

	searchReq := map[string]any{
		"yql":                        fmt.Sprintf("select * from fragment where ({targetHits:%d}nearestNeighbor(embedding,embedding))", topK),
		"hits":                       topK,
		"ranking.profile":            "semantic",
		"input.query(embedding)":     queryEmbedding,
	}

	body, err := json.Marshal(searchReq)
	if err != nil {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search/", bytes.NewReader(body))
	if err != nil {
		return nil, nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, nil
	}

	var searchResp vespaSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, nil
	}

	results := make([]domain.RankedFragment, 0, len(searchResp.Root.Children))
	for _, hit := range searchResp.Root.Children {
		if hit.Relevance < similarityThreshold {
			continue
		}
		fragment := &domain.Fragment{
			ID:       hit.Fields.ID,
			Content:  hit.Fields.Content,
			Metadata: domain.Metadata(hit.Fields.Metadata),
		}
		results = append(results, domain.RankedFragment{Fragment: fragment, Score: hit.Relevance})
	}

	return results, nil
}

// Index pushes a fragment's embedding into Vespa's feed API.
func (s *SemanticSearcher) Index(ctx context.Context, fragments []*domain.Fragment) error {
	for _, f := range fragments {
		if err := s.indexOne(ctx, f); err != nil {
			return fmt.Errorf("vespa: index fragment %s: %w", f.ID, err)
		}
	}
	return nil
}

func (s *SemanticSearcher) indexOne(ctx context.Context, f *domain.Fragment) error {
	doc := struct {
		Fields struct {
			ID        string            `json:"id"`
			Source    string            `json:"source"`
			Content   string            `json:"content"`
			Embedding []float32         `json:"embedding,omitempty"`
			Metadata  map[string]string `json:"metadata"`
		} `json:"fields"`
	}{}
	doc.Fields.ID = f.ID
	doc.Fields.Source = f.Metadata.Source()
	doc.Fields.Content = f.Content
	doc.Fields.Embedding = f.Embedding
	doc.Fields.Metadata = f.Metadata

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/document/v1/sercha/fragment/docid/%s", s.baseURL, f.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("vespa index failed: %s - %s", resp.Status, string(respBody))
	}
	return nil
}

// DeleteBySource removes all fragments for a source via Vespa's
// delete-by-selection API.
func (s *SemanticSearcher) DeleteBySource(ctx context.Context, source string) error {
	selection := fmt.Sprintf("fragment.source==\"%s\"", strings.ReplaceAll(source, "\"", "\\\""))
	url := fmt.Sprintf("%s/document/v1/sercha/fragment/docid/?selection=%s&cluster=sercha", s.baseURL, selection)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("vespa delete by selection failed: %s - %s", resp.Status, string(respBody))
	}
	return nil
}

// HealthCheck verifies the search engine is available.
func (s *SemanticSearcher) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/state/v1/health", nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vespa health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vespa unhealthy: %s", resp.Status)
	}
	return nil
}
