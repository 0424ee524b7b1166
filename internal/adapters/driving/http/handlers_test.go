package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
)

type mockOrchestrator struct {
	chatFn func(ctx context.Context, query domain.Query) (*domain.Response, error)
}

func (m *mockOrchestrator) Chat(ctx context.Context, query domain.Query) (*domain.Response, error) {
	if m.chatFn != nil {
		return m.chatFn(ctx, query)
	}
	return nil, errors.New("not implemented")
}

type mockIngestor struct {
	ingestFn func(ctx context.Context, path string) (int, error)
}

func (m *mockIngestor) Ingest(ctx context.Context, path string) (int, error) {
	if m.ingestFn != nil {
		return m.ingestFn(ctx, path)
	}
	return 0, errors.New("not implemented")
}

type mockEvaluator struct {
	evaluateFn func(ctx context.Context, queryText string) (*domain.EvaluationResult, error)
}

func (m *mockEvaluator) Evaluate(ctx context.Context, queryText string) (*domain.EvaluationResult, error) {
	if m.evaluateFn != nil {
		return m.evaluateFn(ctx, queryText)
	}
	return nil, errors.New("not implemented")
}

func newTestServer(orch *mockOrchestrator, ing *mockIngestor, ev *mockEvaluator) *Server {
	return NewServer(DefaultConfig(), orch, ing, ev, nil, nil, nil)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&mockOrchestrator{}, &mockIngestor{}, &mockEvaluator{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = "1.2.3"
	s := NewServer(cfg, &mockOrchestrator{}, &mockIngestor{}, &mockEvaluator{}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp VersionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", resp.Version)
	}
}

func TestHandleChat_Success(t *testing.T) {
	orch := &mockOrchestrator{
		chatFn: func(ctx context.Context, query domain.Query) (*domain.Response, error) {
			return &domain.Response{Answer: "the answer"}, nil
		},
	}
	s := newTestServer(orch, &mockIngestor{}, &mockEvaluator{})

	body, _ := json.Marshal(chatRequest{Text: "what is sercha-core?"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer != "the answer" {
		t.Errorf("expected 'the answer', got %q", resp.Answer)
	}
}

func TestHandleChat_EmptyQuery(t *testing.T) {
	orch := &mockOrchestrator{
		chatFn: func(ctx context.Context, query domain.Query) (*domain.Response, error) {
			return nil, domain.ErrEmptyQuery
		},
	}
	s := newTestServer(orch, &mockIngestor{}, &mockEvaluator{})

	body, _ := json.Marshal(chatRequest{Text: ""})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleChat_InvalidBody(t *testing.T) {
	s := newTestServer(&mockOrchestrator{}, &mockIngestor{}, &mockEvaluator{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleIngest_Success(t *testing.T) {
	ing := &mockIngestor{
		ingestFn: func(ctx context.Context, path string) (int, error) {
			if path != "/data/docs" {
				t.Errorf("expected path /data/docs, got %s", path)
			}
			return 42, nil
		},
	}
	s := newTestServer(&mockOrchestrator{}, ing, &mockEvaluator{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest?path=/data/docs", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["fragments_ingested"] != 42 {
		t.Errorf("expected 42 fragments, got %d", resp["fragments_ingested"])
	}
}

func TestHandleIngest_PathRequired(t *testing.T) {
	ing := &mockIngestor{
		ingestFn: func(ctx context.Context, path string) (int, error) {
			return 0, domain.ErrIngestPathRequired
		},
	}
	s := newTestServer(&mockOrchestrator{}, ing, &mockEvaluator{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleEvaluationRun_Success(t *testing.T) {
	ev := &mockEvaluator{
		evaluateFn: func(ctx context.Context, queryText string) (*domain.EvaluationResult, error) {
			return &domain.EvaluationResult{Query: queryText, Answer: "ok"}, nil
		},
	}
	s := newTestServer(&mockOrchestrator{}, &mockIngestor{}, ev)

	body, _ := json.Marshal(evaluationRequest{Text: "how does chunking work?"})
	req := httptest.NewRequest(http.MethodPost, "/api/evaluation/run", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.EvaluationResult
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer != "ok" {
		t.Errorf("expected answer 'ok', got %q", resp.Answer)
	}
}

func TestHandleReady_DBUnavailable(t *testing.T) {
	failingPinger := pingerFunc(func(ctx context.Context) error {
		return errors.New("connection refused")
	})
	s := NewServer(DefaultConfig(), &mockOrchestrator{}, &mockIngestor{}, &mockEvaluator{}, failingPinger, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
