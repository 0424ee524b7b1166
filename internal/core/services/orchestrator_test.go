package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
)

type fakeFuser struct {
	fragments   []*domain.Fragment
	err         error
	lastQuery   domain.Query
}

func (f *fakeFuser) Search(ctx context.Context, query domain.Query) ([]*domain.Fragment, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.fragments, nil
}

type fakeRedactor struct {
	maskFn func(string) domain.MaskingRecord
}

func (f *fakeRedactor) Mask(text string) domain.MaskingRecord {
	if f.maskFn != nil {
		return f.maskFn(text)
	}
	return domain.MaskingRecord{MaskedText: text, Mappings: map[string]string{}}
}
func (f *fakeRedactor) Restore(masked string, mappings map[string]string) string {
	result := masked
	for placeholder, original := range mappings {
		result = strings.ReplaceAll(result, placeholder, original)
	}
	return result
}

type fakeLLM struct {
	answer string
	err    error
}

func (f *fakeLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}
func (f *fakeLLM) Model() string             { return "fake-llm" }
func (f *fakeLLM) Ping(ctx context.Context) error { return nil }
func (f *fakeLLM) Close() error              { return nil }

func TestOrchestrator_NoResults(t *testing.T) {
	fuser := &fakeFuser{}
	orch := NewOrchestrator(fuser, &fakeRedactor{}, &fakeLLM{answer: "should not be called"})

	resp, err := orch.Chat(context.Background(), domain.NewQuery("what does this do"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Answer != noResultsAnswer {
		t.Errorf("expected canonical no-results answer, got %q", resp.Answer)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(resp.Sources))
	}
	if resp.ResponseMetadata.DocumentsRetrieved != 0 {
		t.Errorf("expected 0 documents retrieved, got %d", resp.ResponseMetadata.DocumentsRetrieved)
	}
}

func TestOrchestrator_GeneratorFailure(t *testing.T) {
	frag := &domain.Fragment{Content: "some code", Metadata: domain.Metadata{domain.MetaSource: "Foo.java", domain.MetaFilename: "Foo.java"}}
	fuser := &fakeFuser{fragments: []*domain.Fragment{frag}}
	orch := NewOrchestrator(fuser, &fakeRedactor{}, &fakeLLM{err: errors.New("timeout")})

	resp, err := orch.Chat(context.Background(), domain.NewQuery("what does Foo do"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Answer != generatorFailureAnswer {
		t.Errorf("expected canonical error answer, got %q", resp.Answer)
	}
	if len(resp.Sources) != 1 {
		t.Fatalf("expected sources still returned, got %d", len(resp.Sources))
	}
}

func TestOrchestrator_HappyPath(t *testing.T) {
	frag1 := &domain.Fragment{Content: "class Foo {}", Metadata: domain.Metadata{domain.MetaSource: "Foo.java", domain.MetaFilename: "Foo.java"}}
	frag2 := &domain.Fragment{Content: "class Bar {}", Metadata: domain.Metadata{domain.MetaSource: "Bar.java", domain.MetaFilename: "Bar.java"}}
	fuser := &fakeFuser{fragments: []*domain.Fragment{frag1, frag2}}
	orch := NewOrchestrator(fuser, &fakeRedactor{}, &fakeLLM{answer: "Foo does X [1]."})

	resp, err := orch.Chat(context.Background(), domain.NewQuery("what does Foo do"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Answer != "Foo does X [1]." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(resp.Sources))
	}
	if resp.Sources[0].CitationNumber != 1 || resp.Sources[1].CitationNumber != 2 {
		t.Error("expected 1-based citation numbers in fragment order")
	}
	if resp.ResponseMetadata.DocumentsRetrieved != 2 {
		t.Errorf("expected 2 documents retrieved, got %d", resp.ResponseMetadata.DocumentsRetrieved)
	}
	if resp.ResponseMetadata.ModelLabel != "fake-llm" {
		t.Errorf("expected model label fake-llm, got %q", resp.ResponseMetadata.ModelLabel)
	}
}

func TestOrchestrator_MasksQueryBeforeSearch(t *testing.T) {
	fuser := &fakeFuser{}
	redactor := &fakeRedactor{maskFn: func(text string) domain.MaskingRecord {
		return domain.MaskingRecord{MaskedText: "[EMAIL_REDACTED_1] wants to know", Mappings: map[string]string{"[EMAIL_REDACTED_1]": "a@b.com"}}
	}}
	orch := NewOrchestrator(fuser, redactor, &fakeLLM{answer: "ok"})

	_, err := orch.Chat(context.Background(), domain.NewQuery("a@b.com wants to know"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fuser.lastQuery.Text != "[EMAIL_REDACTED_1] wants to know" {
		t.Errorf("expected masked query to reach the fuser, got %q", fuser.lastQuery.Text)
	}
}

func TestOrchestrator_NeverRestoresPIIInAnswer(t *testing.T) {
	frag := &domain.Fragment{Content: "code", Metadata: domain.Metadata{domain.MetaSource: "Foo.java"}}
	fuser := &fakeFuser{fragments: []*domain.Fragment{frag}}
	redactor := &fakeRedactor{maskFn: func(text string) domain.MaskingRecord {
		return domain.MaskingRecord{MaskedText: text, Mappings: map[string]string{"[EMAIL_REDACTED_1]": "a@b.com"}}
	}}
	orch := NewOrchestrator(fuser, redactor, &fakeLLM{answer: "contact [EMAIL_REDACTED_1] for details"})

	resp, err := orch.Chat(context.Background(), domain.NewQuery("q"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Answer != "contact [EMAIL_REDACTED_1] for details" {
		t.Errorf("expected the mask to remain one-way in outbound answers, got %q", resp.Answer)
	}
}
