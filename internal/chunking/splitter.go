// Package chunking implements the code-aware chunker (C1): it turns a
// loaded document into an ordered sequence of Fragments, dispatching by
// file type to a splitter that understands the shape of that content.
package chunking

import (
	"github.com/custodia-labs/sercha-core/internal/core/domain"
)

// LoadedDocument is a file's content plus the identity metadata the
// Ingestor already knows about it, before any chunking has happened.
type LoadedDocument struct {
	Source   string // absolute file path
	Filename string
	FileType string // "java", "md", "pdf", "txt", "yaml", "yml", "gradle", "properties"
	Content  string
}

// estimateTokens approximates token count as one token per four characters,
// matching the character-based estimator used throughout the source corpus.
func estimateTokens(s string) int {
	return len(s) / 4
}

// Splitter turns a loaded document into fragments within a token budget.
// A tagged variant over splitter kinds (Java/Markdown/PDF/generic) stands
// in for the source's inheritance-based splitter hierarchy.
type Splitter interface {
	Split(doc LoadedDocument, maxTokens int) ([]*domain.Fragment, error)
}

// Registry dispatches to the splitter registered for a file_type, falling
// back to the generic splitter for anything unrecognized.
type Registry struct {
	splitters map[string]Splitter
	fallback  Splitter
}

// NewRegistry builds the default dispatch table: Java gets the code-aware
// splitter, Markdown gets the header-based splitter, PDF gets the
// one-page-per-fragment loader, everything else falls back to the generic
// fixed-window splitter.
func NewRegistry() *Registry {
	generic := NewGenericSplitter()
	return &Registry{
		splitters: map[string]Splitter{
			"java": NewJavaSplitter(),
			"md":   NewMarkdownSplitter(),
			"pdf":  NewPDFSplitter(),
		},
		fallback: generic,
	}
}

// Get returns the splitter registered for fileType, or the generic fallback.
func (r *Registry) Get(fileType string) Splitter {
	if s, ok := r.splitters[fileType]; ok {
		return s
	}
	return r.fallback
}
