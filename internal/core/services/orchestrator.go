package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driving"
)

// Ensure orchestrator implements driving.Orchestrator.
var _ driving.Orchestrator = (*orchestrator)(nil)

const (
	noResultsAnswer = "I couldn't find any relevant information in the codebase to answer your question. " +
		"Please try rephrasing your query or check if the documents have been ingested."

	generatorFailureAnswer = "Sorry, I encountered an error generating the answer. Please try again."

	orchestratorSystemPrompt = `You are a helpful code assistant with deep knowledge of software engineering.
Answer the user's question based ONLY on the provided context.

Guidelines:
- Be concise and technical
- ALWAYS cite sources using [1], [2], etc. when referencing specific information
- Cite specific file names, class names, and method names when available
- If the context doesn't contain enough information, say so
- Place citations immediately after the relevant statement`

	contextSectionDelimiter = "\n---\n"
)

// orchestrator composes redaction, hybrid retrieval, context assembly,
// generator invocation and citation binding into a chat response (C7).
type orchestrator struct {
	fuser    driving.HybridFuser
	redactor driving.Redactor
	llm      driven.LLMService
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(fuser driving.HybridFuser, redactor driving.Redactor, llm driven.LLMService) driving.Orchestrator {
	return &orchestrator{fuser: fuser, redactor: redactor, llm: llm}
}

func (o *orchestrator) Chat(ctx context.Context, query domain.Query) (*domain.Response, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, domain.ErrEmptyQuery
	}

	start := time.Now()

	masked := o.redactor.Mask(query.Text)
	maskedQuery := query
	maskedQuery.Text = masked.MaskedText

	fragments, err := o.fuser.Search(ctx, maskedQuery)
	if err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		return &domain.Response{
			Answer:  noResultsAnswer,
			Sources: []*domain.SourceDocument{},
			ResponseMetadata: domain.ResponseMetadata{
				DocumentsRetrieved: 0,
				ProcessingTimeMs:   elapsedMs(start),
				ModelLabel:         o.llm.Model(),
			},
		}, nil
	}

	contextStr := assembleContext(fragments)
	userPrompt := fmt.Sprintf("Context from codebase:\n%s\n\nQuestion: %s\n\nAnswer:", contextStr, masked.MaskedText)

	// The mask is one-way from the user's perspective: the reverse mapping
	// exists for future per-user restoration but is never applied to the
	// outbound answer here.
	answer, err := o.llm.Generate(ctx, orchestratorSystemPrompt, userPrompt)
	if err != nil {
		answer = generatorFailureAnswer
	}

	sources := make([]*domain.SourceDocument, 0, len(fragments))
	for i, f := range fragments {
		sources = append(sources, domain.NewSourceDocument(i+1, f))
	}

	return &domain.Response{
		Answer:  answer,
		Sources: sources,
		ResponseMetadata: domain.ResponseMetadata{
			DocumentsRetrieved: len(fragments),
			ProcessingTimeMs:   elapsedMs(start),
			ModelLabel:         o.llm.Model(),
		},
	}, nil
}

// assembleContext concatenates each fragment's source, filename and content,
// separated by a fixed delimiter line.
func assembleContext(fragments []*domain.Fragment) string {
	sections := make([]string, 0, len(fragments))
	for _, f := range fragments {
		sections = append(sections, fmt.Sprintf("[Source: %s]\n[File: %s]\n%s", f.Metadata.Source(), f.Metadata.Filename(), f.Content))
	}
	return strings.Join(sections, contextSectionDelimiter)
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
