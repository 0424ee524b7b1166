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

// Ensure evaluator implements driving.Evaluator.
var _ driving.Evaluator = (*evaluator)(nil)

const faithfulnessContextTruncateLen = 2000

const relevancePromptTemplate = `You are an expert evaluator for a RAG system.
Your task is to rate the RELEVANCE of the answer to the query on a scale of 1 to 5.

Query: %s
Answer: %s

Rating Criteria:
1: Irrelevant answer, does not address the query at all.
3: Partially relevant, addresses some aspects but misses key points.
5: Highly relevant, directly and fully answers the query.

OUTPUT ONLY A SINGLE INTEGER (1-5). DO NOT EXPLAIN.`

const faithfulnessPromptTemplate = `You are an expert evaluator for a RAG system.
Your task is to rate the FAITHFULNESS of the answer based on the provided context on a scale of 1 to 5.

Context:
%s

Answer: %s

Rating Criteria:
1: Hallucinated answer, contains information NOT found in the context.
3: Mixed faithfulness, some statements supported, others not.
5: Faithful answer, all statements are supported by the provided context.

OUTPUT ONLY A SINGLE INTEGER (1-5). DO NOT EXPLAIN.`

// evaluator runs a query through the Orchestrator and scores the result with
// an LLM judge along two dimensions (C8).
type evaluator struct {
	orchestrator driving.Orchestrator
	judge        driven.LLMService
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(orchestrator driving.Orchestrator, judge driven.LLMService) driving.Evaluator {
	return &evaluator{orchestrator: orchestrator, judge: judge}
}

func (e *evaluator) Evaluate(ctx context.Context, queryText string) (*domain.EvaluationResult, error) {
	start := time.Now()
	response, err := e.orchestrator.Chat(ctx, domain.Query{Text: queryText, TopK: 3, SimilarityThreshold: domain.DefaultSimilarityThreshold})
	if err != nil {
		return nil, err
	}
	latency := time.Since(start).Milliseconds()

	contents := make([]string, 0, len(response.Sources))
	for _, s := range response.Sources {
		contents = append(contents, s.Content)
	}
	context_ := strings.Join(contents, "\n\n")

	relevance := e.judgeScore(ctx, fmt.Sprintf(relevancePromptTemplate, queryText, response.Answer))

	faithfulness := 0
	if context_ != "" {
		faithfulness = e.judgeScore(ctx, fmt.Sprintf(faithfulnessPromptTemplate, truncateContext(context_), response.Answer))
	}

	return &domain.EvaluationResult{
		Query:  queryText,
		Answer: response.Answer,
		Scores: domain.EvaluationScores{
			Relevance:    relevance,
			Faithfulness: faithfulness,
		},
		Reasoning: domain.EvaluationReasoning{Summary: domain.EvaluationReasoningSummary},
		LatencyMs: latency,
	}, nil
}

func (e *evaluator) judgeScore(ctx context.Context, prompt string) int {
	result, err := e.judge.Generate(ctx, "", prompt)
	if err != nil {
		return 0
	}
	return parseScore(result)
}

func truncateContext(s string) string {
	if len(s) <= faithfulnessContextTruncateLen {
		return s
	}
	return s[:faithfulnessContextTruncateLen] + "..."
}

// parseScore extracts the first digit found in the judge's response; a
// response with no digit scores 0.
func parseScore(text string) int {
	for _, r := range text {
		if r >= '0' && r <= '9' {
			return int(r - '0')
		}
	}
	return 0
}
