package domain

import "strings"

// Query is a retrieval request.
type Query struct {
	Text               string  `json:"text"`
	TopK               int     `json:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	Filter             *Filter `json:"filter,omitempty"`
}

// DefaultTopK and DefaultSimilarityThreshold are the Query defaults.
const (
	DefaultTopK                = 5
	DefaultSimilarityThreshold = 0.7
)

// NewQuery builds a Query with defaults applied for zero-valued fields.
func NewQuery(text string) Query {
	return Query{
		Text:                text,
		TopK:                DefaultTopK,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// Filter is an AND-conjunction of optional predicates over reserved metadata
// keys. Absent/blank predicates are vacuously true.
type Filter struct {
	FileType   string `json:"file_type,omitempty"`
	SourcePath string `json:"source_path,omitempty"`
	ClassName  string `json:"class_name,omitempty"`
	MethodName string `json:"method_name,omitempty"`
	Filename   string `json:"filename,omitempty"`
}

// Matches reports whether the given metadata satisfies every predicate in
// the filter. A nil filter matches everything.
func (f *Filter) Matches(m Metadata) bool {
	if f == nil {
		return true
	}
	if !matchEquality(f.FileType, m.FileType()) {
		return false
	}
	if !matchSubstring(f.SourcePath, m.Source()) {
		return false
	}
	if !matchEquality(f.ClassName, m.ClassName()) {
		return false
	}
	if !matchEquality(f.MethodName, m.MethodName()) {
		return false
	}
	if !matchSubstring(f.Filename, m.Filename()) {
		return false
	}
	return true
}

// matchEquality: blank predicate is vacuously true; absent metadata is
// treated as empty string, which fails a non-blank equality predicate.
func matchEquality(predicate, actual string) bool {
	if predicate == "" {
		return true
	}
	return strings.EqualFold(predicate, actual)
}

// matchSubstring: blank predicate is vacuously true; a blank actual value
// only passes when the predicate is also blank (handled above).
func matchSubstring(predicate, actual string) bool {
	if predicate == "" {
		return true
	}
	return strings.Contains(strings.ToLower(actual), strings.ToLower(predicate))
}
