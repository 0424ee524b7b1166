package domain

import "fmt"

// RankedFragment is a Fragment returned from a search backend along with
// its raw (backend-specific) relevance score.
type RankedFragment struct {
	Fragment *Fragment
	Score    float64
}

// Response is the Orchestrator's answer to a chat request.
type Response struct {
	Answer           string             `json:"answer"`
	Sources          []*SourceDocument  `json:"sources"`
	ResponseMetadata ResponseMetadata   `json:"response_metadata"`
}

// SourceDocument is one citation-bound fragment in a Response.
type SourceDocument struct {
	CitationNumber int     `json:"citation_number"`
	Source         string  `json:"source"`
	Filename       string  `json:"filename"`
	Content        string  `json:"content"`
	HybridScore    float64 `json:"hybrid_score"`
	SemanticScore  float64 `json:"semantic_score"`
	KeywordScore   float64 `json:"keyword_score"`
	Metadata       string  `json:"metadata,omitempty"`
	LineRange      string  `json:"line_range,omitempty"`
	ClassName      string  `json:"class_name,omitempty"`
	MethodName     string  `json:"method_name,omitempty"`
}

// ResponseMetadata carries operational detail about how a Response was built.
type ResponseMetadata struct {
	DocumentsRetrieved int   `json:"documents_retrieved"`
	ProcessingTimeMs   int64 `json:"processing_time_ms"`
	ModelLabel         string `json:"model_label"`
}

const contentTruncateLen = 200

// NewSourceDocument builds a SourceDocument from a fused RankedFragment,
// truncating content and flattening structural metadata, matching the
// citation-binding contract of the Orchestrator.
func NewSourceDocument(citationNumber int, f *Fragment) *SourceDocument {
	m := f.Metadata
	doc := &SourceDocument{
		CitationNumber: citationNumber,
		Source:         m.Source(),
		Filename:       m.Filename(),
		Content:        truncate(f.Content, contentTruncateLen),
		HybridScore:    m.Float(MetaHybridScore),
		SemanticScore:  m.Float(MetaSemanticScore),
		KeywordScore:   m.Float(MetaKeywordScore),
		ClassName:      m.ClassName(),
		MethodName:     m.MethodName(),
		Metadata:       flattenMetadata(m),
	}
	if start, ok := m.StartLine(); ok {
		if end, ok2 := m.EndLine(); ok2 {
			doc.LineRange = fmt.Sprintf("%d-%d", start, end)
		}
	}
	return doc
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

var excludedFromFlatten = map[string]bool{
	MetaSource:   true,
	MetaFilename: true,
}

// flattenMetadata joins non-identity metadata as "key=value" pairs, matching
// the Orchestrator's citation payload.
func flattenMetadata(m Metadata) string {
	if len(m) == 0 {
		return ""
	}
	var parts []string
	for k, v := range m {
		if excludedFromFlatten[k] || v == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	return joinSorted(parts)
}

func joinSorted(parts []string) string {
	// Deterministic ordering: simple insertion sort, list is short.
	for i := 1; i < len(parts); i++ {
		for j := i; j > 0 && parts[j-1] > parts[j]; j-- {
			parts[j-1], parts[j] = parts[j], parts[j-1]
		}
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
