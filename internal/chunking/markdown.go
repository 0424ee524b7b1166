package chunking

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
)

var headerPattern = regexp.MustCompile(`^#{1,6}\s+.+$`)

// MarkdownSplitter sections a document on ATX headers and greedily packs
// sections into fragments under a token budget, never splitting the
// interior of a section.
type MarkdownSplitter struct{}

// NewMarkdownSplitter constructs a MarkdownSplitter.
func NewMarkdownSplitter() *MarkdownSplitter { return &MarkdownSplitter{} }

func (s *MarkdownSplitter) Split(doc LoadedDocument, maxTokens int) ([]*domain.Fragment, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	sections := extractMarkdownSections(doc.Content)
	bodies := groupMarkdownSections(sections, maxTokens)

	fragments := make([]*domain.Fragment, 0, len(bodies))
	for i, body := range bodies {
		fragments = append(fragments, &domain.Fragment{
			Content:  body,
			Metadata: newFragmentMetadata(doc, domain.ChunkTypeMarkdown, i, len(bodies)),
		})
	}
	return fragments, nil
}

// extractMarkdownSections splits content at each ATX header line; a header
// line starts a new section and is retained as its first line, and any
// content preceding the first header forms its own leading section.
func extractMarkdownSections(content string) []string {
	lines := strings.Split(content, "\n")
	var sections []string
	var current strings.Builder

	for _, line := range lines {
		if headerPattern.MatchString(line) {
			if current.Len() > 0 {
				sections = append(sections, current.String())
				current.Reset()
			}
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}

// groupMarkdownSections greedily packs sections into chunks under
// maxChunkSize tokens, never splitting a section across chunks.
func groupMarkdownSections(sections []string, maxChunkSize int) []string {
	var chunks []string
	var current strings.Builder
	currentSize := 0

	for _, section := range sections {
		sectionSize := estimateTokens(section)
		if currentSize+sectionSize > maxChunkSize && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentSize = 0
		}
		current.WriteString(section)
		currentSize += sectionSize
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	if len(chunks) == 0 {
		return []string{""}
	}
	return chunks
}
