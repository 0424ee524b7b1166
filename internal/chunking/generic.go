package chunking

import (
	"strings"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
)

// GenericSplitter is the fallback token-window splitter used for txt,
// gradle, properties and any other supported-but-unspecialized file type.
// Grounded on the fixed-size overlapping chunker in postprocessors.Chunker,
// reused here without overlap since Fragments (unlike search-index chunks
// in the source pipeline) are not meant to duplicate content across
// neighbors.
type GenericSplitter struct{}

// NewGenericSplitter constructs a GenericSplitter.
func NewGenericSplitter() *GenericSplitter {
	return &GenericSplitter{}
}

func (s *GenericSplitter) Split(doc LoadedDocument, maxTokens int) ([]*domain.Fragment, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}
	maxChars := maxTokens * 4
	if maxChars <= 0 {
		maxChars = 4000
	}

	var bodies []string
	content := doc.Content
	start := 0
	for start < len(content) {
		end := start + maxChars
		if end >= len(content) {
			bodies = append(bodies, content[start:])
			break
		}
		breakPoint := findBreakPoint(content, start, end)
		if breakPoint <= start {
			breakPoint = end
		}
		bodies = append(bodies, content[start:breakPoint])
		start = breakPoint
	}

	fragments := make([]*domain.Fragment, 0, len(bodies))
	for i, body := range bodies {
		if strings.TrimSpace(body) == "" {
			continue
		}
		fragments = append(fragments, &domain.Fragment{
			Content: body,
			Metadata: newFragmentMetadata(doc, domain.ChunkTypeGeneric, i, len(bodies)),
		})
	}
	return fragments, nil
}

// findBreakPoint looks backward from end for a paragraph, sentence, or word
// boundary within the trailing window of the chunk, matching the source's
// preference order.
func findBreakPoint(content string, start, maxEnd int) int {
	searchStart := maxEnd - 100
	if searchStart < start {
		searchStart = start
	}
	window := content[searchStart:maxEnd]

	if idx := strings.LastIndex(window, "\n\n"); idx != -1 {
		return searchStart + idx + 2
	}

	sentenceEnders := []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}
	best := -1
	for _, ender := range sentenceEnders {
		if idx := strings.LastIndex(window, ender); idx != -1 {
			end := idx + len(ender)
			if end > best {
				best = end
			}
		}
	}
	if best > 0 {
		return searchStart + best
	}

	if idx := strings.LastIndex(window, " "); idx != -1 {
		return searchStart + idx + 1
	}

	return maxEnd
}

func newFragmentMetadata(doc LoadedDocument, chunkType string, index, total int) domain.Metadata {
	m := domain.Metadata{
		domain.MetaSource:   doc.Source,
		domain.MetaFilename: doc.Filename,
		domain.MetaFileType: doc.FileType,
		domain.MetaChunkType: chunkType,
	}
	m.SetInt(domain.MetaChunkIndex, index)
	m.SetInt(domain.MetaTotalChunks, total)
	return m
}
