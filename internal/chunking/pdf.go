package chunking

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
)

// PDFSplitter loads a PDF file and emits one fragment per page. Unlike the
// other splitters it reads from doc.Source directly rather than doc.Content,
// since page boundaries only exist in the original binary.
type PDFSplitter struct{}

// NewPDFSplitter constructs a PDFSplitter.
func NewPDFSplitter() *PDFSplitter { return &PDFSplitter{} }

// Split ignores maxTokens: pagination is dictated by the PDF's own page
// breaks, not a token budget, matching pagesPerDocument=1 in the source
// corpus's reader configuration.
func (s *PDFSplitter) Split(doc LoadedDocument, maxTokens int) ([]*domain.Fragment, error) {
	f, err := os.Open(doc.Source)
	if err != nil {
		return nil, fmt.Errorf("chunking: open pdf %s: %w", doc.Source, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("chunking: stat pdf %s: %w", doc.Source, err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("chunking: read pdf %s: %w", doc.Source, err)
	}

	numPages := reader.NumPage()
	fragments := make([]*domain.Fragment, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("chunking: extract text from page %d of %s: %w", i, doc.Source, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		m := newFragmentMetadata(doc, domain.ChunkTypePDFPage, len(fragments), numPages)
		m.SetInt(domain.MetaStartLine, i)
		m.SetInt(domain.MetaEndLine, i)
		fragments = append(fragments, &domain.Fragment{Content: text, Metadata: m})
	}

	// total_chunks reflects the pages that actually produced text, not the
	// PDF's raw page count.
	for i, f := range fragments {
		f.Metadata.SetInt(domain.MetaChunkIndex, i)
		f.Metadata.SetInt(domain.MetaTotalChunks, len(fragments))
	}

	return fragments, nil
}
