package services

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-core/internal/chunking"
	"github.com/custodia-labs/sercha-core/internal/core/domain"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-core/internal/normalisers"
	"github.com/custodia-labs/sercha-core/internal/postprocessors"
)

// extensionMIMEType maps a supported file extension to the MIME type the
// normaliser registry dispatches on. Extensions with no distinct normaliser
// fall through to the registry's plaintext fallback.
var extensionMIMEType = map[string]string{
	"md":         "text/markdown",
	"yaml":       "application/yaml",
	"yml":        "application/yaml",
	"gradle":     "text/plain",
	"properties": "text/plain",
	"txt":        "text/plain",
	"java":       "text/plain",
}

// Ensure ingestor implements driving.Ingestor.
var _ driving.Ingestor = (*ingestor)(nil)

// supportedExtensions is the fixed set of file suffixes the walker will
// hand to the Chunker; anything else is skipped silently.
var supportedExtensions = map[string]bool{
	"java":       true,
	"md":         true,
	"txt":        true,
	"pdf":        true,
	"yaml":       true,
	"yml":        true,
	"gradle":     true,
	"properties": true,
}

// ingestor walks a filesystem path, loads and chunks every supported file,
// and commits the resulting fragments to the store (C2).
type ingestor struct {
	registry    *chunking.Registry
	normalisers driven.NormaliserRegistry
	store       driven.FragmentStore
	settings    domain.Settings
	log         *slog.Logger
	concurrency int
}

// NewIngestor constructs an Ingestor. File processing fans out across a
// bounded pool of concurrency goroutines; concurrency <= 0 defaults to
// runtime.NumCPU(). Loaded content is normalised (line endings, YAML
// re-serialization, etc.) before it reaches the chunker.
func NewIngestor(registry *chunking.Registry, store driven.FragmentStore, settings domain.Settings, logger *slog.Logger) driving.Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ingestor{registry: registry, normalisers: normalisers.DefaultRegistry(), store: store, settings: settings, log: logger}
}

// WithConcurrency sets the bounded pool size used to process files. Returns
// the same Ingestor for chaining at construction time.
func WithConcurrency(in driving.Ingestor, concurrency int) driving.Ingestor {
	if i, ok := in.(*ingestor); ok {
		i.concurrency = concurrency
	}
	return in
}

func (in *ingestor) Ingest(ctx context.Context, rootPath string) (int, error) {
	if strings.TrimSpace(rootPath) == "" {
		return 0, domain.ErrIngestPathRequired
	}
	if _, err := os.Stat(rootPath); err != nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrIngestPathUnreadable, rootPath)
	}

	var paths []string
	walkErr := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !supportedExtensions[fileExtension(path)] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if walkErr != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrIngestPathUnreadable, rootPath, walkErr)
	}

	fragments := in.processFiles(paths)

	if len(fragments) == 0 {
		in.log.Warn("no documents found to ingest", "path", rootPath)
		return 0, nil
	}

	fragments = normalizeAndDedup(fragments)

	if err := in.store.Save(ctx, fragments); err != nil {
		return 0, fmt.Errorf("ingest: save fragments: %w", err)
	}

	return len(fragments), nil
}

// processFiles chunks every path in a bounded pool of goroutines that drain
// a shared path channel, joined with a sync.WaitGroup, mirroring the worker
// pool shape used to drive task processing.
func (in *ingestor) processFiles(paths []string) []*domain.Fragment {
	concurrency := in.concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if concurrency > len(paths) {
		concurrency = len(paths)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	pathCh := make(chan string)
	resultCh := make(chan []*domain.Fragment)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range pathCh {
				ext := fileExtension(path)
				fileFragments, err := in.processFile(path, ext)
				if err != nil {
					in.log.Warn("skipping file that failed to process", "path", path, "error", err)
					continue
				}
				resultCh <- fileFragments
			}
		}()
	}

	go func() {
		for _, path := range paths {
			pathCh <- path
		}
		close(pathCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var fragments []*domain.Fragment
	for fileFragments := range resultCh {
		fragments = append(fragments, fileFragments...)
	}
	return fragments
}

func (in *ingestor) processFile(path, ext string) ([]*domain.Fragment, error) {
	doc := chunking.LoadedDocument{
		Source:   path,
		Filename: filepath.Base(path),
		FileType: ext,
	}

	// The PDF splitter reads the binary directly from doc.Source; every
	// other splitter works off doc.Content, so only load the file's bytes
	// as text when they need to be text.
	if ext != "pdf" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		doc.Content = in.normalise(string(content), ext)
	}

	splitter := in.registry.Get(ext)
	maxTokens := in.maxTokensFor(ext)

	fragments, err := splitter.Split(doc, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", path, err)
	}
	return fragments, nil
}

// normalise runs raw file content through the registered normaliser for its
// MIME type, falling back to the content unchanged when no normaliser
// applies (or the registry is unset, e.g. in tests that construct an
// ingestor directly).
func (in *ingestor) normalise(content, ext string) string {
	if in.normalisers == nil {
		return content
	}
	mimeType, ok := extensionMIMEType[ext]
	if !ok {
		return content
	}
	n := in.normalisers.Get(mimeType)
	if n == nil {
		return content
	}
	return n.Normalise(content, mimeType)
}

func (in *ingestor) maxTokensFor(ext string) int {
	switch ext {
	case "java":
		return in.settings.ChunkJavaMaxTokens
	case "md":
		return in.settings.ChunkMarkdownMaxTokens
	default:
		return 0
	}
}

func fileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// fragmentIndexKey is a Chunk metadata key carrying the fragment's position
// in the batch, so surviving chunks can be mapped back to their Fragment
// after the whitespace/dedup stages run.
const fragmentIndexKey = "_fragment_index"

// normalizeAndDedup runs the batch through the same whitespace-normalization
// and duplicate-content stages the splitter pipeline applies after chunking,
// operating across the whole ingested tree rather than per-file.
func normalizeAndDedup(fragments []*domain.Fragment) []*domain.Fragment {
	chunks := make([]driven.Chunk, len(fragments))
	for i, f := range fragments {
		chunks[i] = driven.Chunk{
			Content:  f.Content,
			Position: i,
			Metadata: map[string]string{fragmentIndexKey: strconv.Itoa(i)},
		}
	}

	chunks = postprocessors.NewWhitespaceNormalizer().Process(chunks)
	chunks = postprocessors.NewDeduplicator(postprocessors.DefaultDeduplicatorConfig()).Process(chunks)

	result := make([]*domain.Fragment, 0, len(chunks))
	for _, c := range chunks {
		idx, err := strconv.Atoi(c.Metadata[fragmentIndexKey])
		if err != nil || idx < 0 || idx >= len(fragments) {
			continue
		}
		f := fragments[idx]
		f.Content = c.Content
		result = append(result, f)
	}
	return result
}
