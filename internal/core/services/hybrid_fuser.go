package services

import (
	"context"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driving"
)

// Ensure hybridFuser implements driving.HybridFuser.
var _ driving.HybridFuser = (*hybridFuser)(nil)

// hybridFuser over-retrieves from both backends, filters each list
// independently, normalizes and linearly combines the two score spaces, and
// returns a stably-sorted, capped fusion. It is the algorithmic heart of
// retrieval: everything here is CPU-bound and non-suspending except the two
// backend calls, which run concurrently.
type hybridFuser struct {
	semantic driven.SemanticSearcher
	lexical  driven.LexicalSearcher
	embedder driven.EmbeddingService
	settings domain.Settings
}

// NewHybridFuser constructs a HybridFuser over the given backends and a
// read-only configuration snapshot.
func NewHybridFuser(semantic driven.SemanticSearcher, lexical driven.LexicalSearcher, embedder driven.EmbeddingService, settings domain.Settings) driving.HybridFuser {
	return &hybridFuser{semantic: semantic, lexical: lexical, embedder: embedder, settings: settings}
}

type scored struct {
	fragment      *domain.Fragment
	combined      float64
	semanticScore float64
	keywordScore  float64
}

func (f *hybridFuser) Search(ctx context.Context, query domain.Query) ([]*domain.Fragment, error) {
	if query.TopK <= 0 {
		return nil, nil
	}

	multiplier := f.settings.HybridRetrievalMultiplier
	if multiplier < 1 {
		multiplier = 1
	}
	retrievalSize := query.TopK * multiplier

	var semanticResults, lexicalResults []domain.RankedFragment
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		semanticResults = f.runSemantic(ctx, query, retrievalSize)
	}()
	go func() {
		defer wg.Done()
		lexicalResults, _ = f.lexical.Search(ctx, query.Text, retrievalSize)
	}()
	wg.Wait()

	semanticResults = filterRanked(semanticResults, query.Filter)
	lexicalResults = filterRanked(lexicalResults, query.Filter)

	combined := fuse(semanticResults, lexicalResults, f.settings.HybridAlpha)

	sort.SliceStable(combined, func(i, j int) bool {
		if combined[i].combined != combined[j].combined {
			return combined[i].combined > combined[j].combined
		}
		if combined[i].keywordScore != combined[j].keywordScore {
			return combined[i].keywordScore > combined[j].keywordScore
		}
		return combined[i].fragment.Metadata.Source() < combined[j].fragment.Metadata.Source()
	})

	if len(combined) > query.TopK {
		combined = combined[:query.TopK]
	}

	out := make([]*domain.Fragment, 0, len(combined))
	for _, s := range combined {
		frag := *s.fragment
		frag.Metadata = s.fragment.Metadata.Clone()
		frag.Metadata.SetFloat(domain.MetaHybridScore, s.combined)
		frag.Metadata.SetFloat(domain.MetaSemanticScore, s.semanticScore)
		frag.Metadata.SetFloat(domain.MetaKeywordScore, s.keywordScore)
		out = append(out, &frag)
	}
	return out, nil
}

// runSemantic embeds the query text before delegating to the semantic
// backend; an embedding failure is treated the same as a backend failure —
// an empty result — so it never fails the overall request.
func (f *hybridFuser) runSemantic(ctx context.Context, query domain.Query, retrievalSize int) []domain.RankedFragment {
	embedding, err := f.embedder.EmbedQuery(ctx, query.Text)
	if err != nil {
		return nil
	}
	results, err := f.semantic.Search(ctx, embedding, retrievalSize, query.SimilarityThreshold)
	if err != nil {
		return nil
	}
	return results
}

func filterRanked(results []domain.RankedFragment, filter *domain.Filter) []domain.RankedFragment {
	if filter == nil {
		return results
	}
	out := make([]domain.RankedFragment, 0, len(results))
	for _, r := range results {
		if filter.Matches(r.Fragment.Metadata) {
			out = append(out, r)
		}
	}
	return out
}

// fragmentIdentity is source + "_" + hash(content), the fusion key that lets
// the same underlying fragment collapse across both backends.
func fragmentIdentity(f *domain.Fragment) string {
	h := fnv.New64a()
	h.Write([]byte(f.Content))
	return f.Metadata.Source() + "_" + strconv.FormatUint(h.Sum64(), 16)
}

// fuse normalizes each side independently and combines by convex
// combination, keyed by fragment identity so a document present in both
// backends accumulates both weighted terms.
func fuse(semantic, lexical []domain.RankedFragment, alpha float64) []*scored {
	byID := make(map[string]*scored)

	l := len(semantic)
	if l < 1 {
		l = 1
	}
	for rank, r := range semantic {
		normSem := 1 - float64(rank)/float64(l)
		id := fragmentIdentity(r.Fragment)
		byID[id] = &scored{
			fragment:      r.Fragment,
			combined:      alpha * normSem,
			semanticScore: normSem,
		}
	}

	maxScore := 1.0
	if len(lexical) > 0 {
		maxScore = lexical[0].Score
		for _, r := range lexical {
			if r.Score > maxScore {
				maxScore = r.Score
			}
		}
		if maxScore == 0 {
			maxScore = 1
		}
	}
	for _, r := range lexical {
		normKw := r.Score / maxScore
		id := fragmentIdentity(r.Fragment)
		if existing, ok := byID[id]; ok {
			existing.combined += (1 - alpha) * normKw
			existing.keywordScore = normKw
		} else {
			byID[id] = &scored{
				fragment:     r.Fragment,
				combined:     (1 - alpha) * normKw,
				keywordScore: normKw,
			}
		}
	}

	out := make([]*scored, 0, len(byID))
	for _, s := range byID {
		out = append(out, s)
	}
	return out
}
