// Package search implements the search front-end spec.md §4.10 names:
// embedding-model mismatch detection (a mismatch is an error; the embedder
// is not switched), throttled query embedding, hybrid vector+FTS search,
// local cross-encoder reranking, and minimum-confidence filtering, plus the
// chat front-end spec.md §4.10 layers on top of the same pipeline.
//
// Grounded on internal/mcp/searcher_coordinator.go's mutex-protected
// coordination shape and internal/graph/searcher_types.go's query/response
// type pairing, generalized from the teacher's chromem+bleve dual-backend
// coordination to a single store.Store call plus a rerank pass the teacher
// itself does not have.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/sevenseconds/vibescout/internal/config"
	"github.com/sevenseconds/vibescout/internal/provider"
	"github.com/sevenseconds/vibescout/internal/store"
	"github.com/sevenseconds/vibescout/internal/throttle"
	"github.com/sevenseconds/vibescout/internal/types"
)

// DefaultHybridLimit is spec.md §4.10 step 3's hybridSearch limit.
const DefaultHybridLimit = 15

// DefaultRerankTopN is spec.md §4.10 step 4's "keep top 10" bound.
const DefaultRerankTopN = 10

// Options narrows a Query call, per spec.md §4.10's search() signature.
type Options struct {
	Collection  string
	ProjectName string
	FileTypes   []string
	Categories  []types.BlockCategory
	MinScore    float64 // 0 disables minimum-confidence filtering
}

// RankedResult is one search hit after hybrid retrieval and rerank.
type RankedResult struct {
	Record      types.VectorRecord
	Distance    float64 // cosine distance from the vector search leg
	FromFTS     bool
	RerankScore float64
}

// Search is the query/chat front-end coordinator: one embedding-model check
// and one rerank pass per call, behind a single entry point.
type Search struct {
	appCfg     *config.Config
	store      store.Store
	embedder   provider.EmbeddingProvider
	summarizer provider.SummarizerProvider
	reranker   provider.RerankerProvider
	throttles  *throttle.Registry
}

// New builds a Search coordinator. summarizer and reranker may be nil to
// disable chat and rerank respectively (Query then returns hybrid order).
func New(
	appCfg *config.Config,
	st store.Store,
	embedder provider.EmbeddingProvider,
	summarizer provider.SummarizerProvider,
	reranker provider.RerankerProvider,
	throttles *throttle.Registry,
) *Search {
	if throttles == nil {
		throttles = throttle.NewRegistry()
	}
	return &Search{
		appCfg:     appCfg,
		store:      st,
		embedder:   embedder,
		summarizer: summarizer,
		reranker:   reranker,
		throttles:  throttles,
	}
}

// Query runs spec.md §4.10's five-step search pipeline.
func (s *Search) Query(ctx context.Context, query string, opts Options) ([]RankedResult, error) {
	if err := s.ensureModelMatch(ctx); err != nil {
		return nil, err
	}

	queryVector, err := s.throttledEmbed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: embed query: %w", err)
	}

	hybridOpts := store.SearchOptions{
		Collection:  opts.Collection,
		ProjectName: opts.ProjectName,
		Categories:  opts.Categories,
		FileTypes:   opts.FileTypes,
		Limit:       DefaultHybridLimit,
	}
	hits, err := s.store.HybridSearch(ctx, query, queryVector, hybridOpts)
	if err != nil {
		return nil, fmt.Errorf("search: hybrid search: %w", err)
	}

	results := make([]RankedResult, len(hits))
	for i, h := range hits {
		results[i] = RankedResult{Record: h.Record, Distance: h.Distance, FromFTS: h.FromFTS}
	}

	results, err = s.rerank(ctx, query, results)
	if err != nil {
		return nil, fmt.Errorf("search: rerank: %w", err)
	}

	if opts.MinScore > 0 {
		results = filterMinScore(results, opts.MinScore)
	}

	return results, nil
}

// ensureModelMatch compares the store's recorded model with the active
// embedder's name, so cosine distances stay comparable, and returns an
// error when they differ. It does not switch the embedding model: which
// model is loaded is chosen by config.ProviderConfig through the provider
// factory, and the embedder is constructed once at process start.
func (s *Search) ensureModelMatch(ctx context.Context) error {
	stored, err := s.store.CurrentModel(ctx)
	if err != nil {
		return fmt.Errorf("search: read current model: %w", err)
	}
	if stored == "" || stored == s.embedder.Name() {
		return nil
	}
	return fmt.Errorf("search: embedding model mismatch: store has %q, active provider is %q — reindex or switch the active model", stored, s.embedder.Name())
}

func (s *Search) throttledEmbed(ctx context.Context, query string) ([]float32, error) {
	t := s.throttles.Get("provider:embed:" + s.embedder.Name())
	result, err := t.Run(ctx, func(ctx context.Context) (any, error) {
		return s.embedder.Embed(ctx, query, provider.EmbedModeQuery)
	})
	if err != nil {
		return nil, err
	}
	return result.([]float32), nil
}

// rerank implements spec.md §4.10 step 4: score every candidate against
// query with the local cross-encoder, sort descending, keep the top N. If
// no reranker is configured, results keep hybridSearch's order untouched.
func (s *Search) rerank(ctx context.Context, query string, results []RankedResult) ([]RankedResult, error) {
	if s.reranker == nil || len(results) == 0 {
		return results, nil
	}

	candidates := make([]string, len(results))
	for i, r := range results {
		candidates[i] = r.Record.Content
	}

	t := s.throttles.Get("provider:rerank:" + s.reranker.Name())
	scored, err := t.Run(ctx, func(ctx context.Context) (any, error) {
		return s.reranker.Rerank(ctx, query, candidates)
	})
	if err != nil {
		return nil, err
	}
	scores := scored.([]float64)

	for i := range results {
		results[i].RerankScore = scores[i]
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RerankScore > results[j].RerankScore
	})

	if len(results) > DefaultRerankTopN {
		results = results[:DefaultRerankTopN]
	}
	return results, nil
}

// filterMinScore implements spec.md §4.10 step 5's minimum-confidence
// subset: Query applies it only when opts.MinScore > 0, with the threshold
// the caller passes (Query does not read config.search.minScore itself);
// RerankScore is the confidence signal once reranked, since
// cosine distance alone does not account for the keyword/FTS leg.
func filterMinScore(results []RankedResult, minScore float64) []RankedResult {
	out := results[:0]
	for _, r := range results {
		if r.RerankScore >= minScore {
			out = append(out, r)
		}
	}
	return out
}
