// Package pipeline implements the indexing pipeline spec.md §4.7 names:
// enumerate → hash-diff → extract → summarize → embed → git-enrich →
// upsert, run over a bounded worker pool with cooperative pause/stop and
// per-file retry. Grounded on internal/indexer/indexer_v2.go's Index()
// orchestration (detect → delete → process → graph-update phases) and
// internal/indexer/processor.go's ProcessFiles worker shape, generalized
// from the teacher's sequential per-phase loops to the spec's bounded
// concurrent per-file worker pool — grounded on the errgroup.SetLimit
// fan-out other_examples/mycelium's indexer pipeline uses for the same
// parse-in-parallel shape.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sevenseconds/vibescout/internal/config"
	"github.com/sevenseconds/vibescout/internal/depgraph"
	"github.com/sevenseconds/vibescout/internal/extract"
	"github.com/sevenseconds/vibescout/internal/git"
	"github.com/sevenseconds/vibescout/internal/hashstore"
	"github.com/sevenseconds/vibescout/internal/provider"
	"github.com/sevenseconds/vibescout/internal/store"
	"github.com/sevenseconds/vibescout/internal/throttle"
	"github.com/sevenseconds/vibescout/internal/types"
)

// DefaultConcurrency is spec.md §5's CONCURRENCY_LIMIT.
const DefaultConcurrency = 16

// ErrAlreadyActive is returned when IndexFolder is called while another run
// is in progress, per spec.md §4.7 precondition 2.
var ErrAlreadyActive = errors.New("pipeline: an indexing run is already active")

// Config tunes a Pipeline's concurrency and enumeration bounds.
type Config struct {
	Concurrency  int
	MaxDepth     int
	ThrottleName string // throttle.Registry key prefix for embed/summarize calls
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = defaultMaxEnumerateDepth
	}
	if c.ThrottleName == "" {
		c.ThrottleName = "provider"
	}
	return c
}

// Pipeline is the indexing coordinator: exactly one run active at a time
// within a process, per spec.md §5's single in-process coordinator model.
type Pipeline struct {
	cfg        Config
	appCfg     *config.Config
	store      store.Store
	hashes     hashstore.Store
	extractor  *extract.Registry
	embedder   provider.EmbeddingProvider
	summarizer provider.SummarizerProvider
	throttles  *throttle.Registry
	gitc       git.Collector
	depgraph   depgraph.Graph

	progress *progressState

	isPaused       atomic.Bool
	isShuttingDown atomic.Bool
}

// New builds a Pipeline. appCfg, store, hashes, extractor, and embedder are
// required; summarizer, gitc, depgraph, and reporter may be nil to disable
// the corresponding optional step.
func New(
	cfg Config,
	appCfg *config.Config,
	st store.Store,
	hashes hashstore.Store,
	extractor *extract.Registry,
	embedder provider.EmbeddingProvider,
	summarizer provider.SummarizerProvider,
	throttles *throttle.Registry,
	gitc git.Collector,
	dg depgraph.Graph,
	reporter Reporter,
) *Pipeline {
	if throttles == nil {
		throttles = throttle.NewRegistry()
	}
	return &Pipeline{
		cfg:        cfg.withDefaults(),
		appCfg:     appCfg,
		store:      st,
		hashes:     hashes,
		extractor:  extractor,
		embedder:   embedder,
		summarizer: summarizer,
		throttles:  throttles,
		gitc:       gitc,
		depgraph:   dg,
		progress:   newProgressState(reporter),
	}
}

// Status returns the current (or most recent) run's progress snapshot, for
// get_indexing_status.
func (p *Pipeline) Status() types.IndexingProgress {
	return p.progress.snapshotView()
}

// Pause sets the process-global isPaused flag; workers sleep in 500ms
// intervals between units of work until Resume, per spec.md §4.7.
func (p *Pipeline) Pause() {
	p.isPaused.Store(true)
	p.progress.setStatus(types.StatusPaused)
}

// Resume clears the paused flag.
func (p *Pipeline) Resume() {
	p.isPaused.Store(false)
	p.progress.setStatus(types.StatusIndexing)
}

// Stop requests a graceful shutdown: workers finish their current file unit
// and then return, per spec.md §5's cancellation semantics. Unlike Pause,
// this is not reversible.
func (p *Pipeline) Stop() {
	p.isShuttingDown.Store(true)
	p.progress.setStatus(types.StatusStopping)
}

// pauseCheckInterval is spec.md §4.7's "sleep in 500ms intervals" while paused.
const pauseCheckInterval = 500 * time.Millisecond

func (p *Pipeline) waitWhilePaused(ctx context.Context) {
	for p.isPaused.Load() && !p.isShuttingDown.Load() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(pauseCheckInterval):
		}
	}
}

// resolveProjectName derives a project name from folderPath's basename when
// explicit is empty, per spec.md §4.7 step 1.
func resolveProjectName(explicit, absFolderPath string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Base(absFolderPath)
}

// throttledEmbedBatch routes an EmbedBatch call through this pipeline's
// embed throttler, per spec.md §5's "provider calls ... gated by
// per-provider AIMD throttlers."
func (p *Pipeline) throttledEmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	t := p.throttles.Get(p.cfg.ThrottleName + ":embed:" + p.embedder.Name())
	result, err := t.Run(ctx, func(ctx context.Context) (any, error) {
		return p.embedder.EmbedBatch(ctx, texts, provider.EmbedModePassage)
	})
	if err != nil {
		return nil, err
	}
	return result.([][]float32), nil
}

// throttledSummarize routes one Summarize call through this pipeline's
// summarize throttler.
func (p *Pipeline) throttledSummarize(ctx context.Context, text string, opts provider.SummarizeOptions) (string, error) {
	t := p.throttles.Get(p.cfg.ThrottleName + ":summarize:" + p.summarizer.Name())
	result, err := t.Run(ctx, func(ctx context.Context) (any, error) {
		return p.summarizer.Summarize(ctx, text, opts)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
