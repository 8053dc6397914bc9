package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sevenseconds/vibescout/internal/config"
	"github.com/sevenseconds/vibescout/internal/depgraph"
	"github.com/sevenseconds/vibescout/internal/events"
	"github.com/sevenseconds/vibescout/internal/extract"
	"github.com/sevenseconds/vibescout/internal/git"
	"github.com/sevenseconds/vibescout/internal/hashstore"
	"github.com/sevenseconds/vibescout/internal/pipeline"
	"github.com/sevenseconds/vibescout/internal/provider"
	"github.com/sevenseconds/vibescout/internal/search"
	"github.com/sevenseconds/vibescout/internal/store"
	"github.com/sevenseconds/vibescout/internal/taskqueue"
	"github.com/sevenseconds/vibescout/internal/throttle"
	"github.com/sevenseconds/vibescout/internal/types"
	"github.com/sevenseconds/vibescout/internal/watcher"
)

// app bundles every shared service a command needs, built once per process
// invocation. Grounded on index.go's inline wiring of storage/discovery/
// processor/indexer, generalized from one indexing-only assembly to the
// full set of components every CLI command draws from.
type app struct {
	cfg        *config.Config
	hashDB     *sql.DB
	store      store.Store
	hashes     hashstore.Store
	embedder   provider.EmbeddingProvider
	summarizer provider.SummarizerProvider
	reranker   provider.RerankerProvider
	throttles  *throttle.Registry
	gitc       git.Collector
	depgraph   depgraph.Graph
	bus        *events.Bus
	pipeline   *pipeline.Pipeline
	search     *search.Search
	queue      *taskqueue.Queue
	watcherMgr *watcher.Manager
}

// newApp wires every component for a single command invocation. ctx governs
// the lifetime of the task queue's worker pool; commands that don't need a
// piece (e.g. status doesn't need a reranker running) still pay its
// construction cost, matching the teacher's one-shot-process CLI model
// rather than a long-lived daemon with lazy subsystems.
func newApp(ctx context.Context) (*app, error) {
	loader := config.NewLoader()
	if cfgFile != "" {
		loader = config.NewLoaderForPath(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("cli: load config: %w", err)
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return nil, fmt.Errorf("cli: resolve data directory: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("cli: create data directory %s: %w", dataDir, err)
	}

	store.InitVectorExtension()

	var st store.Store
	var hashDB *sql.DB
	var hashes hashstore.Store

	switch cfg.Provider.DBProvider {
	case "", "sqlite":
		// The vector store and hash store deliberately share one *sql.DB:
		// store.New's factory opens its own connection it never exposes, so
		// the sqlite path is built by hand here instead of via store.New,
		// letting hashstore.New reuse the same connection (both tables'
		// schema creation is idempotent).
		dbPath := filepath.Join(dataDir, "vibescout.db")
		db, err := sql.Open("sqlite3", dbPath)
		if err != nil {
			return nil, fmt.Errorf("cli: open sqlite db %s: %w", dbPath, err)
		}
		st, err = store.NewSQLite(db, provider.DefaultEmbeddingDimensions)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("cli: init sqlite store: %w", err)
		}
		hashes, err = hashstore.New(db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("cli: init hash store: %w", err)
		}
	case "chromem":
		st, err = store.NewChromem(provider.DefaultEmbeddingDimensions)
		if err != nil {
			return nil, fmt.Errorf("cli: init chromem store: %w", err)
		}
		// chromem is in-memory and has no *sql.DB of its own; the hash
		// store still needs durable fingerprints across process restarts,
		// so it gets a dedicated sqlite file.
		hashPath := filepath.Join(dataDir, "hashes.db")
		hashDB, err = sql.Open("sqlite3", hashPath)
		if err != nil {
			return nil, fmt.Errorf("cli: open hash store db %s: %w", hashPath, err)
		}
		hashes, err = hashstore.New(hashDB)
		if err != nil {
			hashDB.Close()
			return nil, fmt.Errorf("cli: init hash store: %w", err)
		}
	default:
		return nil, fmt.Errorf("cli: unknown dbProvider %q", cfg.Provider.DBProvider)
	}

	embedder, err := provider.NewEmbeddingProvider(cfg.Provider.Provider, cfg.Provider.ModelsPath)
	if err != nil {
		return nil, fmt.Errorf("cli: init embedding provider: %w", err)
	}
	summarizer, err := provider.NewSummarizerProvider(cfg.Provider.LLMProvider, cfg.Provider.ModelsPath)
	if err != nil {
		return nil, fmt.Errorf("cli: init summarizer provider: %w", err)
	}
	var reranker provider.RerankerProvider
	if cfg.Indexing.UseReranker {
		reranker, err = provider.NewRerankerProvider(cfg.Provider.Provider, cfg.Provider.ModelsPath)
		if err != nil {
			return nil, fmt.Errorf("cli: init reranker provider: %w", err)
		}
	}

	throttles := throttle.NewRegistry()

	gitc, err := git.New()
	if err != nil {
		return nil, fmt.Errorf("cli: init git collector: %w", err)
	}

	dg := depgraph.New()

	bus := events.New()

	registry := extract.NewRegistry()
	markdownPolicy := extract.MarkdownChunkHeadings
	extract.RegisterDefaults(registry, markdownPolicy)

	pl := pipeline.New(
		pipeline.Config{},
		cfg,
		st,
		hashes,
		registry,
		embedder,
		summarizer,
		throttles,
		gitc,
		dg,
		bus,
	)

	sr := search.New(cfg, st, embedder, summarizer, reranker, throttles)

	handlers := map[types.TaskType]taskqueue.Handler{
		types.TaskIndexFolder: pl.TaskIndexFolderHandler,
		types.TaskIndexFiles:  pl.TaskIndexFilesHandler,
		types.TaskRetryFailed: pl.TaskRetryFailedHandler,
	}
	queue := taskqueue.New(ctx, taskqueue.Config{}, handlers)
	queue.SetListener(bus.TaskListener())

	watcherMgr := watcher.NewManager(queue, pl.WatcherDeleteHook)

	return &app{
		cfg:        cfg,
		hashDB:     hashDB,
		store:      st,
		hashes:     hashes,
		embedder:   embedder,
		summarizer: summarizer,
		reranker:   reranker,
		throttles:  throttles,
		gitc:       gitc,
		depgraph:   dg,
		bus:        bus,
		pipeline:   pl,
		search:     sr,
		queue:      queue,
		watcherMgr: watcherMgr,
	}, nil
}

// Close releases every resource newApp opened, in reverse order. The sqlite
// backend's *sql.DB is closed by a.store.Close() itself (store and hash
// store share that connection); hashDB is only set, and only needs closing
// here, for the chromem backend's standalone hash store file.
func (a *app) Close() {
	if a.watcherMgr != nil {
		a.watcherMgr.Close()
	}
	if a.queue != nil {
		a.queue.Close()
	}
	if a.gitc != nil {
		a.gitc.Close()
	}
	if a.reranker != nil {
		a.reranker.Close()
	}
	if a.summarizer != nil {
		a.summarizer.Close()
	}
	if a.embedder != nil {
		a.embedder.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.hashDB != nil {
		a.hashDB.Close()
	}
}
