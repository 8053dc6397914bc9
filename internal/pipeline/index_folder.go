package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sevenseconds/vibescout/internal/ignore"
	"github.com/sevenseconds/vibescout/internal/types"
)

// Options is indexFolder's argument set, per spec.md §4.7.
type Options struct {
	FolderPath  string
	ProjectName string
	Collection  string
	Summarize   bool
	Background  bool
	Force       bool
}

// Result is indexFolder's return value.
type Result struct {
	TotalIndexed int
	Skipped      int
	Pruned       int
}

// IndexFolder runs a full indexing pass over opts.FolderPath: enumerate,
// prune stale entries, then process every remaining file through a bounded
// worker pool, per spec.md §4.7. Only one run may be Active at a time
// process-wide; a second concurrent call returns ErrAlreadyActive.
func (p *Pipeline) IndexFolder(ctx context.Context, opts Options) (Result, error) {
	absPath, err := filepath.Abs(opts.FolderPath)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: resolve folder path %q: %w", opts.FolderPath, err)
	}
	projectName := resolveProjectName(opts.ProjectName, absPath)
	collection := opts.Collection
	if collection == "" {
		collection = "default"
	}

	if opts.Force {
		if err := p.wipeProject(ctx, projectName, absPath); err != nil {
			return Result{}, fmt.Errorf("pipeline: force wipe %s: %w", projectName, err)
		}
	}

	ig, err := ignore.Load(absPath)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: load ignore rules for %s: %w", absPath, err)
	}

	allowedExt := allowedExtensions(p.appCfg.Indexing)
	files, err := enumerateFiles(absPath, ig, allowedExt, p.cfg.MaxDepth)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: enumerate %s: %w", absPath, err)
	}

	if !p.progress.tryStart(projectName, len(files)) {
		return Result{}, ErrAlreadyActive
	}
	defer p.progress.finish()

	onDisk := make(map[string]struct{}, len(files))
	for _, f := range files {
		onDisk[f] = struct{}{}
	}
	pruned, err := p.pruneMissing(ctx, absPath, onDisk)
	if err != nil {
		p.progress.errorf("prune: %v", err)
		return Result{}, fmt.Errorf("pipeline: prune %s: %w", absPath, err)
	}

	var gitInfo map[string]types.GitInfo
	if p.gitc != nil && p.appCfg.Git.Enabled && p.gitc.IsGitRepo(absPath) {
		gitInfo, err = p.gitc.Collect(ctx, absPath, files, p.appCfg.Git.ChurnWindow)
		if err != nil {
			p.progress.reporter.Logf("pipeline: git collect for %s: %v", absPath, err)
			gitInfo = nil
		}
	}

	indexed, skipped := p.runWorkerPool(ctx, files, projectName, collection, opts.Summarize, gitInfo)

	return Result{TotalIndexed: indexed, Skipped: skipped, Pruned: pruned}, nil
}

// runWorkerPool fans processFile out across p.cfg.Concurrency goroutines,
// grounded on other_examples's mycelium indexer pipeline's
// errgroup.WithContext + SetLimit shape (the teacher itself processes files
// sequentially and has no precedent for bounded concurrency). Each unit
// respects pause/stop cooperatively and retries via runWithRetry.
func (p *Pipeline) runWorkerPool(ctx context.Context, files []string, projectName, collection string, summarize bool, gitInfo map[string]types.GitInfo) (indexed, skipped int) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	var counters indexCounters
	for _, f := range files {
		f := f
		g.Go(func() error {
			if p.isShuttingDown.Load() {
				return nil
			}
			p.waitWhilePaused(gctx)
			if p.isShuttingDown.Load() {
				return nil
			}

			p.progress.fileStarted(f)

			job := fileJob{
				filePath:    f,
				projectName: projectName,
				collection:  collection,
				summarize:   summarize,
				gitInfo:     gitInfo,
			}

			var fileSkipped bool
			err := runWithRetry(gctx, p.isShuttingDown.Load, func() error {
				s, fErr := p.processFile(gctx, job)
				fileSkipped = s
				return fErr
			})

			if err != nil {
				p.progress.fileDone(f, false, true)
				p.progress.reporter.Logf("pipeline: %s: %v", f, err)
				counters.addFailed()
				return nil // one file's exhausted retries does not abort the run
			}

			p.progress.fileDone(f, fileSkipped, false)
			if fileSkipped {
				counters.addSkipped()
			} else {
				counters.addIndexed()
			}
			return nil
		})
	}
	_ = g.Wait()

	return counters.loadIndexed(), counters.loadSkipped()
}

// indexCounters accumulates run totals across concurrent worker goroutines.
// progressState.snapshot is the source of truth for live reads; these
// atomics just mirror the same tallies for IndexFolder's return value.
type indexCounters struct {
	indexed atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

func (c *indexCounters) addIndexed() { c.indexed.Add(1) }
func (c *indexCounters) addSkipped() { c.skipped.Add(1) }
func (c *indexCounters) addFailed()  { c.failed.Add(1) }

func (c *indexCounters) loadIndexed() int { return int(c.indexed.Load()) }
func (c *indexCounters) loadSkipped() int { return int(c.skipped.Load()) }
