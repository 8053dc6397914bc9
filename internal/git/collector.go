// Package git enriches VectorRecords with per-file commit history: last
// author/email/date/hash/message and a recent-churn bucket, per spec.md
// §4.6. Grounded on internal/git/operations.go's exec.Command("git", ...)
// pattern, generalized from branch/remote queries to log parsing.
package git

import (
	"context"
	"os/exec"
	"strings"

	"github.com/maypok86/otter"

	"github.com/sevenseconds/vibescout/internal/types"
)

// bulkStrategyThreshold is spec.md §4.6's ">10 files" cutoff between the
// bulk log-scan strategy and the small-set per-file strategy.
const bulkStrategyThreshold = 10

// recentCommitWindow is the "last 2000 commits" bulk strategy bound.
const recentCommitWindow = 2000

// Collector attaches git enrichment to a set of files in a project.
type Collector interface {
	// Collect returns a GitInfo per file path (absolute, matching the paths
	// passed in) for every file git has history for. Files with no history
	// (untracked, or outside a git work-tree) are simply absent from the
	// result; this is not an error.
	Collect(ctx context.Context, repoPath string, filePaths []string, churnWindowMonths int) (map[string]types.GitInfo, error)

	// IsGitRepo reports whether repoPath is inside a git work-tree.
	IsGitRepo(repoPath string) bool

	Close()
}

type collector struct {
	// cache holds one bulk-scan result per repoPath, so repeated calls
	// during a single indexing run (one per project) don't re-run `git log`
	// over the same 2000-commit window, per spec.md §4.6's "results are
	// cached in-memory keyed by repoPath." Grounded on internal/graph/
	// searcher.go's otter.Cache[string, []string] file cache.
	cache otter.Cache[string, map[string]types.GitInfo]
}

// New builds a Collector with an in-memory otter cache keyed by repoPath.
func New() (Collector, error) {
	cache, err := otter.MustBuilder[string, map[string]types.GitInfo](1024).
		Cost(func(key string, value map[string]types.GitInfo) uint32 {
			return uint32(len(value))
		}).
		CollectStats().
		Build()
	if err != nil {
		return nil, err
	}
	return &collector{cache: cache}, nil
}

func (c *collector) IsGitRepo(repoPath string) bool {
	cmd := exec.CommandContext(context.Background(), "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = repoPath
	out, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

func (c *collector) Collect(ctx context.Context, repoPath string, filePaths []string, churnWindowMonths int) (map[string]types.GitInfo, error) {
	if !c.IsGitRepo(repoPath) {
		return map[string]types.GitInfo{}, nil
	}

	if len(filePaths) > bulkStrategyThreshold {
		bulk, ok := c.cache.Get(repoPath)
		if !ok {
			var err error
			bulk, err = bulkCollect(ctx, repoPath, churnWindowMonths)
			if err != nil {
				return nil, err
			}
			c.cache.Set(repoPath, bulk)
		}

		out := make(map[string]types.GitInfo, len(filePaths))
		var missing []string
		for _, f := range filePaths {
			if info, ok := bulk[f]; ok {
				out[f] = info
				continue
			}
			missing = append(missing, f)
		}
		// Files the 2000-commit window never touched (older history, or
		// renamed before that point) fall back to per-file --follow.
		for _, f := range missing {
			info, ok, err := perFileCollect(ctx, repoPath, f, churnWindowMonths)
			if err != nil {
				return nil, err
			}
			if ok {
				out[f] = info
			}
		}
		return out, nil
	}

	out := make(map[string]types.GitInfo, len(filePaths))
	for _, f := range filePaths {
		info, ok, err := perFileCollect(ctx, repoPath, f, churnWindowMonths)
		if err != nil {
			return nil, err
		}
		if ok {
			out[f] = info
		}
	}
	return out, nil
}

func (c *collector) Close() {
	c.cache.Close()
}
