package pipeline

import (
	"context"
	"fmt"

	"github.com/sevenseconds/vibescout/internal/types"
)

// DeleteFileData removes filePath's vectors, dependency graph edges, and
// fingerprint. It is the shared deletion path for pruning, the watcher's
// unlink callback (via a watcher.DeleteFileDataFunc adapter), and
// force-reindex's upfront project wipe.
func (p *Pipeline) DeleteFileData(ctx context.Context, filePath string) error {
	if err := p.store.DeleteByFile(ctx, filePath); err != nil {
		return fmt.Errorf("pipeline: delete file data for %s: %w", filePath, err)
	}
	if p.depgraph != nil {
		p.depgraph.Remove(filePath)
	}
	if err := p.hashes.Delete(filePath); err != nil {
		return fmt.Errorf("pipeline: delete fingerprint for %s: %w", filePath, err)
	}
	return nil
}

// WatcherDeleteHook adapts DeleteFileData to watcher.DeleteFileDataFunc's
// signature (no context, no error return) — wired into watcher.NewManager
// at process start so unlink events prune the same way pruning does.
func (p *Pipeline) WatcherDeleteHook(entry types.WatchListEntry, filePath string) {
	if err := p.DeleteFileData(context.Background(), filePath); err != nil {
		p.progress.reporter.Logf("pipeline: watcher delete hook: %v", err)
	}
}

// deleteProject removes every record the store holds for projectName (via
// store.DeleteByProject), per spec.md §4.7 precondition 3's force-reindex
// wipe. It does not touch fingerprints; wipeProject clears those.
func (p *Pipeline) deleteProject(ctx context.Context, projectName string) error {
	if err := p.store.DeleteByProject(ctx, projectName); err != nil {
		return fmt.Errorf("pipeline: delete project %s: %w", projectName, err)
	}
	return nil
}
