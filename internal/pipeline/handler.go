package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sevenseconds/vibescout/internal/types"
)

// ReindexFile reprocesses a single already-known file outside of a full
// IndexFolder run — the watcher's create/modify path, and TaskIndexFiles'
// handler body. It does not touch progressState.Active, so it can run
// concurrently with (or between) full folder runs.
func (p *Pipeline) ReindexFile(ctx context.Context, filePath, projectName, collection string, summarize bool) error {
	var gitInfo map[string]types.GitInfo
	if p.gitc != nil && p.appCfg.Git.Enabled {
		repoRoot := filepath.Dir(filePath)
		if p.gitc.IsGitRepo(repoRoot) {
			if info, err := p.gitc.Collect(ctx, repoRoot, []string{filePath}, p.appCfg.Git.ChurnWindow); err == nil {
				gitInfo = info
			} else {
				p.progress.reporter.Logf("pipeline: git collect for %s: %v", repoRoot, err)
			}
		}
	}

	job := fileJob{
		filePath:    filePath,
		projectName: projectName,
		collection:  collection,
		summarize:   summarize,
		gitInfo:     gitInfo,
	}

	return runWithRetry(ctx, p.isShuttingDown.Load, func() error {
		_, err := p.processFile(ctx, job)
		return err
	})
}

// TaskIndexFilesHandler adapts ReindexFile into a taskqueue.Handler for
// types.TaskIndexFiles tasks, whose Data carries "filePaths" ([]string),
// "projectName", "collection" (strings), and "summarize" (bool).
func (p *Pipeline) TaskIndexFilesHandler(ctx context.Context, task types.Task) error {
	filePaths, _ := task.Data["filePaths"].([]string)
	projectName, _ := task.Data["projectName"].(string)
	collection, _ := task.Data["collection"].(string)
	summarize, _ := task.Data["summarize"].(bool)

	for _, fp := range filePaths {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.ReindexFile(ctx, fp, projectName, collection, summarize); err != nil {
			return fmt.Errorf("pipeline: reindex %s: %w", fp, err)
		}
	}
	return nil
}

// TaskIndexFolderHandler adapts IndexFolder into a taskqueue.Handler for
// types.TaskIndexFolder tasks, whose Data mirrors Options' fields:
// "folderPath", "projectName", "collection" (strings), "summarize", "force"
// (bools). Background indexing submitted via index_folder(background=true)
// is queued as one of these rather than run inline.
func (p *Pipeline) TaskIndexFolderHandler(ctx context.Context, task types.Task) error {
	folderPath, _ := task.Data["folderPath"].(string)
	projectName, _ := task.Data["projectName"].(string)
	collection, _ := task.Data["collection"].(string)
	summarize, _ := task.Data["summarize"].(bool)
	force, _ := task.Data["force"].(bool)

	_, err := p.IndexFolder(ctx, Options{
		FolderPath:  folderPath,
		ProjectName: projectName,
		Collection:  collection,
		Summarize:   summarize,
		Force:       force,
	})
	return err
}

// TaskRetryFailedHandler adapts ReindexFile into a taskqueue.Handler for
// types.TaskRetryFailed tasks: it replays every path in the current
// progress snapshot's FailedPaths (the caller typically enqueues this
// right after a run completes with failures), under the same
// projectName/collection/summarize Data fields TaskIndexFilesHandler uses.
func (p *Pipeline) TaskRetryFailedHandler(ctx context.Context, task types.Task) error {
	projectName, _ := task.Data["projectName"].(string)
	collection, _ := task.Data["collection"].(string)
	summarize, _ := task.Data["summarize"].(bool)

	for _, fp := range p.Status().FailedPaths {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.ReindexFile(ctx, fp, projectName, collection, summarize); err != nil {
			return fmt.Errorf("pipeline: retry failed %s: %w", fp, err)
		}
	}
	return nil
}
