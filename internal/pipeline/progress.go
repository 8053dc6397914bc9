package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/sevenseconds/vibescout/internal/types"
)

// maxCompletedFiles is spec.md §4.7's "bounded to 20, newest-first" cap on
// IndexingProgress.CompletedFiles.
const maxCompletedFiles = 20

// Reporter receives progress snapshots and log lines as an indexing run
// proceeds. Delivery must be best-effort and non-blocking from the
// reporter's side, per spec.md §4.11 — progressState calls it synchronously
// while holding its lock.
type Reporter interface {
	Progress(types.IndexingProgress)
	Logf(format string, args ...any)
}

// noopReporter is used when a Pipeline is built without an explicit
// Reporter, grounded on the teacher's NoOpProgressReporter in
// internal/indexer/progress.go.
type noopReporter struct{}

func (noopReporter) Progress(types.IndexingProgress) {}
func (noopReporter) Logf(string, ...any)             {}

// progressState is the single owning structure for the process-wide
// IndexingProgress snapshot (spec.md §9's "one owning coordinator structure
// with a published read-only view"). All field mutations happen under mu,
// satisfying the single-writer-per-field requirement in spec.md §5.
type progressState struct {
	mu       sync.Mutex
	snapshot types.IndexingProgress
	reporter Reporter
}

func newProgressState(r Reporter) *progressState {
	if r == nil {
		r = noopReporter{}
	}
	return &progressState{reporter: r, snapshot: types.IndexingProgress{Status: types.StatusIdle}}
}

// tryStart claims the single process-wide indexing slot. It fails if a run
// is already active, per spec.md §4.7 precondition 2.
func (p *progressState) tryStart(projectName string, totalFiles int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snapshot.Active {
		return false
	}
	p.snapshot = types.IndexingProgress{
		Active:      true,
		ProjectName: projectName,
		TotalFiles:  totalFiles,
		Status:      types.StatusIndexing,
	}
	p.publish()
	return true
}

func (p *progressState) publish() {
	p.reporter.Progress(p.snapshot)
}

// snapshotView returns a copy of the current progress, safe for concurrent
// reads from get_indexing_status.
func (p *progressState) snapshotView() types.IndexingProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// fileStarted records filePath as in-flight.
func (p *progressState) fileStarted(filePath string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.CurrentFiles = append(p.snapshot.CurrentFiles, filePath)
	p.publish()
}

// fileDone moves filePath from CurrentFiles to the bounded, newest-first
// CompletedFiles history, and updates the processed/skipped/failed counters.
func (p *progressState) fileDone(filePath string, skipped, failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, f := range p.snapshot.CurrentFiles {
		if f == filePath {
			p.snapshot.CurrentFiles = append(p.snapshot.CurrentFiles[:i], p.snapshot.CurrentFiles[i+1:]...)
			break
		}
	}

	p.snapshot.ProcessedFiles++
	switch {
	case failed:
		p.snapshot.FailedFiles++
		p.snapshot.FailedPaths = append(p.snapshot.FailedPaths, filePath)
	case skipped:
		p.snapshot.SkippedFiles++
	}

	completed := types.CompletedFile{FilePath: filePath, Skipped: skipped, Failed: failed, FinishedAt: time.Now()}
	p.snapshot.CompletedFiles = append([]types.CompletedFile{completed}, p.snapshot.CompletedFiles...)
	if len(p.snapshot.CompletedFiles) > maxCompletedFiles {
		p.snapshot.CompletedFiles = p.snapshot.CompletedFiles[:maxCompletedFiles]
	}
	p.publish()
}

// errorf records a fatal run-level error and sets status to "error:<msg>".
func (p *progressState) errorf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.ErrorMessage = fmt.Sprintf(format, args...)
	p.snapshot.Status = types.IndexStatus("error:" + p.snapshot.ErrorMessage)
	p.reporter.Logf(format, args...)
	p.publish()
}

// setStatus overwrites the status field alone, used for pause/stop
// transitions that don't otherwise touch the snapshot.
func (p *progressState) setStatus(s types.IndexStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.Status = s
	p.publish()
}

// finish marks the run complete (successfully or with failures) and
// releases the single process-wide indexing slot.
func (p *progressState) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snapshot.FailedFiles > 0 {
		p.snapshot.Status = types.StatusCompletedWithErrors
	} else {
		p.snapshot.Status = types.StatusCompleted
	}
	p.snapshot.Active = false
	p.publish()
}
