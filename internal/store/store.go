// Package store implements the vector store (spec.md §4.5): the
// code_search/metadata/dependencies/watch_list/chat_messages tables,
// model-consistency enforcement, and hybrid vector+FTS search, behind a
// single Store interface with a SQLite-backed and a chromem-go-backed
// implementation.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/sevenseconds/vibescout/internal/types"
)

// Sentinel errors, grounded on the package-level errors.New convention
// internal/storage and internal/git use throughout the teacher.
var (
	ErrModelMismatch  = errors.New("store: model mismatch")
	ErrUnknownField   = errors.New("store: unknown field")
	ErrActiveIndexing = errors.New("store: an indexing run is already active")
)

// SearchOptions narrows a vector or hybrid search with pre- and
// post-filters, per spec.md §4.5 item 2-3.
type SearchOptions struct {
	Collection    string
	ProjectName   string
	Categories    []types.BlockCategory
	Authors       []string
	ChurnLevels   []types.ChurnLevel
	LastCommitFrom string // ISO-8601, inclusive
	LastCommitTo   string // ISO-8601, inclusive
	FileTypes      []string // lowercased extension suffixes, post-filter
	Limit          int
}

// HybridResult is a single hybrid-search hit: the record plus which signal(s)
// surfaced it.
type HybridResult struct {
	Record   types.VectorRecord
	Distance float64 // cosine distance from vector search; 0 if FTS-only
	FromFTS  bool
}

// Store is the vector store contract spec.md §4.5 names.
type Store interface {
	// Insert appends records, enforcing StoredModel monotonicity (spec.md
	// §3's StoredModel invariant): the first insert records modelName; any
	// later insert under a different model fails with ErrModelMismatch.
	Insert(ctx context.Context, modelName string, records []types.VectorRecord) error

	// Search returns the top opts.Limit candidates by cosine distance.
	Search(ctx context.Context, embedding []float32, opts SearchOptions) ([]types.VectorRecord, error)

	// HybridSearch merges a vector search and an FTS search under the same
	// filters, deduplicating by (filePath, startLine, name), FTS-first.
	HybridSearch(ctx context.Context, queryText string, embedding []float32, opts SearchOptions) ([]HybridResult, error)

	DeleteByFile(ctx context.Context, filePath string) error
	DeleteByProject(ctx context.Context, projectName string) error
	Clear(ctx context.Context) error

	MoveProjectToCollection(ctx context.Context, oldProject, newCollection string) error

	// CurrentModel returns the StoredModel row's modelName, or "" if unset.
	CurrentModel(ctx context.Context) (string, error)

	// UpsertDependency inserts or replaces a DependencyRecord keyed by file
	// path. The sqlite backend creates the dependencies table with the rest
	// of the schema when the store is opened; there is no lazy creation and
	// no single-flight guard.
	UpsertDependency(ctx context.Context, dep types.DependencyRecord) error
	Dependencies(ctx context.Context, projectName string) ([]types.DependencyRecord, error)

	// WatchList persists/lists/removes WatchListEntry rows.
	AddWatch(ctx context.Context, entry types.WatchListEntry) error
	RemoveWatch(ctx context.Context, folderPath string) error
	ListWatches(ctx context.Context) ([]types.WatchListEntry, error)

	// Collections returns the distinct collection -> project names indexed
	// in code_search, per spec.md §4.5's list_knowledge_base contract. Unlike
	// ListWatches this reflects every indexed project, not just ones a
	// watcher was later attached to.
	Collections(ctx context.Context) (map[string][]string, error)

	Close() error
}

// recordKey is the composite dedup key spec.md §4.5 item 3 specifies for
// hybrid-search merging.
type recordKey struct {
	filePath  string
	startLine int
	name      string
}

func keyOf(r types.VectorRecord) recordKey {
	return recordKey{filePath: r.FilePath, startLine: r.StartLine, name: r.Name}
}

// hasFileTypeSuffix implements spec.md §4.5's fileTypes post-filter: a
// lowercased-extension suffix match on the lowercased file path.
func hasFileTypeSuffix(filePath string, fileTypes []string) bool {
	if len(fileTypes) == 0 {
		return true
	}
	lower := strings.ToLower(filePath)
	for _, ft := range fileTypes {
		if strings.HasSuffix(lower, strings.ToLower(ft)) {
			return true
		}
	}
	return false
}
