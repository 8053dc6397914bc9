// Package types holds the data-model entities shared across vibescout's
// indexing and retrieval packages, as laid out in the system specification's
// data model.
package types

import "time"

// BlockType enumerates the kinds of declarations an extractor strategy can emit.
type BlockType string

const (
	BlockClass         BlockType = "class"
	BlockMethod        BlockType = "method"
	BlockFunction      BlockType = "function"
	BlockChunk         BlockType = "chunk"
	BlockKeyPair       BlockType = "key_pair"
	BlockTag           BlockType = "tag"
	BlockFile          BlockType = "file"
	BlockDocumentation BlockType = "documentation"
	BlockProperty      BlockType = "property"
	BlockTypeDecl      BlockType = "type"
	BlockInterface     BlockType = "interface"
	BlockConstructor   BlockType = "constructor"
	BlockTable         BlockType = "table"
)

// BlockCategory distinguishes source code from prose/documentation blocks.
type BlockCategory string

const (
	CategoryCode          BlockCategory = "code"
	CategoryDocumentation BlockCategory = "documentation"
)

// Block is a parseable unit of source code or documentation emitted by an
// extractor strategy: either a parent declaration or a chunk of a large
// parent's body.
type Block struct {
	Name       string
	Type       BlockType
	Category   BlockCategory
	StartLine  int // 1-based inclusive
	EndLine    int // 1-based inclusive
	Comments   string
	Content    string
	ParentName string // only set when Type == BlockChunk
	FilePath   string
}

// ImportEdge is a single dependency edge discovered in a source file: either
// a static import/require or a runtime registry-style lookup.
type ImportEdge struct {
	Source  string
	Symbols map[string]struct{}
	Runtime bool
}

// ChurnLevel categorizes how frequently a file has changed recently.
type ChurnLevel string

const (
	ChurnLow    ChurnLevel = "low"
	ChurnMedium ChurnLevel = "medium"
	ChurnHigh   ChurnLevel = "high"
)

// GitInfo is the optional per-file commit enrichment attached to a VectorRecord.
type GitInfo struct {
	LastCommitAuthor  string
	LastCommitEmail   string
	LastCommitDate    time.Time
	LastCommitHash    string
	LastCommitMessage string
	CommitCount6m     int
	ChurnLevel        ChurnLevel
}

// VectorRecord is a row of the code_search table: a Block plus its summary,
// embedding, and optional git enrichment.
type VectorRecord struct {
	Collection  string
	ProjectName string
	Name        string
	Type        BlockType
	Category    BlockCategory
	FilePath    string
	StartLine   int
	EndLine     int
	Comments    string
	Content     string
	Summary     string
	Vector      []float32
	Git         *GitInfo
}

// FileFingerprint records the content hash a file was last indexed at.
type FileFingerprint struct {
	FilePath string
	Hash     string
}

// DependencyRecord is the per-file import/export record written alongside
// a file's vectors.
type DependencyRecord struct {
	FilePath    string
	ProjectName string
	Collection  string
	Imports     []ImportEdge
	Exports     []string
}

// WatchListEntry is a persisted folder being watched for live mutations.
type WatchListEntry struct {
	FolderPath  string
	ProjectName string
	Collection  string
}

// StoredModel names the embedding model that wrote the records currently in
// the store. At most one row may exist per store.
type StoredModel struct {
	ModelName string
}

// IndexStatus enumerates the lifecycle states of an indexing run.
type IndexStatus string

const (
	StatusIdle                IndexStatus = "idle"
	StatusIndexing            IndexStatus = "indexing"
	StatusPaused              IndexStatus = "paused"
	StatusStopping            IndexStatus = "stopping"
	StatusStopped             IndexStatus = "stopped"
	StatusCompleted           IndexStatus = "completed"
	StatusCompletedWithErrors IndexStatus = "completed_with_errors"
	// StatusError is a prefix; the full status string is "error:<msg>".
	StatusError IndexStatus = "error"
)

// CompletedFile is a newest-first bounded-history entry of a finished file.
type CompletedFile struct {
	FilePath  string
	Skipped   bool
	Failed    bool
	FinishedAt time.Time
}

// IndexingProgress is the process-wide snapshot of the current (or most
// recent) indexing run.
type IndexingProgress struct {
	Active         bool
	ProjectName    string
	TotalFiles     int
	ProcessedFiles int
	FailedFiles    int
	FailedPaths    []string
	SkippedFiles   int
	Status         IndexStatus
	ErrorMessage   string
	CurrentFiles   []string        // bounded
	CompletedFiles []CompletedFile // bounded to 20, newest-first
}

// TaskType enumerates the kinds of work a Task can carry.
type TaskType string

const (
	TaskIndexFolder  TaskType = "indexFolder"
	TaskIndexFiles   TaskType = "indexFiles"
	TaskRetryFailed  TaskType = "retryFailed"
)

// TaskPriority orders tasks within the queue; lower values run first.
type TaskPriority int

const (
	PriorityHigh   TaskPriority = 0
	PriorityMedium TaskPriority = 1
	PriorityLow    TaskPriority = 2
)

// TaskStatus enumerates a Task's lifecycle state.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskActive    TaskStatus = "active"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// Task is a unit of queued work.
type Task struct {
	ID              string
	Type            TaskType
	Data            map[string]any
	Priority        TaskPriority
	Status          TaskStatus
	RetryCount      int
	NextRetryAt     time.Time
	Progress        float64
	CancelRequested bool
	CreatedAt       time.Time
	StartedAt       time.Time
	CompletedAt     time.Time
	CancelledAt     time.Time
	FailedAt        time.Time
	LastError       string
}
