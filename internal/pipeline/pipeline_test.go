package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/sevenseconds/vibescout/internal/config"
	"github.com/sevenseconds/vibescout/internal/extract"
	"github.com/sevenseconds/vibescout/internal/hashstore"
	"github.com/sevenseconds/vibescout/internal/provider"
	"github.com/sevenseconds/vibescout/internal/store"
	"github.com/sevenseconds/vibescout/internal/types"
)

// fakeReporter discards progress snapshots and records each log line's
// format string.
type fakeReporter struct {
	logs []string
}

func (f *fakeReporter) Progress(types.IndexingProgress) {}
func (f *fakeReporter) Logf(format string, args ...any) { f.logs = append(f.logs, format) }

func newTestPipeline(t *testing.T) (*Pipeline, *provider.MockEmbeddingProvider) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store.InitVectorExtension()
	st, err := store.NewSQLite(db, 384)
	require.NoError(t, err)

	hdb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { hdb.Close() })
	hashes, err := hashstore.New(hdb)
	require.NoError(t, err)

	embedder := provider.NewMockEmbeddingProvider()
	summarizer := provider.NewMockSummarizerProvider()

	cfg := config.Default()
	cfg.Indexing.Summarize = true

	p := New(
		Config{Concurrency: 4},
		cfg,
		st,
		hashes,
		extract.NewRegistry(),
		embedder,
		summarizer,
		nil,
		nil,
		nil,
		&fakeReporter{},
	)
	return p, embedder
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIndexFolderIndexesNewFiles(t *testing.T) {
	p, _ := newTestPipeline(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n\nfunc A() {}\n")
	writeFile(t, dir, "b.go", "package a\n\nfunc B() {}\n")

	res, err := p.IndexFolder(context.Background(), Options{FolderPath: dir, Summarize: true})
	require.NoError(t, err)
	require.Equal(t, 2, res.TotalIndexed)
	require.Equal(t, 0, res.Skipped)
	require.Equal(t, 0, res.Pruned)

	status := p.Status()
	require.False(t, status.Active)
}

func TestIndexFolderSkipsUnchangedFiles(t *testing.T) {
	p, _ := newTestPipeline(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n\nfunc A() {}\n")

	_, err := p.IndexFolder(context.Background(), Options{FolderPath: dir})
	require.NoError(t, err)

	res, err := p.IndexFolder(context.Background(), Options{FolderPath: dir})
	require.NoError(t, err)
	require.Equal(t, 0, res.TotalIndexed)
	require.Equal(t, 1, res.Skipped)
}

func TestIndexFolderReembedsOnForce(t *testing.T) {
	p, _ := newTestPipeline(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n\nfunc A() {}\n")

	_, err := p.IndexFolder(context.Background(), Options{FolderPath: dir})
	require.NoError(t, err)

	res, err := p.IndexFolder(context.Background(), Options{FolderPath: dir, Force: true})
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalIndexed)
	require.Equal(t, 0, res.Skipped)
}

func TestIndexFolderPrunesDeletedFiles(t *testing.T) {
	p, _ := newTestPipeline(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a\n\nfunc A() {}\n")

	_, err := p.IndexFolder(context.Background(), Options{FolderPath: dir})
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	res, err := p.IndexFolder(context.Background(), Options{FolderPath: dir})
	require.NoError(t, err)
	require.Equal(t, 1, res.Pruned)
}

func TestIndexFolderRejectsConcurrentRuns(t *testing.T) {
	p, _ := newTestPipeline(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n\nfunc A() {}\n")

	require.True(t, p.progress.tryStart("already-running", 1))
	_, err := p.IndexFolder(context.Background(), Options{FolderPath: dir})
	require.ErrorIs(t, err, ErrAlreadyActive)
	p.progress.finish()
}

func TestIndexFolderHonorsFileTypeIndexOptOut(t *testing.T) {
	p, _ := newTestPipeline(t)
	p.appCfg.Indexing.FileTypes["readme"] = config.FileTypeConfig{
		Extensions: []string{".txt"},
		Index:      boolPtr(false),
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "just some notes")

	res, err := p.IndexFolder(context.Background(), Options{FolderPath: dir})
	require.NoError(t, err)
	require.Equal(t, 0, res.Skipped)

	deps, err := p.store.Dependencies(context.Background(), filepath.Base(dir))
	require.NoError(t, err)
	require.Len(t, deps, 1)
	require.Equal(t, path, deps[0].FilePath)

	zero := make([]float32, 384)
	hits, err := p.store.Search(context.Background(), zero, store.SearchOptions{Limit: 10})
	require.NoError(t, err)
	for _, h := range hits {
		require.NotEqual(t, path, h.FilePath)
	}
}

func TestReindexFilePropagatesPersistentFailure(t *testing.T) {
	p, embedder := newTestPipeline(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a\n\nfunc A() {}\n")

	savedDelays := retryDelays
	retryDelays = nil // skip the real 1s/2s/4s backoff for this test
	t.Cleanup(func() { retryDelays = savedDelays })

	embedder.SetEmbedError(errors.New("persistent failure"))
	err := p.ReindexFile(context.Background(), path, "proj", "default", false)
	require.Error(t, err)
}

func TestReindexFileSucceeds(t *testing.T) {
	p, _ := newTestPipeline(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a\n\nfunc A() {}\n")

	err := p.ReindexFile(context.Background(), path, "proj", "default", false)
	require.NoError(t, err)
}

func boolPtr(b bool) *bool { return &b }
