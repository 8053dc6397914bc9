package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/sevenseconds/vibescout/internal/types"
)

// overfetchMultiplier mirrors overfetchFactor for the remote-backend path,
// grounded on internal/mcp/chromem_searcher.go's DefaultResultMultiplier: a
// backend that can only filter post-fetch needs headroom before truncation.
const overfetchMultiplier = 2

const chromemCollectionName = "code_search"

// chromemStore implements Store on top of an in-process chromem-go
// collection (vector half) plus an in-memory bleve index (FTS half),
// grounded on internal/mcp/chromem_searcher.go and exact_searcher.go. Unlike
// sqliteStore, neither backend can express the SearchOptions pre-filters
// natively as a WHERE clause across arbitrary fields, so every filter here
// runs post-fetch over an overfetched candidate set, per spec.md §4.5's
// allowance for backends that "cannot express WHERE pre-filters."
type chromemStore struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	bleveIndex bleve.Index
	dimensions int

	modelName string

	deps    map[string]types.DependencyRecord
	watches map[string]types.WatchListEntry

	// recordsByID backs reconstruction of full VectorRecord values, since
	// chromem.Document only stores string metadata and bleve only stores the
	// fields it was given: the authoritative copy lives here, keyed by the
	// same id chromem/bleve use.
	recordsByID map[string]types.VectorRecord
}

// NewChromem constructs a Store backed by an in-memory chromem-go vector
// collection and a matching in-memory bleve full-text index.
func NewChromem(dimensions int) (Store, error) {
	db := chromem.NewDB()
	collection, err := db.CreateCollection(chromemCollectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("store: create chromem collection: %w", err)
	}

	index, err := bleve.NewMemOnly(buildChromemBleveMapping())
	if err != nil {
		return nil, fmt.Errorf("store: create bleve index: %w", err)
	}

	return &chromemStore{
		db:          db,
		collection:  collection,
		bleveIndex:  index,
		dimensions:  dimensions,
		deps:        make(map[string]types.DependencyRecord),
		watches:     make(map[string]types.WatchListEntry),
		recordsByID: make(map[string]types.VectorRecord),
	}, nil
}

// buildChromemBleveMapping indexes the same stored fields
// internal/mcp/exact_searcher.go's buildBleveMapping uses, narrowed to what
// a VectorRecord carries.
func buildChromemBleveMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	content := bleve.NewTextFieldMapping()
	content.Analyzer = "standard"
	content.Store = true
	content.Index = true
	content.IncludeTermVectors = true

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	keyword.Index = true

	stored := bleve.NewTextFieldMapping()
	stored.Analyzer = "keyword"
	stored.Store = true
	stored.Index = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("id", stored)
	doc.AddFieldMappingsAt("content", content)
	doc.AddFieldMappingsAt("comments", content)
	doc.AddFieldMappingsAt("collection", keyword)
	doc.AddFieldMappingsAt("project_name", keyword)
	doc.AddFieldMappingsAt("category", keyword)
	doc.AddFieldMappingsAt("file_path", stored)

	indexMapping.DefaultMapping = doc
	return indexMapping
}

func (s *chromemStore) CurrentModel(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modelName, nil
}

func (s *chromemStore) Insert(ctx context.Context, modelName string, records []types.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.modelName == "" {
		s.modelName = modelName
	} else if s.modelName != modelName {
		return fmt.Errorf("%w: store has %q, caller is %q", ErrModelMismatch, s.modelName, modelName)
	}

	batch := s.bleveIndex.NewBatch()
	for _, r := range records {
		id := uuid.NewString()
		s.recordsByID[id] = r

		doc := chromem.Document{
			ID:        id,
			Content:   r.Content,
			Embedding: r.Vector,
			Metadata: map[string]string{
				"collection":   r.Collection,
				"project_name": r.ProjectName,
				"category":     string(r.Category),
				"file_path":    r.FilePath,
			},
		}
		if r.Git != nil {
			doc.Metadata["last_commit_author"] = r.Git.LastCommitAuthor
			doc.Metadata["churn_level"] = string(r.Git.ChurnLevel)
			doc.Metadata["last_commit_date"] = r.Git.LastCommitDate.Format("2006-01-02T15:04:05Z07:00")
		}
		if err := s.collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("store: chromem add document: %w", err)
		}

		if err := batch.Index(id, map[string]any{
			"id":           id,
			"content":      r.Content,
			"comments":     r.Comments,
			"collection":   r.Collection,
			"project_name": r.ProjectName,
			"category":     string(r.Category),
			"file_path":    r.FilePath,
		}); err != nil {
			return fmt.Errorf("store: bleve batch index: %w", err)
		}
	}
	if batch.Size() > 0 {
		if err := s.bleveIndex.Batch(batch); err != nil {
			return fmt.Errorf("store: bleve execute batch: %w", err)
		}
	}
	return nil
}

// matchesFilters applies every SearchOptions pre-filter post-fetch, since
// neither chromem nor bleve here express arbitrary multi-field WHERE
// clauses the way squirrel-built SQL does.
func matchesFilters(r types.VectorRecord, opts SearchOptions) bool {
	if opts.Collection != "" && r.Collection != opts.Collection {
		return false
	}
	if opts.ProjectName != "" && r.ProjectName != opts.ProjectName {
		return false
	}
	if len(opts.Categories) > 0 {
		ok := false
		for _, c := range opts.Categories {
			if r.Category == c {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(opts.Authors) > 0 {
		ok := r.Git != nil
		if ok {
			ok = false
			for _, a := range opts.Authors {
				if r.Git.LastCommitAuthor == a {
					ok = true
					break
				}
			}
		}
		if !ok {
			return false
		}
	}
	if len(opts.ChurnLevels) > 0 {
		ok := r.Git != nil
		if ok {
			ok = false
			for _, c := range opts.ChurnLevels {
				if r.Git.ChurnLevel == c {
					ok = true
					break
				}
			}
		}
		if !ok {
			return false
		}
	}
	if opts.LastCommitFrom != "" {
		if r.Git == nil || r.Git.LastCommitDate.Format("2006-01-02") < opts.LastCommitFrom {
			return false
		}
	}
	if opts.LastCommitTo != "" {
		if r.Git == nil || r.Git.LastCommitDate.Format("2006-01-02") > opts.LastCommitTo {
			return false
		}
	}
	return hasFileTypeSuffix(r.FilePath, opts.FileTypes)
}

func (s *chromemStore) Search(ctx context.Context, embedding []float32, opts SearchOptions) ([]types.VectorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	n := limit * overfetchMultiplier
	if count := s.collection.Count(); n > count {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("store: chromem query: %w", err)
	}

	out := make([]types.VectorRecord, 0, limit)
	for _, res := range results {
		r, ok := s.recordsByID[res.ID]
		if !ok || !matchesFilters(r, opts) {
			continue
		}
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *chromemStore) searchFTS(ctx context.Context, queryText string, opts SearchOptions, limit int) ([]types.VectorRecord, error) {
	if queryText == "" {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(queryText), limit*overfetchMultiplier, 0, false)
	req.Fields = []string{"id"}

	result, err := s.bleveIndex.Search(req)
	if err != nil {
		return nil, fmt.Errorf("store: bleve search: %w", err)
	}

	out := make([]types.VectorRecord, 0, limit)
	for _, hit := range result.Hits {
		id, _ := hit.Fields["id"].(string)
		r, ok := s.recordsByID[id]
		if !ok || !matchesFilters(r, opts) {
			continue
		}
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *chromemStore) HybridSearch(ctx context.Context, queryText string, embedding []float32, opts SearchOptions) ([]HybridResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	ftsOpts := opts
	ftsOpts.Limit = limit * 2
	ftsRecords, err := s.searchFTS(ctx, queryText, ftsOpts, ftsOpts.Limit)
	if err != nil {
		return nil, err
	}

	vecOpts := opts
	vecOpts.Limit = limit * 2
	vecRecords, err := s.Search(ctx, embedding, vecOpts)
	if err != nil {
		return nil, err
	}

	seen := make(map[recordKey]bool, len(ftsRecords)+len(vecRecords))
	merged := make([]HybridResult, 0, limit*2)
	for _, r := range ftsRecords {
		k := keyOf(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		merged = append(merged, HybridResult{Record: r, FromFTS: true})
	}
	for _, r := range vecRecords {
		k := keyOf(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		merged = append(merged, HybridResult{Record: r})
	}

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// deleteIDs removes matching records from the authoritative map, the
// chromem collection, and the bleve index. chromem-go and bleve both only
// support delete-by-id, so a predicate scan over recordsByID stands in for
// the SQL DELETE ... WHERE sqliteStore uses.
func (s *chromemStore) deleteIDs(match func(types.VectorRecord) bool) error {
	var ids []string
	for id, r := range s.recordsByID {
		if match(r) {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		if err := s.collection.Delete(context.Background(), nil, nil, id); err != nil {
			return fmt.Errorf("store: chromem delete %s: %w", id, err)
		}
		if err := s.bleveIndex.Delete(id); err != nil {
			return fmt.Errorf("store: bleve delete %s: %w", id, err)
		}
		delete(s.recordsByID, id)
	}
	return nil
}

func (s *chromemStore) DeleteByFile(ctx context.Context, filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteIDs(func(r types.VectorRecord) bool { return r.FilePath == filePath })
}

func (s *chromemStore) DeleteByProject(ctx context.Context, projectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deleteIDs(func(r types.VectorRecord) bool { return r.ProjectName == projectName }); err != nil {
		return err
	}
	for path, d := range s.deps {
		if d.ProjectName == projectName {
			delete(s.deps, path)
		}
	}
	for path, w := range s.watches {
		if w.ProjectName == projectName {
			delete(s.watches, path)
		}
	}
	return nil
}

func (s *chromemStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Fresh collection under the same name, matching loadChunks's atomic-swap
	// reload pattern rather than an explicit delete call.
	collection, err := s.db.CreateCollection(chromemCollectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("store: chromem recreate collection: %w", err)
	}
	s.collection = collection

	index, err := bleve.NewMemOnly(buildChromemBleveMapping())
	if err != nil {
		return fmt.Errorf("store: bleve recreate index: %w", err)
	}
	if err := s.bleveIndex.Close(); err != nil {
		return fmt.Errorf("store: bleve close old index: %w", err)
	}
	s.bleveIndex = index

	s.modelName = ""
	s.recordsByID = make(map[string]types.VectorRecord)
	s.deps = make(map[string]types.DependencyRecord)
	s.watches = make(map[string]types.WatchListEntry)
	return nil
}

// MoveProjectToCollection rewrites the in-memory collection field on every
// matching record, dependency, and watch entry. Since chromem-go documents
// are immutable once added, matching records are deleted and re-added under
// the new collection rather than updated in place.
func (s *chromemStore) MoveProjectToCollection(ctx context.Context, oldProject, newCollection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var toMove []types.VectorRecord
	var ids []string
	for id, r := range s.recordsByID {
		if r.ProjectName == oldProject {
			toMove = append(toMove, r)
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		if err := s.collection.Delete(context.Background(), nil, nil, id); err != nil {
			return fmt.Errorf("store: chromem delete for move %s: %w", id, err)
		}
		if err := s.bleveIndex.Delete(id); err != nil {
			return fmt.Errorf("store: bleve delete for move %s: %w", id, err)
		}
		delete(s.recordsByID, id)
	}

	batch := s.bleveIndex.NewBatch()
	for _, r := range toMove {
		r.Collection = newCollection
		id := uuid.NewString()
		s.recordsByID[id] = r
		doc := chromem.Document{
			ID:        id,
			Content:   r.Content,
			Embedding: r.Vector,
			Metadata: map[string]string{
				"collection":   r.Collection,
				"project_name": r.ProjectName,
				"category":     string(r.Category),
				"file_path":    r.FilePath,
			},
		}
		if err := s.collection.AddDocument(context.Background(), doc); err != nil {
			return fmt.Errorf("store: chromem re-add for move %s: %w", id, err)
		}
		if err := batch.Index(id, map[string]any{
			"id":           id,
			"content":      r.Content,
			"comments":     r.Comments,
			"collection":   r.Collection,
			"project_name": r.ProjectName,
			"category":     string(r.Category),
			"file_path":    r.FilePath,
		}); err != nil {
			return fmt.Errorf("store: bleve re-index for move %s: %w", id, err)
		}
	}
	if batch.Size() > 0 {
		if err := s.bleveIndex.Batch(batch); err != nil {
			return fmt.Errorf("store: bleve execute move batch: %w", err)
		}
	}

	for path, d := range s.deps {
		if d.ProjectName == oldProject {
			d.Collection = newCollection
			s.deps[path] = d
		}
	}
	for path, w := range s.watches {
		if w.ProjectName == oldProject {
			w.Collection = newCollection
			s.watches[path] = w
		}
	}
	return nil
}

func (s *chromemStore) UpsertDependency(ctx context.Context, dep types.DependencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps[dep.FilePath] = dep
	return nil
}

func (s *chromemStore) Dependencies(ctx context.Context, projectName string) ([]types.DependencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.DependencyRecord
	for _, d := range s.deps {
		if d.ProjectName == projectName {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *chromemStore) AddWatch(ctx context.Context, entry types.WatchListEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watches[entry.FolderPath] = entry
	return nil
}

func (s *chromemStore) RemoveWatch(ctx context.Context, folderPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watches, folderPath)
	return nil
}

func (s *chromemStore) ListWatches(ctx context.Context) ([]types.WatchListEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.WatchListEntry, 0, len(s.watches))
	for _, w := range s.watches {
		out = append(out, w)
	}
	return out, nil
}

func (s *chromemStore) Collections(ctx context.Context) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]map[string]struct{})
	for _, r := range s.recordsByID {
		projects, ok := seen[r.Collection]
		if !ok {
			projects = make(map[string]struct{})
			seen[r.Collection] = projects
		}
		projects[r.ProjectName] = struct{}{}
	}
	out := make(map[string][]string, len(seen))
	for collection, projects := range seen {
		names := make([]string, 0, len(projects))
		for p := range projects {
			names = append(names, p)
		}
		out[collection] = names
	}
	return out, nil
}

func (s *chromemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bleveIndex.Close()
}
