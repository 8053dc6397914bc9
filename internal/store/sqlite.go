package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	sqlitevec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	"github.com/sevenseconds/vibescout/internal/types"
)

// overfetchFactor is spec.md §4.5 item 2's K: a vector search retrieves
// limit*K candidates before pre/post filtering and slicing.
const overfetchFactor = 5

type sqliteStore struct {
	db         *sql.DB
	dimensions int
}

// NewSQLite opens (creating if absent) a SQLite-backed Store sized to
// dimensions, per spec.md §3's "all vectors in code_search share dimension
// D determined by the stored model."
func NewSQLite(db *sql.DB, dimensions int) (Store, error) {
	if err := createSchema(db, dimensions); err != nil {
		return nil, err
	}
	if err := migrateCategoryColumn(db); err != nil {
		return nil, err
	}
	return &sqliteStore{db: db, dimensions: dimensions}, nil
}

func (s *sqliteStore) CurrentModel(ctx context.Context) (string, error) {
	var name string
	err := sq.Select("model_name").From("metadata").Limit(1).
		RunWith(s.db).QueryRowContext(ctx).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: current model: %w", err)
	}
	return name, nil
}

// Insert enforces spec.md §3's StoredModel monotonicity before appending.
// It does not detect or handle unknown-field errors: the category-column
// backfill migration runs once, from NewSQLite, before any insert.
func (s *sqliteStore) Insert(ctx context.Context, modelName string, records []types.VectorRecord) error {
	current, err := s.CurrentModel(ctx)
	if err != nil {
		return err
	}
	if current == "" {
		if _, err := s.db.ExecContext(ctx, "INSERT INTO metadata (model_name) VALUES (?)", modelName); err != nil {
			return fmt.Errorf("store: write stored model: %w", err)
		}
	} else if current != modelName {
		return fmt.Errorf("%w: store has %q, caller is %q", ErrModelMismatch, current, modelName)
	}

	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin insert tx: %w", err)
	}
	defer tx.Rollback()

	insertRow, err := tx.Prepare(`
		INSERT INTO code_search (
			id, collection, project_name, name, type, category, file_path,
			start_line, end_line, comments, content, summary,
			last_commit_author, last_commit_email, last_commit_date,
			last_commit_hash, last_commit_message, commit_count_6m, churn_level
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer insertRow.Close()

	insertFTS, err := tx.Prepare("INSERT INTO code_search_fts (id, content) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("store: prepare fts insert: %w", err)
	}
	defer insertFTS.Close()

	insertVec, err := tx.Prepare("INSERT INTO code_search_vec (id, embedding) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("store: prepare vec insert: %w", err)
	}
	defer insertVec.Close()

	for _, r := range records {
		id := uuid.NewString()
		var author, email, date, hash, msg, churn sql.NullString
		var commitCount sql.NullInt64
		if r.Git != nil {
			author = sql.NullString{String: r.Git.LastCommitAuthor, Valid: true}
			email = sql.NullString{String: r.Git.LastCommitEmail, Valid: true}
			date = sql.NullString{String: r.Git.LastCommitDate.Format("2006-01-02T15:04:05Z07:00"), Valid: true}
			hash = sql.NullString{String: r.Git.LastCommitHash, Valid: true}
			msg = sql.NullString{String: r.Git.LastCommitMessage, Valid: true}
			commitCount = sql.NullInt64{Int64: int64(r.Git.CommitCount6m), Valid: true}
			churn = sql.NullString{String: string(r.Git.ChurnLevel), Valid: true}
		}

		if _, err := insertRow.ExecContext(ctx,
			id, r.Collection, r.ProjectName, r.Name, string(r.Type), string(r.Category), r.FilePath,
			r.StartLine, r.EndLine, r.Comments, r.Content, r.Summary,
			author, email, date, hash, msg, commitCount, churn,
		); err != nil {
			return fmt.Errorf("store: insert record %s: %w", r.Name, err)
		}

		if _, err := insertFTS.ExecContext(ctx, id, r.Content); err != nil {
			return fmt.Errorf("store: insert fts %s: %w", r.Name, err)
		}

		embBytes, err := sqlitevec.SerializeFloat32(r.Vector)
		if err != nil {
			return fmt.Errorf("store: serialize embedding %s: %w", r.Name, err)
		}
		if _, err := insertVec.ExecContext(ctx, id, embBytes); err != nil {
			return fmt.Errorf("store: insert vec %s: %w", r.Name, err)
		}
	}

	return tx.Commit()
}

// preFilterWhere builds the WHERE clause spec.md §4.5 item 2 lists as
// pre-filters on the code_search table, applied before the fileTypes
// post-filter.
func preFilterWhere(opts SearchOptions) sq.Sqlizer {
	and := sq.And{}
	if opts.Collection != "" {
		and = append(and, sq.Eq{"cs.collection": opts.Collection})
	}
	if opts.ProjectName != "" {
		and = append(and, sq.Eq{"cs.project_name": opts.ProjectName})
	}
	if len(opts.Categories) > 0 {
		vals := make([]string, len(opts.Categories))
		for i, c := range opts.Categories {
			vals[i] = string(c)
		}
		and = append(and, sq.Eq{"cs.category": vals})
	}
	if len(opts.Authors) > 0 {
		and = append(and, sq.Eq{"cs.last_commit_author": opts.Authors})
	}
	if len(opts.ChurnLevels) > 0 {
		vals := make([]string, len(opts.ChurnLevels))
		for i, c := range opts.ChurnLevels {
			vals[i] = string(c)
		}
		and = append(and, sq.Eq{"cs.churn_level": vals})
	}
	if opts.LastCommitFrom != "" {
		and = append(and, sq.GtOrEq{"cs.last_commit_date": opts.LastCommitFrom})
	}
	if opts.LastCommitTo != "" {
		and = append(and, sq.LtOrEq{"cs.last_commit_date": opts.LastCommitTo})
	}
	if len(and) == 0 {
		return sq.Expr("1 = 1")
	}
	return and
}

func (s *sqliteStore) Search(ctx context.Context, embedding []float32, opts SearchOptions) ([]types.VectorRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	embBytes, err := sqlitevec.SerializeFloat32(embedding)
	if err != nil {
		return nil, fmt.Errorf("store: serialize query embedding: %w", err)
	}

	whereSQL, whereArgs, err := preFilterWhere(opts).ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build filter: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT cs.id, cs.collection, cs.project_name, cs.name, cs.type, cs.category,
			cs.file_path, cs.start_line, cs.end_line, cs.comments, cs.content, cs.summary,
			cs.last_commit_author, cs.last_commit_email, cs.last_commit_date,
			cs.last_commit_hash, cs.last_commit_message, cs.commit_count_6m, cs.churn_level
		FROM code_search_vec v
		JOIN code_search cs ON cs.id = v.id
		WHERE %s
		ORDER BY vec_distance_cosine(v.embedding, ?)
		LIMIT ?`, whereSQL)

	args := append(append([]any{}, whereArgs...), embBytes, limit*overfetchFactor)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search query: %w", err)
	}
	defer rows.Close()

	records, err := scanVectorRecords(rows)
	if err != nil {
		return nil, err
	}

	filtered := make([]types.VectorRecord, 0, limit)
	for _, r := range records {
		if !hasFileTypeSuffix(r.FilePath, opts.FileTypes) {
			continue
		}
		filtered = append(filtered, r)
		if len(filtered) == limit {
			break
		}
	}
	return filtered, nil
}

func (s *sqliteStore) HybridSearch(ctx context.Context, queryText string, embedding []float32, opts SearchOptions) ([]HybridResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	vecOpts := opts
	vecOpts.Limit = limit * 2
	vecRecords, err := s.Search(ctx, embedding, vecOpts)
	if err != nil {
		return nil, err
	}

	ftsRecords, err := s.searchFTS(ctx, queryText, opts, limit*2)
	if err != nil {
		return nil, err
	}

	seen := map[recordKey]bool{}
	var merged []HybridResult
	// FTS results listed first, per spec.md §4.5 item 3.
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

	out := make([]HybridResult, 0, limit)
	for _, m := range merged {
		if !hasFileTypeSuffix(m.Record.FilePath, opts.FileTypes) {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *sqliteStore) searchFTS(ctx context.Context, queryText string, opts SearchOptions, limit int) ([]types.VectorRecord, error) {
	if queryText == "" {
		return nil, nil
	}
	whereSQL, whereArgs, err := preFilterWhere(opts).ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build fts filter: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT cs.id, cs.collection, cs.project_name, cs.name, cs.type, cs.category,
			cs.file_path, cs.start_line, cs.end_line, cs.comments, cs.content, cs.summary,
			cs.last_commit_author, cs.last_commit_email, cs.last_commit_date,
			cs.last_commit_hash, cs.last_commit_message, cs.commit_count_6m, cs.churn_level
		FROM code_search_fts f
		JOIN code_search cs ON cs.id = f.id
		WHERE f.content MATCH ? AND %s
		ORDER BY rank
		LIMIT ?`, whereSQL)

	args := append([]any{queryText}, append(whereArgs, limit)...)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: fts query: %w", err)
	}
	defer rows.Close()
	return scanVectorRecords(rows)
}

func scanVectorRecords(rows *sql.Rows) ([]types.VectorRecord, error) {
	var out []types.VectorRecord
	for rows.Next() {
		var (
			id, collection, projectName, name, blockType, category, filePath string
			startLine, endLine                                               int
			comments, content, summary                                       sql.NullString
			author, email, date, hash, msg, churn                            sql.NullString
			commitCount                                                      sql.NullInt64
		)
		if err := rows.Scan(
			&id, &collection, &projectName, &name, &blockType, &category, &filePath,
			&startLine, &endLine, &comments, &content, &summary,
			&author, &email, &date, &hash, &msg, &commitCount, &churn,
		); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}

		r := types.VectorRecord{
			Collection:  collection,
			ProjectName: projectName,
			Name:        name,
			Type:        types.BlockType(blockType),
			Category:    types.BlockCategory(category),
			FilePath:    filePath,
			StartLine:   startLine,
			EndLine:     endLine,
			Comments:    comments.String,
			Content:     content.String,
			Summary:     summary.String,
		}
		if author.Valid {
			g := &types.GitInfo{
				LastCommitAuthor:  author.String,
				LastCommitEmail:   email.String,
				LastCommitHash:    hash.String,
				LastCommitMessage: msg.String,
				ChurnLevel:        types.ChurnLevel(churn.String),
			}
			if commitCount.Valid {
				g.CommitCount6m = int(commitCount.Int64)
			}
			r.Git = g
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) DeleteByFile(ctx context.Context, filePath string) error {
	return s.deleteWhere(ctx, sq.Eq{"file_path": filePath})
}

func (s *sqliteStore) DeleteByProject(ctx context.Context, projectName string) error {
	return s.deleteWhere(ctx, sq.Eq{"project_name": projectName})
}

func (s *sqliteStore) deleteWhere(ctx context.Context, pred sq.Sqlizer) error {
	whereSQL, args, err := pred.ToSql()
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM code_search WHERE "+whereSQL, args...)
	if err != nil {
		return fmt.Errorf("store: find ids to delete: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM code_search WHERE "+whereSQL, args...); err != nil {
		return fmt.Errorf("store: delete code_search rows: %w", err)
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM code_search_fts WHERE id = ?", id); err != nil {
			return fmt.Errorf("store: delete fts row %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM code_search_vec WHERE id = ?", id); err != nil {
			return fmt.Errorf("store: delete vec row %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range []string{"code_search", "code_search_fts", "code_search_vec", "metadata", "dependencies", "watch_list", "chat_messages"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("store: clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) MoveProjectToCollection(ctx context.Context, oldProject, newCollection string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "UPDATE code_search SET collection = ? WHERE project_name = ?", newCollection, oldProject); err != nil {
		return fmt.Errorf("store: move code_search rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE dependencies SET collection = ? WHERE project_name = ?", newCollection, oldProject); err != nil {
		return fmt.Errorf("store: move dependencies rows: %w", err)
	}
	return tx.Commit()
}

func (s *sqliteStore) UpsertDependency(ctx context.Context, dep types.DependencyRecord) error {
	importsJSON, err := json.Marshal(dep.Imports)
	if err != nil {
		return err
	}
	exportsJSON, err := json.Marshal(dep.Exports)
	if err != nil {
		return err
	}
	_, err = sq.Insert("dependencies").
		Columns("file_path", "project_name", "collection", "imports_json", "exports_json").
		Values(dep.FilePath, dep.ProjectName, dep.Collection, string(importsJSON), string(exportsJSON)).
		Options("OR REPLACE").
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("store: upsert dependency %s: %w", dep.FilePath, err)
	}
	return nil
}

func (s *sqliteStore) Dependencies(ctx context.Context, projectName string) ([]types.DependencyRecord, error) {
	rows, err := sq.Select("file_path", "project_name", "collection", "imports_json", "exports_json").
		From("dependencies").Where(sq.Eq{"project_name": projectName}).
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: query dependencies: %w", err)
	}
	defer rows.Close()

	var out []types.DependencyRecord
	for rows.Next() {
		var d types.DependencyRecord
		var importsJSON, exportsJSON string
		if err := rows.Scan(&d.FilePath, &d.ProjectName, &d.Collection, &importsJSON, &exportsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(importsJSON), &d.Imports); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(exportsJSON), &d.Exports); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *sqliteStore) AddWatch(ctx context.Context, entry types.WatchListEntry) error {
	_, err := sq.Insert("watch_list").
		Columns("folder_path", "project_name", "collection").
		Values(entry.FolderPath, entry.ProjectName, entry.Collection).
		Options("OR REPLACE").
		RunWith(s.db).ExecContext(ctx)
	return err
}

func (s *sqliteStore) RemoveWatch(ctx context.Context, folderPath string) error {
	_, err := sq.Delete("watch_list").Where(sq.Eq{"folder_path": folderPath}).RunWith(s.db).ExecContext(ctx)
	return err
}

func (s *sqliteStore) ListWatches(ctx context.Context) ([]types.WatchListEntry, error) {
	rows, err := sq.Select("folder_path", "project_name", "collection").From("watch_list").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.WatchListEntry
	for rows.Next() {
		var e types.WatchListEntry
		if err := rows.Scan(&e.FolderPath, &e.ProjectName, &e.Collection); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Collections(ctx context.Context) (map[string][]string, error) {
	rows, err := sq.Select("DISTINCT collection", "project_name").From("code_search").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]string)
	for rows.Next() {
		var collection, project string
		if err := rows.Scan(&collection, &project); err != nil {
			return nil, err
		}
		out[collection] = append(out[collection], project)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
