// Package hashstore maps absolute file paths to the content fingerprint they
// were last indexed at, so the pipeline can skip files that have not
// changed since the previous run.
package hashstore

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/sevenseconds/vibescout/internal/types"
)

// Store is the hash-store contract: get/putBatch/delete/keys, per spec.
type Store interface {
	Get(filePath string) (string, bool, error)
	PutBatch(fingerprints []types.FileFingerprint) error
	Delete(filePath string) error
	Keys() ([]string, error)
}

// sqliteStore backs the hash store with a dedicated "hashes" side table,
// grounded on internal/storage/file_writer.go's batch-write-in-one-
// transaction shape. With the sqlite vector backend, the vector store and
// hash store share the same *sql.DB connection (the chromem backend gives
// the hash store its own sqlite file); schema creation is idempotent via
// CREATE TABLE IF NOT EXISTS so either side may call New first.
type sqliteStore struct {
	db *sql.DB
}

const createHashesTable = `
CREATE TABLE IF NOT EXISTS hashes (
	file_path TEXT PRIMARY KEY,
	hash      TEXT NOT NULL
)`

// New creates the hashes table if absent and returns a Store backed by db.
func New(db *sql.DB) (Store, error) {
	if _, err := db.Exec(createHashesTable); err != nil {
		return nil, fmt.Errorf("hashstore: create table: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Get(filePath string) (string, bool, error) {
	var hash string
	err := sq.Select("hash").
		From("hashes").
		Where(sq.Eq{"file_path": filePath}).
		RunWith(s.db).
		QueryRow().
		Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("hashstore: get %s: %w", filePath, err)
	}
	return hash, true, nil
}

// PutBatch upserts every fingerprint in a single transaction. The pipeline
// calls it once per successfully processed file, with that file's single
// fingerprint; a run's fingerprints are not collected and flushed together
// at the end of the run.
func (s *sqliteStore) PutBatch(fingerprints []types.FileFingerprint) error {
	if len(fingerprints) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("hashstore: begin: %w", err)
	}
	defer tx.Rollback()

	sqlStr, _, err := sq.Insert("hashes").
		Columns("file_path", "hash").
		Values("", "").
		Options("OR REPLACE").
		ToSql()
	if err != nil {
		return fmt.Errorf("hashstore: build insert: %w", err)
	}

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		return fmt.Errorf("hashstore: prepare: %w", err)
	}
	defer stmt.Close()

	for _, fp := range fingerprints {
		if _, err := stmt.Exec(fp.FilePath, fp.Hash); err != nil {
			return fmt.Errorf("hashstore: upsert %s: %w", fp.FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("hashstore: commit: %w", err)
	}
	return nil
}

// Delete removes a fingerprint. Per spec, deletion of a file's VectorRecord
// must cascade to its fingerprint; callers invoke this alongside the
// vector store's delete, not automatically, since the two stores are
// independent tables even when they share a connection.
func (s *sqliteStore) Delete(filePath string) error {
	_, err := sq.Delete("hashes").
		Where(sq.Eq{"file_path": filePath}).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("hashstore: delete %s: %w", filePath, err)
	}
	return nil
}

// Keys returns every file path currently fingerprinted, used by the
// pipeline to compute the prune set (fingerprinted files no longer present
// on disk).
func (s *sqliteStore) Keys() ([]string, error) {
	rows, err := sq.Select("file_path").
		From("hashes").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("hashstore: keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("hashstore: scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
