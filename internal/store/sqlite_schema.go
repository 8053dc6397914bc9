package store

import (
	"database/sql"
	"fmt"

	sqlitevec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

// InitVectorExtension registers the sqlite-vec extension with every future
// connection. Must be called once per process before opening any store DB,
// grounded on internal/storage/vector_index.go's InitVectorExtension.
func InitVectorExtension() {
	sqlitevec.Auto()
}

const createCodeSearchTable = `
CREATE TABLE IF NOT EXISTS code_search (
	id            TEXT PRIMARY KEY,
	collection    TEXT NOT NULL,
	project_name  TEXT NOT NULL,
	name          TEXT NOT NULL,
	type          TEXT NOT NULL,
	category      TEXT NOT NULL,
	file_path     TEXT NOT NULL,
	start_line    INTEGER NOT NULL,
	end_line      INTEGER NOT NULL,
	comments      TEXT,
	content       TEXT,
	summary       TEXT,
	last_commit_author  TEXT,
	last_commit_email   TEXT,
	last_commit_date    TEXT,
	last_commit_hash    TEXT,
	last_commit_message TEXT,
	commit_count_6m     INTEGER,
	churn_level         TEXT
)`

const createCodeSearchFTSTable = `
CREATE VIRTUAL TABLE IF NOT EXISTS code_search_fts USING fts5(
	id UNINDEXED,
	content,
	tokenize = "unicode61 separators '._'"
)`

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS metadata (
	model_name TEXT NOT NULL
)`

const createDependenciesTable = `
CREATE TABLE IF NOT EXISTS dependencies (
	file_path    TEXT PRIMARY KEY,
	project_name TEXT NOT NULL,
	collection   TEXT NOT NULL,
	imports_json TEXT NOT NULL,
	exports_json TEXT NOT NULL
)`

const createWatchListTable = `
CREATE TABLE IF NOT EXISTS watch_list (
	folder_path  TEXT PRIMARY KEY,
	project_name TEXT NOT NULL,
	collection   TEXT NOT NULL
)`

const createChatMessagesTable = `
CREATE TABLE IF NOT EXISTS chat_messages (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	role      TEXT NOT NULL,
	content   TEXT NOT NULL,
	timestamp TEXT NOT NULL
)`

// createVectorIndexTable creates the vec0 virtual table sized to dimensions,
// grounded on internal/storage/vector_index.go's CreateVectorIndex.
func createVectorIndexTable(db *sql.DB, dimensions int) error {
	ddl := fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS code_search_vec USING vec0(
		id TEXT PRIMARY KEY,
		embedding float[%d]
	)`, dimensions)
	_, err := db.Exec(ddl)
	return err
}

// createSchema creates every base table, the FTS5 table included, in one
// transaction, matching internal/storage/schema.go's CreateSchema shape,
// then creates the vec0 virtual table after that transaction commits.
func createSchema(db *sql.DB, dimensions int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin schema tx: %w", err)
	}
	defer tx.Rollback()

	for _, ddl := range []string{
		createCodeSearchTable,
		createCodeSearchFTSTable,
		createMetadataTable,
		createDependenciesTable,
		createWatchListTable,
		createChatMessagesTable,
	} {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("store: create table: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit schema tx: %w", err)
	}

	if err := createVectorIndexTable(db, dimensions); err != nil {
		return fmt.Errorf("store: create vector index: %w", err)
	}
	return nil
}
