package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// migrateCategoryColumn implements spec.md §4.5's one-shot backfill: if an
// existing code_search table predates the category column, add it and
// default every row's value from its file_path extension, matching the
// teacher's "schema evolution via ALTER + backfill" approach in
// internal/storage/schema.go's GetSchemaVersion/UpdateSchemaVersion pair.
func migrateCategoryColumn(db *sql.DB) error {
	hasCategory, err := columnExists(db, "code_search", "category")
	if err != nil {
		return fmt.Errorf("store: inspect code_search columns: %w", err)
	}
	if hasCategory {
		return nil
	}

	if _, err := db.Exec("ALTER TABLE code_search ADD COLUMN category TEXT"); err != nil {
		return fmt.Errorf("%w: add category column: %v", ErrUnknownField, err)
	}

	rows, err := db.Query("SELECT id, file_path FROM code_search")
	if err != nil {
		return fmt.Errorf("store: read rows for backfill: %w", err)
	}
	type idPath struct{ id, path string }
	var pending []idPath
	for rows.Next() {
		var p idPath
		if err := rows.Scan(&p.id, &p.path); err != nil {
			rows.Close()
			return err
		}
		pending = append(pending, p)
	}
	rows.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare("UPDATE code_search SET category = ? WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range pending {
		category := "code"
		if strings.HasSuffix(strings.ToLower(p.path), ".md") {
			category = "documentation"
		}
		if _, err := stmt.Exec(category, p.id); err != nil {
			return fmt.Errorf("store: backfill category for %s: %w", p.path, err)
		}
	}
	return tx.Commit()
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
