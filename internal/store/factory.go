package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// New opens the Store named by provider ("sqlite" or "chromem"), grounded on
// internal/embed/factory.go's name-switch shape. dbPath is ignored for the
// chromem backend, which is in-process and in-memory.
func New(provider, dbPath string, dimensions int) (Store, error) {
	switch provider {
	case "", "sqlite":
		db, err := sql.Open("sqlite3", dbPath)
		if err != nil {
			return nil, fmt.Errorf("store: open sqlite db %q: %w", dbPath, err)
		}
		s, err := NewSQLite(db, dimensions)
		if err != nil {
			db.Close()
			return nil, err
		}
		return s, nil
	case "chromem":
		return NewChromem(dimensions)
	default:
		return nil, fmt.Errorf("store: unknown provider %q", provider)
	}
}
