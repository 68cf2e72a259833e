package service

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// NewSQLiteSource opens the SQLite database at path read-only.
func NewSQLiteSource(path, query string) (*SQLSource, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &SQLSource{db: db, driver: "sqlite", query: query}, nil
}
