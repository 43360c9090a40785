package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// connectionPragmas run once on open. busy_timeout lets the health monitor
// and request handlers write provider status without SQLITE_BUSY errors.
var connectionPragmas = []struct {
	statement string
	label     string
}{
	{`PRAGMA journal_mode = WAL;`, "set sqlite WAL"},
	{`PRAGMA foreign_keys = ON;`, "enable sqlite foreign keys"},
	{`PRAGMA busy_timeout = 5000;`, "set sqlite busy timeout"},
}

func Open(sqlitePath string) (*sql.DB, error) {
	if dir := filepath.Dir(sqlitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range connectionPragmas {
		if _, err := db.Exec(pragma.statement); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma.label, err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}
