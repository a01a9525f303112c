package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// OpenLocalCache membuka file SQLite untuk snapshot cache lokal.
// File ini hanya fallback, bukan sumber kebenaran.
func OpenLocalCache(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite: satu writer
	conn.SetMaxOpenConns(1)

	if err := migrateLocalCache(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return conn, nil
}

func migrateLocalCache(conn *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS local_snapshots (
		snapshot_key TEXT PRIMARY KEY,
		snapshot_value TEXT NOT NULL,
		snapshot_updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	_, err := conn.Exec(schema)
	return err
}
