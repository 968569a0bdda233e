package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const MemoryPath = ":memory:"

type DB struct {
	*sql.DB
}

// Open connects to the SQLite database at path, creating its directory when
// needed. The pool holds a single connection: SQLite has one writer, and an
// in-memory database lives only as long as its connection.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}

	pragmas := []string{
		"busy_timeout(5000)",
		"synchronous(NORMAL)",
		"foreign_keys(1)",
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		pragmas = append(pragmas, "journal_mode(WAL)")
	}

	params := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		params = append(params, "_pragma="+p)
	}
	dsn := path + "?" + strings.Join(params, "&")

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{db}, nil
}

// OpenAndMigrate opens the database and brings its schema up to date.
func OpenAndMigrate(path string) (*DB, uint, error) {
	db, err := Open(path)
	if err != nil {
		return nil, 0, err
	}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, 0, err
	}
	if dirty {
		db.Close()
		return nil, version, fmt.Errorf("database schema is dirty at version %d", version)
	}

	return db, version, nil
}
