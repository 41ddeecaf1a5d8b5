// Package duckdb stores detected splice junctions in DuckDB so they can be
// queried by region after a run.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding junction results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS junctions (
		chrom VARCHAR,
		intron_start BIGINT,
		intron_end BIGINT,
		strand VARCHAR,
		support BIGINT,
		unique_reads BIGINT,
		multi_reads BIGINT,
		unique_edit BIGINT,
		multi_edit BIGINT,
		left_anchor BIGINT,
		right_anchor BIGINT,
		opposite_anchor BIGINT,
		qualified BOOLEAN,
		annotated BOOLEAN,
		known BOOLEAN,
		genes VARCHAR,
		PRIMARY KEY (chrom, intron_start, intron_end)
	)`,
		`CREATE TABLE IF NOT EXISTS runs (
		input VARCHAR,
		input_size BIGINT,
		input_modtime TIMESTAMP,
		records BIGINT,
		spliced BIGINT,
		junctions BIGINT,
		emitted BIGINT,
		created_at TIMESTAMP
	)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
