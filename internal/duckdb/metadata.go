package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/inodb/vibe-junc/internal/junction"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
// Standard input ("-") has no size or modification time.
func StatFile(path string) (FileFingerprint, error) {
	if path == "-" {
		return FileFingerprint{Path: path}, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Run records which input produced the stored junctions.
type Run struct {
	Input     FileFingerprint
	Records   int
	Spliced   int
	Junctions int
	Emitted   int
	CreatedAt time.Time
}

// RecordRun stores the provenance of a run.
func (s *Store) RecordRun(input FileFingerprint, stats junction.Stats) error {
	_, err := s.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		input.Path, input.Size, input.ModTime.UTC(),
		int64(stats.Records), int64(stats.Spliced), int64(stats.Junctions), int64(stats.Emitted),
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// LastRun returns the most recently recorded run, or nil if none.
func (s *Store) LastRun() (*Run, error) {
	var r Run
	err := s.db.QueryRow(`SELECT input, input_size, input_modtime, records, spliced, junctions, emitted, created_at
		FROM runs ORDER BY created_at DESC LIMIT 1`).Scan(
		&r.Input.Path, &r.Input.Size, &r.Input.ModTime,
		&r.Records, &r.Spliced, &r.Junctions, &r.Emitted, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}
	return &r, nil
}

// ClearRuns removes all recorded runs.
func (s *Store) ClearRuns() error {
	_, err := s.db.Exec("DELETE FROM runs")
	return err
}
