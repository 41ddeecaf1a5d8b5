package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-junc/internal/junction"
)

// junctionKey is the composite key for deduplicating junctions before writing.
type junctionKey struct {
	chrom      string
	start, end int
}

const junctionColumns = `chrom, intron_start, intron_end, strand,
		support, unique_reads, multi_reads, unique_edit, multi_edit,
		left_anchor, right_anchor, opposite_anchor,
		qualified, annotated, known, genes`

// WriteJunctions batch-inserts junction summaries using the Appender API.
// Duplicate (chrom, start, end) entries in the batch are written once.
func (s *Store) WriteJunctions(summaries []junction.Summary) error {
	if len(summaries) == 0 {
		return nil
	}

	seen := make(map[junctionKey]bool, len(summaries))
	deduped := make([]*junction.Summary, 0, len(summaries))
	for i := range summaries {
		js := &summaries[i]
		k := junctionKey{js.Chrom, js.Start, js.End}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, js)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "junctions")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, js := range deduped {
		if err := appender.AppendRow(
			js.Chrom, int64(js.Start), int64(js.End), js.Strand.String(),
			int64(js.Support), int64(js.Unique), int64(js.Multi),
			int64(js.UniqueEditDistance), int64(js.MultiEditDistance),
			int64(js.LeftAnchor), int64(js.RightAnchor), int64(js.OppositeAnchor),
			js.Qualified, js.Annotated, js.Known, strings.Join(js.Genes, ","),
		); err != nil {
			return fmt.Errorf("append junction %s:%d-%d: %w", js.Chrom, js.Start, js.End, err)
		}
	}

	return appender.Flush()
}

// ClearJunctions removes all stored junctions.
func (s *Store) ClearJunctions() error {
	_, err := s.db.Exec("DELETE FROM junctions")
	return err
}

// JunctionCount returns the number of stored junctions.
func (s *Store) JunctionCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT count(*) FROM junctions").Scan(&n); err != nil {
		return 0, fmt.Errorf("count junctions: %w", err)
	}
	return n, nil
}

// LookupJunction returns the stored junction whose intron is exactly
// [start, end] (first and last skipped base), or nil if none.
func (s *Store) LookupJunction(chrom string, start, end int) (*junction.Summary, error) {
	rows, err := s.db.Query(`SELECT `+junctionColumns+`
		FROM junctions
		WHERE chrom=? AND intron_start=? AND intron_end=?`,
		chrom, int64(start), int64(end))
	if err != nil {
		return nil, fmt.Errorf("query junction: %w", err)
	}
	defer rows.Close()

	results, err := scanJunctions(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// JunctionsInRegion returns the stored junctions on chrom whose intron
// overlaps [from, to], ordered by position. A zero to means the whole
// chromosome from from onwards.
func (s *Store) JunctionsInRegion(chrom string, from, to int) ([]junction.Summary, error) {
	query := `SELECT ` + junctionColumns + `
		FROM junctions
		WHERE chrom=? AND intron_end>=?`
	args := []any{chrom, int64(from)}
	if to > 0 {
		query += ` AND intron_start<=?`
		args = append(args, int64(to))
	}
	query += ` ORDER BY intron_start, intron_end`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query region: %w", err)
	}
	defer rows.Close()

	return scanJunctions(rows)
}

// scanJunctions scans rows into junction summaries.
func scanJunctions(rows *sql.Rows) ([]junction.Summary, error) {
	var results []junction.Summary
	for rows.Next() {
		var js junction.Summary
		var strand, genes string
		if err := rows.Scan(
			&js.Chrom, &js.Start, &js.End, &strand,
			&js.Support, &js.Unique, &js.Multi, &js.UniqueEditDistance, &js.MultiEditDistance,
			&js.LeftAnchor, &js.RightAnchor, &js.OppositeAnchor,
			&js.Qualified, &js.Annotated, &js.Known, &genes,
		); err != nil {
			return nil, fmt.Errorf("scan junction: %w", err)
		}
		js.Strand = junction.StrandUnknown
		if strand != "" {
			js.Strand = junction.Strand(strand[0])
		}
		if genes != "" {
			js.Genes = strings.Split(genes, ",")
		}
		results = append(results, js)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate junctions: %w", err)
	}
	return results, nil
}
