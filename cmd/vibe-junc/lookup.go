package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-junc/internal/duckdb"
	"github.com/inodb/vibe-junc/internal/output"
)

func (a *app) newLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup --db <file> <chrom[:from-to]>",
		Short: "Print stored junctions in a region",
		Long: `Print junctions stored by 'vibe-junc find --db' whose intron overlaps a
region. Coordinates are 1-based and inclusive; without a range the whole
chromosome is printed.`,
		Example: `  vibe-junc lookup --db junctions.duckdb chr12
  vibe-junc lookup --db junctions.duckdb chr12:25205246-25250929`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath == "" {
				dbPath = a.v.GetString("db")
			}
			if dbPath == "" {
				return &usageError{fmt.Errorf("--db is required")}
			}
			return a.runLookup(dbPath, args[0])
		},
	}
	cmd.Flags().String("db", "", "DuckDB database written by find --db")
	return cmd
}

func (a *app) runLookup(dbPath, region string) error {
	chrom, from, to, err := parseRegion(region)
	if err != nil {
		return &usageError{err}
	}

	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	junctions, err := store.JunctionsInRegion(chrom, from, to)
	if err != nil {
		return err
	}

	w := output.NewJunctionWriter(a.stdout)
	for i := range junctions {
		if err := w.WriteJunction(&junctions[i]); err != nil {
			return err
		}
	}
	return w.Flush()
}

// parseRegion parses "chrom" or "chrom:from-to". Thousands separators are allowed.
func parseRegion(s string) (chrom string, from, to int, err error) {
	chrom, rng, hasRange := strings.Cut(s, ":")
	if chrom == "" {
		return "", 0, 0, fmt.Errorf("invalid region %q: missing chromosome", s)
	}
	if !hasRange {
		return chrom, 0, 0, nil
	}

	fromStr, toStr, ok := strings.Cut(strings.ReplaceAll(rng, ",", ""), "-")
	if !ok {
		return "", 0, 0, fmt.Errorf("invalid region %q: want chrom:from-to", s)
	}
	from, err = strconv.Atoi(fromStr)
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid region start %q: %w", fromStr, err)
	}
	to, err = strconv.Atoi(toStr)
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid region end %q: %w", toStr, err)
	}
	if from < 1 || to < from {
		return "", 0, 0, fmt.Errorf("invalid region %q: want 1 <= from <= to", s)
	}
	return chrom, from, to, nil
}
