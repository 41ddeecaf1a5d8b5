package cache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// CanonicalOverrides maps gene symbol -> canonical transcript ID (unversioned).
type CanonicalOverrides map[string]string

// transcriptColumns are header names recognised as the transcript column,
// in order of preference.
var transcriptColumns = []string{
	"enst_id",
	"mskcc_canonical_transcript",
	"genome_nexus_canonical_transcript",
	"transcript_id",
}

// LoadCanonicalOverrides loads canonical transcript overrides from a TSV file
// with a header line. The gene symbol is the first column; the transcript
// column is found by header name, falling back to the second column.
func LoadCanonicalOverrides(path string) (CanonicalOverrides, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open canonical overrides file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return parseCanonicalOverrides(r)
}

func parseCanonicalOverrides(reader io.Reader) (CanonicalOverrides, error) {
	overrides := make(CanonicalOverrides)
	scanner := bufio.NewScanner(reader)

	if !scanner.Scan() {
		return overrides, scanner.Err()
	}
	col := transcriptColumn(strings.Split(scanner.Text(), "\t"))

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) <= col {
			continue
		}

		gene := fields[0]
		transcript := strings.TrimSpace(fields[col])
		if gene == "" || transcript == "" || transcript == "nan" {
			continue
		}
		overrides[gene] = stripVersion(transcript)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan canonical overrides: %w", err)
	}
	return overrides, nil
}

func transcriptColumn(header []string) int {
	for _, name := range transcriptColumns {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return 1
}

// ApplyCanonicalOverrides marks the listed transcript of each overridden gene
// as canonical and clears the flag on the gene's other transcripts. Genes
// without an override keep the flags from the annotation file. It returns
// the number of transcripts marked canonical.
func (c *Cache) ApplyCanonicalOverrides(overrides CanonicalOverrides) int {
	marked := 0
	for _, transcripts := range c.transcripts {
		for _, t := range transcripts {
			id, ok := overrides[t.Gene()]
			if !ok {
				continue
			}
			t.IsCanonical = stripVersion(t.ID) == id
			if t.IsCanonical {
				marked++
			}
		}
	}
	return marked
}
