// Package cache holds a transcript model used to annotate splice junctions.
package cache

import (
	"sort"
	"strings"
)

// Cache indexes transcripts by chromosome for overlap and intron queries.
// Call Build after the last AddTranscript and before querying.
type Cache struct {
	transcripts map[string][]*Transcript
	trees       map[string]*IntervalTree
	introns     map[string]map[Intron][]*Transcript
}

// New creates a new empty cache.
func New() *Cache {
	return &Cache{
		transcripts: make(map[string][]*Transcript),
		trees:       make(map[string]*IntervalTree),
		introns:     make(map[string]map[Intron][]*Transcript),
	}
}

// AddTranscript adds a transcript to the cache.
func (c *Cache) AddTranscript(t *Transcript) {
	chrom := normalizeChrom(t.Chrom)
	c.transcripts[chrom] = append(c.transcripts[chrom], t)
}

// Build indexes the transcripts added so far.
func (c *Cache) Build() {
	for chrom, transcripts := range c.transcripts {
		c.trees[chrom] = BuildIntervalTree(transcripts)

		byIntron := make(map[Intron][]*Transcript)
		for _, t := range transcripts {
			for _, in := range t.Introns() {
				byIntron[in] = append(byIntron[in], t)
			}
		}
		c.introns[chrom] = byIntron
	}
}

// FindTranscripts returns all transcripts that overlap a given genomic position.
func (c *Cache) FindTranscripts(chrom string, pos int64) []*Transcript {
	return c.FindOverlapping(chrom, pos, pos)
}

// FindOverlapping returns all transcripts sharing a base with [start, end].
func (c *Cache) FindOverlapping(chrom string, start, end int64) []*Transcript {
	tree, ok := c.trees[normalizeChrom(chrom)]
	if !ok {
		return nil
	}
	return tree.FindRange(start, end)
}

// TranscriptsWithIntron returns the transcripts having exactly the intron
// [start, end] between two consecutive exons.
func (c *Cache) TranscriptsWithIntron(chrom string, start, end int64) []*Transcript {
	return c.introns[normalizeChrom(chrom)][Intron{Start: start, End: end}]
}

// IsKnownIntron reports whether any transcript has the intron [start, end].
func (c *Cache) IsKnownIntron(chrom string, start, end int64) bool {
	return len(c.TranscriptsWithIntron(chrom, start, end)) > 0
}

// GenesOverlapping returns the sorted, distinct gene names of transcripts
// overlapping [start, end].
func (c *Cache) GenesOverlapping(chrom string, start, end int64) []string {
	seen := make(map[string]bool)
	var genes []string
	for _, t := range c.FindOverlapping(chrom, start, end) {
		g := t.Gene()
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		genes = append(genes, g)
	}
	sort.Strings(genes)
	return genes
}

// GetTranscript returns a specific transcript by ID, or nil if not found.
func (c *Cache) GetTranscript(id string) *Transcript {
	for _, transcripts := range c.transcripts {
		for _, t := range transcripts {
			if t.ID == id {
				return t
			}
		}
	}
	return nil
}

// TranscriptCount returns the total number of transcripts in the cache.
func (c *Cache) TranscriptCount() int {
	count := 0
	for _, transcripts := range c.transcripts {
		count += len(transcripts)
	}
	return count
}

// IntronCount returns the number of distinct introns indexed by Build.
func (c *Cache) IntronCount() int {
	count := 0
	for _, byIntron := range c.introns {
		count += len(byIntron)
	}
	return count
}

// TranscriptsOnChrom returns the transcripts added for a chromosome.
func (c *Cache) TranscriptsOnChrom(chrom string) []*Transcript {
	return c.transcripts[normalizeChrom(chrom)]
}

// Chromosomes returns a sorted list of chromosomes in the cache.
func (c *Cache) Chromosomes() []string {
	chroms := make([]string, 0, len(c.transcripts))
	for chrom := range c.transcripts {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// normalizeChrom removes a "chr" prefix so that GENCODE ("chr1") and
// Ensembl ("1") naming compare equal.
func normalizeChrom(chrom string) string {
	return strings.TrimPrefix(chrom, "chr")
}
