package cache

import "sort"

// Transcript represents a specific gene isoform.
type Transcript struct {
	ID          string // Transcript ID (e.g., ENST00000311936)
	GeneID      string // Parent gene ID
	GeneName    string // Parent gene symbol
	Chrom       string // Chromosome, without "chr" prefix
	Start       int64  // Transcript start (1-based)
	End         int64  // Transcript end (1-based, inclusive)
	Strand      int8   // +1 or -1
	Biotype     string // Transcript biotype
	IsCanonical bool   // Ensembl canonical flag
	Exons       []Exon // Exons in ascending genomic order
}

// Exon represents a single exon within a transcript.
type Exon struct {
	Number int   // Exon number (1-based, in transcript order)
	Start  int64 // Genomic start (1-based)
	End    int64 // Genomic end (1-based, inclusive)
}

// Intron is the reference span between two consecutive exons of a
// transcript. Start and End are the first and last intronic bases
// (1-based), the same convention as a junction's skipped region.
type Intron struct {
	Start int64
	End   int64
}

// Overlaps returns true if [start, end] shares at least one base with the transcript.
func (t *Transcript) Overlaps(start, end int64) bool {
	return start <= t.End && end >= t.Start
}

// Gene returns the gene symbol, or the gene ID when the symbol is missing.
func (t *Transcript) Gene() string {
	if t.GeneName != "" {
		return t.GeneName
	}
	return t.GeneID
}

// Introns returns the gaps between consecutive exons. Abutting or
// overlapping exons produce no intron.
func (t *Transcript) Introns() []Intron {
	if len(t.Exons) < 2 {
		return nil
	}
	exons := t.Exons
	if !sort.SliceIsSorted(exons, func(i, j int) bool { return exons[i].Start < exons[j].Start }) {
		exons = append([]Exon(nil), exons...)
		sort.Slice(exons, func(i, j int) bool { return exons[i].Start < exons[j].Start })
	}

	var introns []Intron
	for i := 1; i < len(exons); i++ {
		start, end := exons[i-1].End+1, exons[i].Start-1
		if start <= end {
			introns = append(introns, Intron{Start: start, End: end})
		}
	}
	return introns
}
