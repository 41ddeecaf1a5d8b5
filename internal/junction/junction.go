// Package junction reconstructs splice junctions from a coordinate-sorted
// stream of spliced alignments.
//
// Junctions are held in a sorted Window while they can still receive
// evidence. Each junction owns a ReadLedger that deduplicates the reads
// supporting it. Once the stream has moved past a junction's end it is
// summarized and handed to a Sink.
package junction

// AnchorPolicy selects how junction anchors are aggregated over reads.
type AnchorPolicy int

const (
	// AnchorEither takes the longest left and right anchors independently.
	AnchorEither AnchorPolicy = iota
	// AnchorBoth takes anchors only from reads with both anchors longer
	// than the flank.
	AnchorBoth
)

// Junction is an open splice junction. Start and End are the first and last
// skipped reference positions (1-based).
type Junction struct {
	Start  int
	End    int
	Strand Strand
	Reads  *ReadLedger
}

func newJunction(start, end int, strand Strand) *Junction {
	return &Junction{
		Start:  start,
		End:    end,
		Strand: strand,
		Reads:  NewReadLedger(),
	}
}

// Less orders junctions by start, then end.
func (j *Junction) Less(start, end int) bool {
	return j.Start < start || (j.Start == start && j.End < end)
}

// Summary is the aggregated evidence for a closed junction.
type Summary struct {
	Chrom  string
	Start  int // First skipped base (1-based)
	End    int // Last skipped base (1-based)
	Strand Strand

	// Support is Unique+Multi, negated for unqualified junctions emitted
	// in print-all mode.
	Support            int
	Unique             int
	Multi              int
	UniqueEditDistance int
	MultiEditDistance  int

	LeftAnchor     int
	RightAnchor    int
	OppositeAnchor int // Longest shorter-side anchor over all reads
	Qualified      bool

	Reads []string // Valid supporting reads, when requested

	// Set by annotation.
	Annotated bool
	Known     bool
	Genes     []string
}

// DonorEnd returns the last exonic base before the junction (1-based),
// which is also the 0-based half-open end of the upstream exon.
func (s *Summary) DonorEnd() int {
	return s.Start - 1
}

// AcceptorStart returns the first exonic base after the junction (1-based).
func (s *Summary) AcceptorStart() int {
	return s.End + 1
}

// Summarize aggregates the valid reads in the junction's ledger.
// A junction qualifies when both anchors exceed flank and it has support.
func (j *Junction) Summarize(flank int, policy AnchorPolicy) Summary {
	s := Summary{Start: j.Start, End: j.End, Strand: j.Strand}
	j.Reads.Do(func(e *ReadEntry) {
		if !e.Valid {
			return
		}
		if e.Unique() {
			s.Unique++
			s.UniqueEditDistance += e.EditDistance
		} else {
			s.Multi++
			s.MultiEditDistance += e.EditDistance
		}

		l, r := e.Left, e.Right
		switch policy {
		case AnchorBoth:
			if l > flank && r > flank {
				s.LeftAnchor, s.RightAnchor = l, r
			}
		default:
			s.LeftAnchor = max(s.LeftAnchor, l)
			s.RightAnchor = max(s.RightAnchor, r)
		}
		s.OppositeAnchor = max(s.OppositeAnchor, min(l, r))
	})
	s.Support = s.Unique + s.Multi
	s.Qualified = s.LeftAnchor > flank && s.RightAnchor > flank && s.Support > 0
	return s
}

// ValidReads returns the names of the reads supporting the junction.
func (j *Junction) ValidReads() []string {
	var names []string
	j.Reads.Do(func(e *ReadEntry) {
		if e.Valid {
			names = append(names, e.Name)
		}
	})
	return names
}
