package junction

import (
	"github.com/biogo/hts/sam"

	"github.com/inodb/vibe-junc/internal/alignment"
	"github.com/inodb/vibe-junc/internal/cigar"
)

// lowComplexityFraction is the share of a single base above which an
// exonic block of an unstranded read is considered low complexity.
const lowComplexityFraction = 0.8

// Evidence is the per-alignment state carried through classification and
// window resolution. Valid may be cleared by any gap of the alignment.
type Evidence struct {
	Name         string
	Strand       Strand
	NH           int
	EditDistance int
	Flags        sam.Flags
	Valid        bool
}

// classify builds the evidence for one spliced alignment and applies the
// sequence and mate-pair filters.
func (f *Finder) classify(rec *alignment.Record, name string, c sam.Cigar) *Evidence {
	ev := &Evidence{
		Name:         name,
		Strand:       ResolveStrand(rec.StrandHint, f.opts.Library, rec.Flags),
		NH:           rec.NH,
		EditDistance: rec.EditDistance,
		Flags:        rec.Flags,
		Valid:        true,
	}

	if ev.Strand == StrandUnknown {
		if rec.StrandHint != 0 && rec.HasNonCanonical {
			if rec.NonCanonical&f.opts.FilterBits != 0 {
				ev.Valid = false
			}
		} else if cigar.LowComplexity(c, rec.Seq, lowComplexityFraction) {
			ev.Valid = false
		}
	}

	if rec.MateSameRef {
		// A mate inside one of our introns means the splice is wrong.
		if cigar.SkipContains(c, rec.Pos, rec.MatePos) {
			f.contradictions.Add(name, rec.MatePos)
			ev.Valid = false
		}
		if f.contradictedByMate(name, rec.Pos, rec.MatePos) {
			ev.Valid = false
		}
	}
	return ev
}

// contradictedByMate reports whether this alignment sits inside an open
// junction that starts after its mate, and the mate already recorded this
// position as lying inside one of its own introns.
func (f *Finder) contradictedByMate(name string, pos, matePos int) bool {
	for _, j := range f.window.Junctions() {
		if matePos < j.Start && j.Start <= pos && pos <= j.End {
			if f.contradictions.Contains(name, pos) {
				return true
			}
		}
	}
	return false
}

func (f *Finder) strong(left, right int) bool {
	return left > f.opts.Flank && right > f.opts.Flank
}

// conflict settles a read that claims two junctions sharing one boundary.
// Only one of the two can be right; the claim with the weaker anchors is
// invalidated, and when neither side is clearly stronger the junction that
// is contained in the other loses.
func (f *Finder) conflict(j *Junction, g cigar.Gap, ev *Evidence) {
	nested := (j.Start == g.Start && j.End < g.End) || (j.Start > g.Start && j.End == g.End)
	spanning := (j.Start == g.Start && j.End > g.End) || (j.Start < g.Start && j.End == g.End)
	if !nested && !spanning {
		return
	}

	e := j.Reads.Get(ev.Name)
	if e == nil {
		return
	}
	incoming := f.strong(g.Left, g.Right)
	stored := f.strong(e.Left, e.Right)

	if nested {
		if !stored && incoming {
			e.Valid = false
		} else {
			ev.Valid = false
		}
		return
	}
	if !incoming && stored {
		ev.Valid = false
	} else {
		e.Valid = false
	}
}
