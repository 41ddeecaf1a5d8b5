// Package alignment reads SAM/BAM alignment records for junction detection.
package alignment

import (
	"github.com/biogo/hts/sam"
)

// Record holds the fields of an alignment that junction detection uses.
type Record struct {
	Name            string    // Query name
	Ref             string    // Reference name, empty if unmapped
	Pos             int       // Leftmost position (1-based)
	Cigar           sam.Cigar // CIGAR operations
	MateSameRef     bool      // Mate is mapped to the same reference
	MatePos         int       // Mate leftmost position (1-based)
	NH              int       // Number of reported alignments (NH tag, default 1)
	EditDistance    int       // NM tag, else nM, default 0
	StrandHint      byte      // XS tag ('+', '-' or '?'), 0 if absent
	NonCanonical    int       // YS tag value, read only with XS
	HasNonCanonical bool      // YS tag present alongside XS
	Seq             []byte    // Read bases
	Flags           sam.Flags // SAM flag word
}

var (
	tagNH = []byte("NH")
	tagNM = []byte("NM")
	tagnM = []byte("nM")
	tagXS = []byte("XS")
	tagYS = []byte("YS")
)

// FromSAM converts a biogo SAM record.
func FromSAM(r *sam.Record) *Record {
	rec := &Record{
		Name:  r.Name,
		Pos:   r.Pos + 1,
		Cigar: r.Cigar,
		NH:    1,
		Seq:   r.Seq.Expand(),
		Flags: r.Flags,
	}
	if r.Ref != nil {
		rec.Ref = r.Ref.Name()
		rec.MateSameRef = r.MateRef != nil && r.MateRef.ID() == r.Ref.ID()
	}
	rec.MatePos = r.MatePos + 1

	if v, ok := intTag(r, tagNH); ok {
		rec.NH = v
	}
	if v, ok := intTag(r, tagNM); ok {
		rec.EditDistance = v
	} else if v, ok := intTag(r, tagnM); ok {
		rec.EditDistance = v
	}
	// YS is only meaningful next to XS; aligners without XS use YS for the
	// mate's alignment score.
	if aux, ok := r.Tag(tagXS); ok {
		switch v := aux.Value().(type) {
		case byte:
			rec.StrandHint = v
		case string:
			if len(v) > 0 {
				rec.StrandHint = v[0]
			}
		}
		if v, ok := intTag(r, tagYS); ok {
			rec.NonCanonical = v
			rec.HasNonCanonical = true
		}
	}
	return rec
}

// intTag returns the value of an integer aux field.
func intTag(r *sam.Record, tag []byte) (int, bool) {
	aux, ok := r.Tag(tag)
	if !ok {
		return 0, false
	}
	switch v := aux.Value().(type) {
	case int8:
		return int(v), true
	case uint8:
		return int(v), true
	case int16:
		return int(v), true
	case uint16:
		return int(v), true
	case int32:
		return int(v), true
	case uint32:
		return int(v), true
	case int:
		return v, true
	case float32:
		return int(v), true
	}
	return 0, false
}

// IsMapped reports whether the record is placed on a reference.
func (r *Record) IsMapped() bool {
	return r.Ref != ""
}
