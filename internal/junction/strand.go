package junction

import (
	"fmt"
	"strings"

	"github.com/biogo/hts/sam"
)

// Strand is the transcription strand of a junction.
type Strand byte

// Strand values.
const (
	StrandUnknown Strand = '?'
	StrandForward Strand = '+'
	StrandReverse Strand = '-'
)

func (s Strand) String() string {
	return string(s)
}

// Library is the strandedness protocol of a sequencing library.
// The values are chosen so that the low bit is set for rf libraries.
type Library int

const (
	LibraryUnstranded Library = iota // un
	LibraryRF                        // fr-firststrand (dUTP)
	LibraryFR                        // fr-secondstrand
)

// ParseLibrary parses "un", "rf" or "fr". The empty string means unstranded.
func ParseLibrary(s string) (Library, error) {
	switch strings.ToLower(s) {
	case "", "un":
		return LibraryUnstranded, nil
	case "rf":
		return LibraryRF, nil
	case "fr":
		return LibraryFR, nil
	}
	return LibraryUnstranded, fmt.Errorf("unknown library type %q (want un, rf or fr)", s)
}

func (l Library) String() string {
	switch l {
	case LibraryRF:
		return "rf"
	case LibraryFR:
		return "fr"
	}
	return "un"
}

// ResolveStrand returns the strand of an alignment. An aligner hint (XS tag,
// 0 when absent) takes precedence; otherwise a stranded library derives it
// from the read orientation and mate number.
func ResolveStrand(hint byte, lib Library, flags sam.Flags) Strand {
	if hint != 0 {
		switch Strand(hint) {
		case StrandForward, StrandReverse:
			return Strand(hint)
		}
		return StrandUnknown
	}
	if lib == LibraryUnstranded {
		return StrandUnknown
	}

	flip := 0
	if flags&sam.Reverse != 0 {
		flip = 1
	}
	flip ^= int(lib) & 1

	// Mate 2 reads the opposite strand of mate 1.
	if flags&sam.Read2 != 0 {
		flip ^= 1
	}
	if flip != 0 {
		return StrandReverse
	}
	return StrandForward
}
