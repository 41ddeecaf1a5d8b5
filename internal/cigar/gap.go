package cigar

import "github.com/biogo/hts/sam"

// Gap is a reference skip together with the anchors flanking it.
// Start and End are the first and last skipped reference positions.
type Gap struct {
	Start int
	End   int
	Left  int
	Right int
}

// Gaps returns the skips of an alignment starting at reference position pos.
//
// An anchor is the length of the match run next to the skip, looking past
// insertions and deletions. A run of at most flank bases that is itself
// bounded by another skip is reported as flank+1: the read already spans a
// second junction there, so the short run is not evidence of a poor anchor.
func Gaps(c sam.Cigar, pos, flank int) []Gap {
	var gaps []Gap
	ref := pos
	for i, co := range c {
		if co.Type() == sam.CigarSkipped {
			gaps = append(gaps, Gap{
				Start: ref,
				End:   ref + co.Len() - 1,
				Left:  leftAnchor(c, i, flank),
				Right: rightAnchor(c, i, flank),
			})
		}
		ref += refLen(co)
	}
	return gaps
}

func leftAnchor(c sam.Cigar, i, flank int) int {
	j := i
	for j > 0 && isIndel(c[j-1].Type()) {
		j--
	}
	if j == 0 || !isMatch(c[j-1].Type()) {
		return 0
	}
	n := c[j-1].Len()
	if n <= flank && j >= 2 && c[j-2].Type() == sam.CigarSkipped {
		n = flank + 1
	}
	return n
}

func rightAnchor(c sam.Cigar, i, flank int) int {
	j := i
	for j+1 < len(c) && isIndel(c[j+1].Type()) {
		j++
	}
	if j+1 >= len(c) || !isMatch(c[j+1].Type()) {
		return 0
	}
	n := c[j+1].Len()
	if n <= flank && j+2 < len(c) && c[j+2].Type() == sam.CigarSkipped {
		n = flank + 1
	}
	return n
}

// SkipContains reports whether reference position x falls inside one of the
// skips of an alignment starting at pos.
func SkipContains(c sam.Cigar, pos, x int) bool {
	ref := pos
	for _, co := range c {
		if co.Type() == sam.CigarSkipped && x >= ref && x <= ref+co.Len()-1 {
			return true
		}
		ref += refLen(co)
	}
	return false
}

// LowComplexity reports whether any exonic block of the read is dominated by
// a single base. Bases consumed from seq are tallied per block, a block
// ending at every skip and at the end of the alignment; a block is low
// complexity when its most frequent base exceeds frac of its bases.
func LowComplexity(c sam.Cigar, seq []byte, frac float64) bool {
	var counts [5]int
	low := false
	check := func() {
		top, sum := 0, 0
		for _, n := range counts {
			if n > top {
				top = n
			}
			sum += n
		}
		if float64(top) > frac*float64(sum) {
			low = true
		}
		counts = [5]int{}
	}

	q := 0
	for _, co := range c {
		switch t := co.Type(); {
		case t == sam.CigarSkipped:
			check()
		case inSeq(t):
			for k := 0; k < co.Len() && q < len(seq); k++ {
				counts[baseIndex(seq[q])]++
				q++
			}
		}
	}
	check()
	return low
}

func baseIndex(b byte) int {
	switch b {
	case 'A', 'a':
		return 0
	case 'C', 'c':
		return 1
	case 'G', 'g':
		return 2
	case 'T', 't':
		return 3
	}
	return 4
}
