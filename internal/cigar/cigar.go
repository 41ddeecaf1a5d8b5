// Package cigar walks alignment CIGARs for splice junction detection.
package cigar

import (
	"errors"
	"fmt"

	"github.com/biogo/hts/sam"
)

// ErrInvalidOp reports a CIGAR operation that cannot be placed on the
// reference, such as B.
var ErrInvalidOp = errors.New("invalid cigar operation")

// Validate checks that every operation is one of M, I, D, N, S, H, P, = or X.
func Validate(c sam.Cigar) error {
	for i, co := range c {
		if co.Type() > sam.CigarMismatch {
			return fmt.Errorf("cigar %v: operation %d (%v): %w", c, i+1, co, ErrInvalidOp)
		}
	}
	return nil
}

// HasSkip reports whether the CIGAR contains a reference skip.
func HasSkip(c sam.Cigar) bool {
	for _, co := range c {
		if co.Type() == sam.CigarSkipped {
			return true
		}
	}
	return false
}

// isMatch reports whether the op is an aligned base run (M, = or X).
func isMatch(t sam.CigarOpType) bool {
	return t == sam.CigarMatch || t == sam.CigarEqual || t == sam.CigarMismatch
}

func isIndel(t sam.CigarOpType) bool {
	return t == sam.CigarInsertion || t == sam.CigarDeletion
}

// inSeq reports whether the op's bases are present in SEQ.
func inSeq(t sam.CigarOpType) bool {
	return isMatch(t) || t == sam.CigarInsertion || t == sam.CigarSoftClipped
}

// refLen returns how far the op advances the reference position.
func refLen(co sam.CigarOp) int {
	return co.Len() * co.Type().Consumes().Reference
}
