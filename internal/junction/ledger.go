package junction

import (
	"strings"

	"github.com/biogo/hts/sam"
	"github.com/biogo/store/llrb"
)

// ReadEntry is one read's evidence for a junction.
type ReadEntry struct {
	Name         string
	Left         int  // Left anchor length
	Right        int  // Right anchor length
	Valid        bool // Evidence has not been contradicted
	EditDistance int
	NH           int // Number of reported alignments of the read
	Count        int // Number of times the read was seen at this junction
	Flags        sam.Flags
}

// Compare orders entries by read name.
func (e *ReadEntry) Compare(c llrb.Comparable) int {
	return strings.Compare(e.Name, c.(*ReadEntry).Name)
}

// Unique reports whether the read has been seen at this junction at least
// as many times as it has alignments, so none of its placements disagree.
func (e *ReadEntry) Unique() bool {
	return e.Count >= e.NH
}

// ReadLedger deduplicates the reads supporting one junction.
type ReadLedger struct {
	tree llrb.Tree
}

// NewReadLedger returns an empty ledger.
func NewReadLedger() *ReadLedger {
	return &ReadLedger{}
}

// Observe records a read with the given anchors. A read already in the
// ledger only has its observation count incremented; Observe then
// returns true.
func (l *ReadLedger) Observe(ev *Evidence, left, right int) bool {
	if e := l.Get(ev.Name); e != nil {
		e.Count++
		return true
	}
	l.tree.Insert(&ReadEntry{
		Name:         ev.Name,
		Left:         left,
		Right:        right,
		Valid:        ev.Valid,
		EditDistance: ev.EditDistance,
		NH:           ev.NH,
		Count:        1,
		Flags:        ev.Flags,
	})
	return false
}

// Get returns the entry for a read name, or nil.
func (l *ReadLedger) Get(name string) *ReadEntry {
	e, _ := l.tree.Get(&ReadEntry{Name: name}).(*ReadEntry)
	return e
}

// Len returns the number of distinct reads.
func (l *ReadLedger) Len() int {
	return l.tree.Len()
}

// Do calls fn for every entry in read name order.
func (l *ReadLedger) Do(fn func(*ReadEntry)) {
	l.tree.Do(func(c llrb.Comparable) bool {
		fn(c.(*ReadEntry))
		return false
	})
}

type contradiction struct {
	name string
	pos  int
}

func (c contradiction) Compare(o llrb.Comparable) int {
	d := o.(contradiction)
	if cmp := strings.Compare(c.name, d.name); cmp != 0 {
		return cmp
	}
	return c.pos - d.pos
}

// ContradictionLedger records reads whose mate was found inside an intron
// of the read's own alignment. A read is keyed together with the mate
// coordinate that contradicted it.
type ContradictionLedger struct {
	tree llrb.Tree
}

// NewContradictionLedger returns an empty ledger.
func NewContradictionLedger() *ContradictionLedger {
	return &ContradictionLedger{}
}

// Add records (name, pos). It returns true if the pair was already present.
func (l *ContradictionLedger) Add(name string, pos int) bool {
	k := contradiction{name: name, pos: pos}
	if l.tree.Get(k) != nil {
		return true
	}
	l.tree.Insert(k)
	return false
}

// Contains reports whether (name, pos) has been recorded.
func (l *ContradictionLedger) Contains(name string, pos int) bool {
	return l.tree.Get(contradiction{name: name, pos: pos}) != nil
}

// Len returns the number of recorded pairs.
func (l *ContradictionLedger) Len() int {
	return l.tree.Len()
}

// Reset drops all recorded pairs.
func (l *ContradictionLedger) Reset() {
	l.tree = llrb.Tree{}
}
