package junction

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// DefaultWindowSize is the default number of junctions that may be open at once.
const DefaultWindowSize = 10000

// ErrWindowFull is matched by errors.Is for an *OverflowError.
var ErrWindowFull = errors.New("junction window full")

// OverflowError reports that a junction could not be opened because the
// window is at capacity. Closing open junctions early would drop evidence
// that sorted input may still deliver, so the run cannot continue.
type OverflowError struct {
	Chrom    string
	Start    int
	End      int
	Capacity int
	Head     int // Start of the oldest open junction
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%v: %d junctions open on %s (oldest at %d) when adding %d-%d; raise the window size or check that the input is coordinate sorted",
		ErrWindowFull, e.Capacity, e.Chrom, e.Head, e.Start, e.End)
}

func (e *OverflowError) Is(target error) bool {
	return target == ErrWindowFull
}

// Window holds the open junctions sorted by (Start, End).
type Window struct {
	juncs    []*Junction
	capacity int
}

// NewWindow creates a window holding at most capacity junctions.
// A non-positive capacity uses DefaultWindowSize.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &Window{capacity: capacity}
}

// Len returns the number of open junctions.
func (w *Window) Len() int {
	return len(w.juncs)
}

// Capacity returns the maximum number of open junctions.
func (w *Window) Capacity() int {
	return w.capacity
}

// Junctions returns the open junctions in order. The slice must not be modified.
func (w *Window) Junctions() []*Junction {
	return w.juncs
}

// Head returns the open junction with the smallest (Start, End), or nil.
func (w *Window) Head() *Junction {
	if len(w.juncs) == 0 {
		return nil
	}
	return w.juncs[0]
}

func (w *Window) search(start, end int) int {
	return sort.Search(len(w.juncs), func(i int) bool {
		return !w.juncs[i].Less(start, end)
	})
}

// Find returns the open junction at (start, end), or nil.
func (w *Window) Find(start, end int) *Junction {
	i := w.search(start, end)
	if i < len(w.juncs) && w.juncs[i].Start == start && w.juncs[i].End == end {
		return w.juncs[i]
	}
	return nil
}

// Prune removes and returns the leading junctions that end before
// threshold. It stops at keep, which is never removed.
func (w *Window) Prune(threshold int, keep *Junction) []*Junction {
	n := 0
	for n < len(w.juncs) && w.juncs[n] != keep && w.juncs[n].End < threshold {
		n++
	}
	if n == 0 {
		return nil
	}
	closed := slices.Clone(w.juncs[:n])
	w.juncs = slices.Delete(w.juncs, 0, n)
	return closed
}

// Insert adds a junction at its sorted position.
func (w *Window) Insert(j *Junction) error {
	i := w.search(j.Start, j.End)
	if i < len(w.juncs) && w.juncs[i].Start == j.Start && w.juncs[i].End == j.End {
		return fmt.Errorf("junction %d-%d is already open", j.Start, j.End)
	}
	if len(w.juncs) >= w.capacity {
		return &OverflowError{Start: j.Start, End: j.End, Capacity: w.capacity, Head: w.juncs[0].Start}
	}
	w.juncs = slices.Insert(w.juncs, i, j)
	return nil
}

// Drain removes and returns all open junctions in order.
func (w *Window) Drain() []*Junction {
	all := w.juncs
	w.juncs = nil
	return all
}
