package cache

import "sort"

// IntervalTree provides O(log n + k) overlap queries using a sorted-slice approach.
// Transcripts are loaded once and never modified after build.
type IntervalTree struct {
	intervals []interval
	maxEnd    []int64 // maxEnd[i] = max(end) for intervals[:i+1]
}

type interval struct {
	start      int64
	end        int64
	transcript *Transcript
}

// BuildIntervalTree creates an interval tree from a slice of transcripts.
func BuildIntervalTree(transcripts []*Transcript) *IntervalTree {
	if len(transcripts) == 0 {
		return &IntervalTree{}
	}

	intervals := make([]interval, len(transcripts))
	for i, t := range transcripts {
		intervals[i] = interval{start: t.Start, end: t.End, transcript: t}
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = max(maxEnd[i-1], intervals[i].end)
	}

	return &IntervalTree{intervals: intervals, maxEnd: maxEnd}
}

// Len returns the number of indexed transcripts.
func (t *IntervalTree) Len() int {
	return len(t.intervals)
}

// FindOverlaps returns all transcripts whose [Start, End] range contains pos.
func (t *IntervalTree) FindOverlaps(pos int64) []*Transcript {
	return t.FindRange(pos, pos)
}

// FindRange returns all transcripts sharing at least one base with [start, end].
func (t *IntervalTree) FindRange(start, end int64) []*Transcript {
	if len(t.intervals) == 0 || start > end {
		return nil
	}

	// Candidates are [0, hi): every interval starting after end is out.
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start > end
	})

	var result []*Transcript
	for i := hi - 1; i >= 0; i-- {
		// No interval in intervals[:i+1] reaches start.
		if t.maxEnd[i] < start {
			break
		}
		if tr := t.intervals[i].transcript; tr.Overlaps(start, end) {
			result = append(result, tr)
		}
	}
	return result
}
