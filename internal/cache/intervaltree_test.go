package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(ts []*Transcript) map[string]bool {
	m := map[string]bool{}
	for _, t := range ts {
		m[t.ID] = true
	}
	return m
}

func TestBuildIntervalTree_Empty(t *testing.T) {
	tree := BuildIntervalTree(nil)
	assert.Empty(t, tree.FindOverlaps(100))
	assert.Equal(t, 0, tree.Len())
}

func TestIntervalTree_SingleTranscript(t *testing.T) {
	tx := &Transcript{ID: "ENST001", Start: 100, End: 200}
	tree := BuildIntervalTree([]*Transcript{tx})

	assert.Len(t, tree.FindOverlaps(150), 1)
	assert.Equal(t, "ENST001", tree.FindOverlaps(150)[0].ID)

	assert.Len(t, tree.FindOverlaps(100), 1, "start boundary inclusive")
	assert.Len(t, tree.FindOverlaps(200), 1, "end boundary inclusive")
	assert.Empty(t, tree.FindOverlaps(99), "before start")
	assert.Empty(t, tree.FindOverlaps(201), "after end")
}

func TestIntervalTree_Overlapping(t *testing.T) {
	transcripts := []*Transcript{
		{ID: "A", Start: 100, End: 300},
		{ID: "B", Start: 150, End: 250},
		{ID: "C", Start: 200, End: 400},
	}
	tree := BuildIntervalTree(transcripts)

	got := ids(tree.FindOverlaps(175))
	assert.Equal(t, map[string]bool{"A": true, "B": true}, got)

	assert.Len(t, tree.FindOverlaps(250), 3, "pos 250 overlaps A, B, C")

	results := tree.FindOverlaps(350)
	assert.Len(t, results, 1, "pos 350 overlaps only C")
	assert.Equal(t, "C", results[0].ID)
}

func TestIntervalTree_LongIntervalBehindShortOnes(t *testing.T) {
	transcripts := []*Transcript{
		{ID: "long", Start: 10, End: 10000},
		{ID: "s1", Start: 20, End: 30},
		{ID: "s2", Start: 40, End: 50},
		{ID: "s3", Start: 60, End: 70},
	}
	tree := BuildIntervalTree(transcripts)

	assert.Equal(t, map[string]bool{"long": true}, ids(tree.FindOverlaps(500)))
	assert.Equal(t, map[string]bool{"long": true, "s2": true}, ids(tree.FindOverlaps(45)))
}

func TestIntervalTree_FindRange(t *testing.T) {
	transcripts := []*Transcript{
		{ID: "A", Start: 100, End: 200},
		{ID: "B", Start: 300, End: 400},
		{ID: "C", Start: 500, End: 600},
	}
	tree := BuildIntervalTree(transcripts)

	tests := []struct {
		name       string
		start, end int64
		want       map[string]bool
	}{
		{"spans gap between A and B", 150, 350, map[string]bool{"A": true, "B": true}},
		{"touches end of A", 200, 250, map[string]bool{"A": true}},
		{"in gap", 201, 299, map[string]bool{}},
		{"covers all", 1, 1000, map[string]bool{"A": true, "B": true, "C": true}},
		{"inverted", 400, 300, map[string]bool{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tree.FindRange(tt.start, tt.end)))
		})
	}
}
