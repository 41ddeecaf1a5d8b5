package duckdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-junc/internal/junction"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func summary(chrom string, start, end, support int) junction.Summary {
	return junction.Summary{
		Chrom:       chrom,
		Start:       start,
		End:         end,
		Strand:      junction.StrandForward,
		Support:     support,
		Unique:      support,
		LeftAnchor:  20,
		RightAnchor: 25,
		Qualified:   support > 0,
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Equal(t, "", s.Path())
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "junctions.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteJunctions([]junction.Summary{summary("1", 1000, 1099, 2)}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.JunctionCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n, "junctions persist across reopen")
}

func TestWriteAndLookupJunction(t *testing.T) {
	s := openInMemory(t)

	annotated := summary("12", 25245396, 25250750, 7)
	annotated.Strand = junction.StrandReverse
	annotated.Multi = 2
	annotated.MultiEditDistance = 3
	annotated.OppositeAnchor = 18
	annotated.Annotated = true
	annotated.Known = true
	annotated.Genes = []string{"KRAS", "LYRM5"}

	require.NoError(t, s.WriteJunctions([]junction.Summary{annotated, summary("12", 100, 200, -1)}))

	got, err := s.LookupJunction("12", 25245396, 25250750)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, annotated, *got)

	got, err = s.LookupJunction("12", 100, 200)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, -1, got.Support)
	assert.False(t, got.Qualified)
	assert.Nil(t, got.Genes)

	got, err = s.LookupJunction("12", 100, 201)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWriteJunctionsDeduplicates(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteJunctions([]junction.Summary{
		summary("1", 1000, 1099, 2),
		summary("1", 1000, 1099, 5),
		summary("2", 1000, 1099, 1),
	}))

	n, err := s.JunctionCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.LookupJunction("1", 1000, 1099)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Support, "first occurrence wins")
}

func TestJunctionsInRegion(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteJunctions([]junction.Summary{
		summary("1", 5000, 6000, 1),
		summary("1", 1000, 1099, 1),
		summary("1", 1000, 2000, 1),
		summary("2", 1000, 1099, 1),
	}))

	tests := []struct {
		name     string
		chrom    string
		from, to int
		want     [][2]int
	}{
		{"whole chromosome", "1", 0, 0, [][2]int{{1000, 1099}, {1000, 2000}, {5000, 6000}}},
		{"overlap by end", "1", 1500, 1600, [][2]int{{1000, 2000}}},
		{"touching start", "1", 2100, 5000, [][2]int{{5000, 6000}}},
		{"open ended", "1", 2001, 0, [][2]int{{5000, 6000}}},
		{"empty", "1", 7000, 8000, nil},
		{"other chromosome", "2", 0, 0, [][2]int{{1000, 1099}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.JunctionsInRegion(tt.chrom, tt.from, tt.to)
			require.NoError(t, err)
			var coords [][2]int
			for _, js := range got {
				coords = append(coords, [2]int{js.Start, js.End})
			}
			assert.Equal(t, tt.want, coords)
		})
	}
}

func TestClearJunctions(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteJunctions([]junction.Summary{summary("1", 1000, 1099, 1)}))
	require.NoError(t, s.ClearJunctions())

	n, err := s.JunctionCount()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestJunctionSink_Batches(t *testing.T) {
	s := openInMemory(t)
	sink := NewJunctionSink(s, 2)

	for i := 0; i < 5; i++ {
		js := summary("1", 1000+i*10, 2000, 1)
		js.Reads = []string{"r"}
		require.NoError(t, sink.WriteJunction(&js))
	}
	assert.Equal(t, 4, sink.Written())

	n, err := s.JunctionCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, sink.Flush())
	assert.Equal(t, 5, sink.Written())
	n, err = s.JunctionCount()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, sink.Flush(), "empty flush is a no-op")
}

func TestJunctionSink_DefaultSize(t *testing.T) {
	sink := NewJunctionSink(openInMemory(t), 0)
	assert.Equal(t, DefaultBatchSize, sink.size)
}

func TestRecordRun(t *testing.T) {
	s := openInMemory(t)

	run, err := s.LastRun()
	require.NoError(t, err)
	assert.Nil(t, run)

	path := filepath.Join(t.TempDir(), "in.sam")
	require.NoError(t, os.WriteFile(path, []byte("@HD\tVN:1.6\n"), 0644))
	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(11), fp.Size)

	stats := junction.Stats{Records: 10, Spliced: 4, Junctions: 3, Emitted: 2}
	require.NoError(t, s.RecordRun(fp, stats))

	run, err = s.LastRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, path, run.Input.Path)
	assert.Equal(t, int64(11), run.Input.Size)
	assert.Equal(t, 10, run.Records)
	assert.Equal(t, 2, run.Emitted)

	require.NoError(t, s.ClearRuns())
	run, err = s.LastRun()
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestStatFile(t *testing.T) {
	fp, err := StatFile("-")
	require.NoError(t, err)
	assert.Equal(t, "-", fp.Path)
	assert.True(t, fp.ModTime.IsZero())

	_, err = StatFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
