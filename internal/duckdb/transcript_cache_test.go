package duckdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-junc/internal/cache"
)

func TestTranscriptCache_WriteLoad(t *testing.T) {
	gtfPath := filepath.Join(t.TempDir(), "genes.gtf")
	require.NoError(t, os.WriteFile(gtfPath, []byte("# placeholder\n"), 0o644))
	fp, err := StatFile(gtfPath)
	require.NoError(t, err)

	tc := NewTranscriptCache(filepath.Join(t.TempDir(), "cache"))
	assert.False(t, tc.Valid(fp), "empty cache is not valid")

	c := cache.New()
	c.AddTranscript(&cache.Transcript{
		ID: "T1", GeneName: "GENE1", Chrom: "chr1", Start: 900, End: 1200, Strand: 1, IsCanonical: true,
		Exons: []cache.Exon{{Number: 1, Start: 900, End: 999}, {Number: 2, Start: 1100, End: 1200}},
	})
	c.AddTranscript(&cache.Transcript{
		ID: "T2", GeneName: "GENE2", Chrom: "chr2", Start: 100, End: 500, Strand: -1,
		Exons: []cache.Exon{{Number: 1, Start: 100, End: 500}},
	})
	c.Build()

	require.NoError(t, tc.Write(c, fp))
	require.True(t, tc.Valid(fp))

	loaded := cache.New()
	require.NoError(t, tc.Load(loaded, fp))
	assert.Equal(t, 2, loaded.TranscriptCount())
	assert.True(t, loaded.IsKnownIntron("1", 1000, 1099))
	assert.Equal(t, []string{"GENE1"}, loaded.GenesOverlapping("chr1", 999, 1100))
	assert.Equal(t, c.GetTranscript("T2"), loaded.GetTranscript("T2"))
}

func TestTranscriptCache_Invalidated(t *testing.T) {
	gtfPath := filepath.Join(t.TempDir(), "genes.gtf")
	require.NoError(t, os.WriteFile(gtfPath, []byte("# v1\n"), 0o644))
	fp, err := StatFile(gtfPath)
	require.NoError(t, err)

	tc := NewTranscriptCache(t.TempDir())
	c := cache.New()
	c.AddTranscript(&cache.Transcript{ID: "T1", Chrom: "1", Start: 1, End: 10})
	c.Build()
	require.NoError(t, tc.Write(c, fp))
	require.True(t, tc.Valid(fp))

	changed := fp
	changed.Size++
	assert.False(t, tc.Valid(changed))

	changed = fp
	changed.ModTime = fp.ModTime.Add(time.Second)
	assert.False(t, tc.Valid(changed))

	tc.Clear(fp)
	assert.False(t, tc.Valid(fp))
}
