package alignment

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSAM = "@HD\tVN:1.6\tSO:coordinate\n" +
	"@SQ\tSN:chr1\tLN:100000\n" +
	"@SQ\tSN:chr2\tLN:100000\n" +
	"read1\t99\tchr1\t981\t60\t20M100N20M\t=\t1500\t620\tACGTACGTACGTACGTACGTACGTACGTACGTACGTACGT\t*\tNH:i:2\tNM:i:1\tXS:A:+\n" +
	"read2\t16\tchr1\t985\t60\t40M\t*\t0\t0\tACGTACGTACGTACGTACGTACGTACGTACGTACGTACGT\t*\tnM:i:3\tYS:i:4\n" +
	"read3\t163\tchr1\t1500\t60\t40M\t=\t981\t-620\tACGTACGTACGTACGTACGTACGTACGTACGTACGTACGT\t*\tXS:A:?\tYS:i:4\n" +
	"read4\t4\t*\t0\t0\t*\t*\t0\t0\tACGTACGTACGTACGTACGT\t*\n"

func readAll(t *testing.T, r RecordReader) []*Record {
	t.Helper()
	var recs []*Record
	for {
		rec, err := r.Next()
		require.NoError(t, err)
		if rec == nil {
			return recs
		}
		recs = append(recs, rec)
	}
}

func TestReader_SAM(t *testing.T) {
	r, err := NewReader(strings.NewReader(testSAM), FormatAuto)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, FormatSAM, r.Format())

	recs := readAll(t, r)
	require.Len(t, recs, 4)
	assert.Equal(t, 4, r.Count())

	r1 := recs[0]
	assert.Equal(t, "read1", r1.Name)
	assert.Equal(t, "chr1", r1.Ref)
	assert.Equal(t, 981, r1.Pos)
	assert.Equal(t, "20M100N20M", r1.Cigar.String())
	assert.True(t, r1.MateSameRef)
	assert.Equal(t, 1500, r1.MatePos)
	assert.Equal(t, 2, r1.NH)
	assert.Equal(t, 1, r1.EditDistance)
	assert.Equal(t, byte('+'), r1.StrandHint)
	assert.False(t, r1.HasNonCanonical)
	assert.Len(t, r1.Seq, 40)
	assert.Equal(t, sam.Flags(99), r1.Flags)

	r2 := recs[1]
	assert.Equal(t, 1, r2.NH, "NH defaults to 1")
	assert.Equal(t, 3, r2.EditDistance, "falls back to nM")
	assert.Equal(t, byte(0), r2.StrandHint)
	assert.False(t, r2.HasNonCanonical, "YS without XS is a mate score")
	assert.Equal(t, 0, r2.NonCanonical)
	assert.False(t, r2.MateSameRef)
	assert.True(t, r2.Flags&sam.Reverse != 0)

	r3 := recs[2]
	assert.True(t, r3.Flags&sam.Read2 != 0)
	assert.Equal(t, byte('?'), r3.StrandHint)
	assert.True(t, r3.HasNonCanonical)
	assert.Equal(t, 4, r3.NonCanonical)
	assert.Equal(t, 981, r3.MatePos)

	r4 := recs[3]
	assert.False(t, r4.IsMapped())
	assert.True(t, r1.IsMapped())
}

func TestReader_GzipSAMFile(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(testSAM))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "test.sam.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, FormatSAM, r.Format())
	assert.Len(t, readAll(t, r), 4)
}

func TestReader_SniffCompressed(t *testing.T) {
	var gzSAM bytes.Buffer
	gz := gzip.NewWriter(&gzSAM)
	_, err := gz.Write([]byte(testSAM))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	sr, err := sam.NewReader(strings.NewReader(testSAM))
	require.NoError(t, err)
	var bamData bytes.Buffer
	bw, err := bam.NewWriter(&bamData, sr.Header(), 1)
	require.NoError(t, err)
	for {
		rec, err := sr.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.NoError(t, bw.Write(rec))
	}
	require.NoError(t, bw.Close())

	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"plain sam", []byte(testSAM), FormatSAM},
		{"gzip sam", gzSAM.Bytes(), FormatSAM},
		{"bam", bamData.Bytes(), FormatBAM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tt.data), FormatAuto)
			require.NoError(t, err)
			defer r.Close()
			assert.Equal(t, tt.want, r.Format())

			recs := readAll(t, r)
			require.Len(t, recs, 4)
			assert.Equal(t, "read1", recs[0].Name)
			assert.Equal(t, "20M100N20M", recs[0].Cigar.String())
		})
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.bam"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Unwrap(err)))
}

func TestReader_BadBAM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bam")
	require.NoError(t, os.WriteFile(path, []byte("not a bam file"), 0o644))

	_, err := Open(path)
	require.Error(t, err)

	var ferr *FormatError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, path, ferr.Path)
	assert.Contains(t, err.Error(), "bad.bam")
}

func TestFormatFromExt(t *testing.T) {
	assert.Equal(t, FormatBAM, formatFromExt("x/y.BAM"))
	assert.Equal(t, FormatSAM, formatFromExt("y.sam"))
	assert.Equal(t, FormatSAM, formatFromExt("y.sam.gz"))
	assert.Equal(t, FormatAuto, formatFromExt("y.txt"))
	assert.Equal(t, "bam", FormatBAM.String())
}
