package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inodb/vibe-junc/internal/cache"
)

// TranscriptCache keeps gob-serialized transcripts parsed from a GTF file so
// later runs can skip parsing:
//
//	{dir}/{gtf name}.gob       (serialized transcripts)
//	{dir}/{gtf name}.gob.meta  (source file fingerprint)
type TranscriptCache struct {
	dir string
}

// NewTranscriptCache creates a transcript cache for the given directory.
func NewTranscriptCache(dir string) *TranscriptCache {
	return &TranscriptCache{dir: dir}
}

func (tc *TranscriptCache) gobPath(gtf FileFingerprint) string {
	return filepath.Join(tc.dir, filepath.Base(gtf.Path)+".gob")
}

func (tc *TranscriptCache) metaPath(gtf FileFingerprint) string {
	return tc.gobPath(gtf) + ".meta"
}

// Valid checks whether the cached transcripts were built from this GTF file.
func (tc *TranscriptCache) Valid(gtf FileFingerprint) bool {
	meta, err := tc.readMeta(gtf)
	if err != nil {
		return false
	}

	abs, _ := filepath.Abs(gtf.Path)
	checks := []struct{ key, val string }{
		{"gtf_path", abs},
		{"gtf_size", strconv.FormatInt(gtf.Size, 10)},
		{"gtf_modtime", gtf.ModTime.UTC().Format(time.RFC3339Nano)},
	}
	for _, c := range checks {
		if meta[c.key] != c.val {
			return false
		}
	}

	if _, err := os.Stat(tc.gobPath(gtf)); err != nil {
		return false
	}
	return true
}

// Load reads serialized transcripts into c and builds its indexes.
func (tc *TranscriptCache) Load(c *cache.Cache, gtf FileFingerprint) error {
	f, err := os.Open(tc.gobPath(gtf))
	if err != nil {
		return fmt.Errorf("open transcript cache: %w", err)
	}
	defer f.Close()

	var transcripts []*cache.Transcript
	if err := gob.NewDecoder(f).Decode(&transcripts); err != nil {
		return fmt.Errorf("decode transcript cache: %w", err)
	}

	for _, t := range transcripts {
		c.AddTranscript(t)
	}
	c.Build()
	return nil
}

// Write serializes all transcripts of c and records the GTF fingerprint.
func (tc *TranscriptCache) Write(c *cache.Cache, gtf FileFingerprint) error {
	if err := os.MkdirAll(tc.dir, 0o755); err != nil {
		return fmt.Errorf("create transcript cache directory: %w", err)
	}

	transcripts := make([]*cache.Transcript, 0, c.TranscriptCount())
	for _, chrom := range c.Chromosomes() {
		transcripts = append(transcripts, c.TranscriptsOnChrom(chrom)...)
	}

	path := tc.gobPath(gtf)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create transcript cache: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(transcripts); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode transcript cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close transcript cache: %w", err)
	}

	return tc.writeMeta(gtf)
}

// Clear removes the cached files for a GTF file.
func (tc *TranscriptCache) Clear(gtf FileFingerprint) {
	os.Remove(tc.gobPath(gtf))
	os.Remove(tc.metaPath(gtf))
}

func (tc *TranscriptCache) writeMeta(gtf FileFingerprint) error {
	abs, _ := filepath.Abs(gtf.Path)
	lines := []string{
		"gtf_path=" + abs,
		"gtf_size=" + strconv.FormatInt(gtf.Size, 10),
		"gtf_modtime=" + gtf.ModTime.UTC().Format(time.RFC3339Nano),
		"created_at=" + time.Now().UTC().Format(time.RFC3339),
		"",
	}
	return os.WriteFile(tc.metaPath(gtf), []byte(strings.Join(lines, "\n")), 0o644)
}

func (tc *TranscriptCache) readMeta(gtf FileFingerprint) (map[string]string, error) {
	data, err := os.ReadFile(tc.metaPath(gtf))
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
