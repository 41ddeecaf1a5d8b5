package cache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// GTFLoader loads transcript and exon data from GENCODE or Ensembl GTF files.
type GTFLoader struct {
	path   string
	logger *zap.Logger
}

// NewGTFLoader creates a new GTF loader.
func NewGTFLoader(path string) *GTFLoader {
	return &GTFLoader{path: path, logger: zap.NewNop()}
}

// SetLogger sets the logger for skipped-line warnings.
func (l *GTFLoader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load loads all transcripts from the GTF file into the cache and builds
// its indexes.
func (l *GTFLoader) Load(c *Cache) error {
	return l.loadGTF(c, "")
}

// LoadChromosome loads transcripts for a specific chromosome.
func (l *GTFLoader) LoadChromosome(c *Cache, chrom string) error {
	return l.loadGTF(c, chrom)
}

// loadGTF parses the GTF file and populates the cache.
// If filterChrom is non-empty, only loads that chromosome.
func (l *GTFLoader) loadGTF(c *Cache, filterChrom string) error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open GTF file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	transcripts, err := l.parseGTF(reader, filterChrom)
	if err != nil {
		return fmt.Errorf("%s: %w", l.path, err)
	}

	ids := make([]string, 0, len(transcripts))
	for id := range transcripts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c.AddTranscript(transcripts[id])
	}
	c.Build()

	l.logger.Debug("loaded GTF",
		zap.String("path", l.path),
		zap.Int("transcripts", c.TranscriptCount()),
		zap.Int("introns", c.IntronCount()))
	return nil
}

// gtfFeature represents a parsed GTF line.
type gtfFeature struct {
	chrom       string
	featureType string
	start       int64
	end         int64
	strand      string
	attributes  map[string]string
}

// parseGTF parses GTF content and returns transcripts keyed by ID.
// Transcripts without a "transcript" line take their extent, gene and
// strand from their exons.
func (l *GTFLoader) parseGTF(reader io.Reader, filterChrom string) (map[string]*Transcript, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	transcripts := make(map[string]*Transcript)
	exonsByTranscript := make(map[string][]Exon)

	lineNum := 0
	skipped := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		feat, err := l.parseLine(line)
		if err != nil {
			skipped++
			l.logger.Debug("skipping GTF line", zap.Int("line", lineNum), zap.Error(err))
			continue
		}

		if filterChrom != "" && feat.chrom != normalizeChrom(filterChrom) {
			continue
		}
		if feat.featureType != "transcript" && feat.featureType != "exon" {
			continue
		}

		transcriptID := stripVersion(feat.attributes["transcript_id"])
		if transcriptID == "" {
			continue
		}

		t, ok := transcripts[transcriptID]
		if !ok {
			t = &Transcript{
				ID:       transcriptID,
				GeneID:   stripVersion(feat.attributes["gene_id"]),
				GeneName: feat.attributes["gene_name"],
				Chrom:    feat.chrom,
				Start:    feat.start,
				End:      feat.end,
				Strand:   parseStrand(feat.strand),
			}
			transcripts[transcriptID] = t
		}

		switch feat.featureType {
		case "transcript":
			t.Start, t.End = feat.start, feat.end
			t.Biotype = feat.attributes["transcript_type"]
			if t.Biotype == "" {
				t.Biotype = feat.attributes["transcript_biotype"]
			}
			t.IsCanonical = strings.Contains(feat.attributes["tag"], "Ensembl_canonical")

		case "exon":
			exonNum, _ := strconv.Atoi(feat.attributes["exon_number"])
			exonsByTranscript[transcriptID] = append(exonsByTranscript[transcriptID], Exon{
				Number: exonNum,
				Start:  feat.start,
				End:    feat.end,
			})
			t.Start = min(t.Start, feat.start)
			t.End = max(t.End, feat.end)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}
	if skipped > 0 {
		l.logger.Warn("skipped malformed GTF lines", zap.Int("count", skipped))
	}

	for id, t := range transcripts {
		exons := exonsByTranscript[id]
		sort.Slice(exons, func(i, j int) bool {
			return exons[i].Start < exons[j].Start
		})
		t.Exons = exons
	}

	return transcripts, nil
}

// parseLine parses a single GTF line.
func (l *GTFLoader) parseLine(line string) (*gtfFeature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("invalid GTF line: expected 9 fields, got %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}

	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}

	return &gtfFeature{
		chrom:       normalizeChrom(fields[0]),
		featureType: fields[2],
		start:       start,
		end:         end,
		strand:      fields[6],
		attributes:  parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses GTF attribute column.
// Format: key "value"; key "value"; ...
// Repeated keys (tag) are joined with commas.
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idx := strings.Index(part, " ")
		if idx == -1 {
			continue
		}

		key := part[:idx]
		value := strings.Trim(strings.TrimSpace(part[idx+1:]), "\"")

		if prev, ok := attrs[key]; ok {
			value = prev + "," + value
		}
		attrs[key] = value
	}

	return attrs
}

// parseStrand converts strand string to int8.
func parseStrand(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}

// stripVersion removes the version suffix from an Ensembl ID.
// e.g., "ENST00000456328.2" -> "ENST00000456328"
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}
