// Package annotate labels splice junctions with transcript annotation.
package annotate

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-junc/internal/cache"
	"github.com/inodb/vibe-junc/internal/junction"
)

// TranscriptLookup defines the queries the annotator needs from a transcript cache.
type TranscriptLookup interface {
	TranscriptsWithIntron(chrom string, start, end int64) []*cache.Transcript
	GenesOverlapping(chrom string, start, end int64) []string
}

// Annotator marks junctions as known or novel and lists the genes they
// fall in. It is a junction.Sink that forwards to another sink.
type Annotator struct {
	cache         TranscriptLookup
	next          junction.Sink
	canonicalOnly bool
	logger        *zap.Logger

	known int
	novel int
}

// NewAnnotator creates a new annotator writing annotated junctions to next.
func NewAnnotator(c TranscriptLookup, next junction.Sink) *Annotator {
	return &Annotator{
		cache:  c,
		next:   next,
		logger: zap.NewNop(),
	}
}

// SetCanonicalOnly configures whether only introns of canonical transcripts count as known.
func (a *Annotator) SetCanonicalOnly(canonical bool) {
	a.canonicalOnly = canonical
}

// SetLogger sets the logger for warning and info messages.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Annotate fills the annotation fields of s.
func (a *Annotator) Annotate(s *junction.Summary) {
	s.Annotated = true
	s.Known = false
	for _, t := range a.cache.TranscriptsWithIntron(s.Chrom, int64(s.Start), int64(s.End)) {
		if !a.canonicalOnly || t.IsCanonical {
			s.Known = true
			break
		}
	}
	// Flanking exonic bases are included so a junction at a gene edge is
	// still assigned to it.
	s.Genes = a.cache.GenesOverlapping(s.Chrom, int64(s.DonorEnd()), int64(s.AcceptorStart()))

	if s.Known {
		a.known++
	} else {
		a.novel++
	}
}

// WriteJunction annotates s and passes it on.
func (a *Annotator) WriteJunction(s *junction.Summary) error {
	a.Annotate(s)
	return a.next.WriteJunction(s)
}

// Counts returns the number of known and novel junctions annotated so far.
func (a *Annotator) Counts() (known, novel int) {
	return a.known, a.novel
}

// LogSummary logs the known/novel totals.
func (a *Annotator) LogSummary() {
	a.logger.Info("junction annotation finished",
		zap.Int("known", a.known),
		zap.Int("novel", a.novel))
}
