package junction

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-junc/internal/alignment"
	"github.com/inodb/vibe-junc/internal/cigar"
)

// Options configures junction detection.
type Options struct {
	Flank           int     // Maximum unqualified anchor length
	BothAnchors     bool    // Require a read with both anchors > Flank
	PrintAll        bool    // Emit unqualified junctions with negative support
	FilterBits      int     // YS tag bits that invalidate an unstranded alignment
	Library         Library // Library strandedness
	StripMateSuffix bool    // Remove /1 /2 .1 .2 from read names
	WindowSize      int     // Maximum number of open junctions
	MinReadLength   int     // Shorter reads are ignored
	ListReads       bool    // Fill Summary.Reads
}

// DefaultOptions returns the default detection options.
func DefaultOptions() Options {
	return Options{
		Flank:         8,
		FilterBits:    4,
		WindowSize:    DefaultWindowSize,
		MinReadLength: 20,
	}
}

func (o Options) anchorPolicy() AnchorPolicy {
	if o.BothAnchors {
		return AnchorBoth
	}
	return AnchorEither
}

// Stats counts what happened to the input.
type Stats struct {
	Records    int // Records seen
	Unmapped   int // Skipped: no reference
	Short      int // Skipped: sequence shorter than MinReadLength
	Unspliced  int // Skipped: no reference skip in CIGAR
	Malformed  int // Skipped: CIGAR could not be parsed
	Spliced    int // Records used
	Junctions  int // Distinct junctions opened
	Emitted    int // Junctions written to the sink
	Suppressed int // Junctions dropped as unqualified
}

// Finder detects junctions in a coordinate-sorted alignment stream.
type Finder struct {
	opts           Options
	sink           Sink
	window         *Window
	contradictions *ContradictionLedger
	chrom          string
	stats          Stats
	logger         *zap.Logger
}

// NewFinder creates a finder writing closed junctions to sink.
func NewFinder(opts Options, sink Sink) *Finder {
	return &Finder{
		opts:           opts,
		sink:           sink,
		window:         NewWindow(opts.WindowSize),
		contradictions: NewContradictionLedger(),
		logger:         zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and debug messages.
func (f *Finder) SetLogger(l *zap.Logger) {
	f.logger = l
}

// Stats returns the counters accumulated so far.
func (f *Finder) Stats() Stats {
	return f.stats
}

// Window returns the open junctions.
func (f *Finder) Window() *Window {
	return f.window
}

// Add processes one alignment record. Records must arrive sorted by
// reference, then position.
func (f *Finder) Add(rec *alignment.Record) error {
	f.stats.Records++
	switch {
	case !rec.IsMapped():
		f.stats.Unmapped++
		return nil
	case len(rec.Seq) < f.opts.MinReadLength:
		f.stats.Short++
		return nil
	case !cigar.HasSkip(rec.Cigar):
		f.stats.Unspliced++
		return nil
	}

	if err := cigar.Validate(rec.Cigar); err != nil {
		f.stats.Malformed++
		f.logger.Warn("skipping alignment with malformed CIGAR",
			zap.String("read", rec.Name),
			zap.String("chrom", rec.Ref),
			zap.Int("pos", rec.Pos),
			zap.Error(err))
		return nil
	}
	c := rec.Cigar

	if rec.Ref != f.chrom {
		if err := f.flushChrom(); err != nil {
			return err
		}
		f.chrom = rec.Ref
	}
	f.stats.Spliced++

	name := rec.Name
	if f.opts.StripMateSuffix {
		name = TrimMateSuffix(name)
	}

	ev := f.classify(rec, name, c)
	for _, g := range cigar.Gaps(c, rec.Pos, f.opts.Flank) {
		found, err := f.resolve(g, rec.Pos, ev)
		if err != nil {
			return err
		}
		if !found {
			f.stats.Junctions++
		}
	}
	return nil
}

// resolve records one gap of an alignment in the window, first emitting the
// junctions that the sorted stream has moved past. It reports whether the
// junction was already open.
func (f *Finder) resolve(g cigar.Gap, prune int, ev *Evidence) (bool, error) {
	for _, j := range f.window.Junctions() {
		f.conflict(j, g, ev)
	}

	j := f.window.Find(g.Start, g.End)
	for _, closed := range f.window.Prune(prune, j) {
		if err := f.emit(closed); err != nil {
			return false, err
		}
	}

	if j != nil {
		if j.Strand == StrandUnknown && ev.Strand != StrandUnknown {
			j.Strand = ev.Strand
		}
		j.Reads.Observe(ev, g.Left, g.Right)
		return true, nil
	}

	j = newJunction(g.Start, g.End, ev.Strand)
	j.Reads.Observe(ev, g.Left, g.Right)
	if err := f.window.Insert(j); err != nil {
		if oe, ok := err.(*OverflowError); ok {
			oe.Chrom = f.chrom
		}
		return false, err
	}
	return false, nil
}

// emit summarizes a closed junction and writes it if it qualifies.
func (f *Finder) emit(j *Junction) error {
	s := j.Summarize(f.opts.Flank, f.opts.anchorPolicy())
	s.Chrom = f.chrom
	if f.opts.ListReads {
		s.Reads = j.ValidReads()
	}
	j.Reads = nil

	if !s.Qualified {
		if !f.opts.PrintAll {
			f.stats.Suppressed++
			return nil
		}
		s.Support = -s.Support
	}
	f.stats.Emitted++
	if err := f.sink.WriteJunction(&s); err != nil {
		return fmt.Errorf("write junction %s:%d-%d: %w", s.Chrom, s.DonorEnd(), s.AcceptorStart(), err)
	}
	return nil
}

// flushChrom emits every open junction and forgets the current reference.
func (f *Finder) flushChrom() error {
	if f.chrom != "" {
		f.logger.Debug("flushing reference",
			zap.String("chrom", f.chrom),
			zap.Int("open_junctions", f.window.Len()),
			zap.Int("contradictions", f.contradictions.Len()))
	}
	for _, j := range f.window.Drain() {
		if err := f.emit(j); err != nil {
			return err
		}
	}
	f.contradictions.Reset()
	f.chrom = ""
	return nil
}

// Flush emits all open junctions. Call it once the input is exhausted.
func (f *Finder) Flush() error {
	return f.flushChrom()
}

// Run reads every record from r, then flushes. If ctx is cancelled the
// open junctions are still flushed before ctx.Err() is returned.
func (f *Finder) Run(ctx context.Context, r alignment.RecordReader) error {
	for {
		if err := ctx.Err(); err != nil {
			if ferr := f.Flush(); ferr != nil {
				return ferr
			}
			return err
		}

		rec, err := r.Next()
		if err != nil {
			return fmt.Errorf("read alignment: %w", err)
		}
		if rec == nil {
			break
		}
		if err := f.Add(rec); err != nil {
			return err
		}
	}

	if err := f.Flush(); err != nil {
		return err
	}

	f.logger.Info("junction detection finished",
		zap.Int("records", f.stats.Records),
		zap.Int("spliced", f.stats.Spliced),
		zap.Int("skipped_unmapped", f.stats.Unmapped),
		zap.Int("skipped_short", f.stats.Short),
		zap.Int("skipped_unspliced", f.stats.Unspliced),
		zap.Int("skipped_malformed", f.stats.Malformed),
		zap.Int("junctions", f.stats.Junctions),
		zap.Int("emitted", f.stats.Emitted),
		zap.Int("suppressed", f.stats.Suppressed))
	return nil
}

// TrimMateSuffix removes a trailing "/1", "/2", ".1" or ".2" from a read name.
func TrimMateSuffix(name string) string {
	n := len(name)
	if n >= 2 && (name[n-1] == '1' || name[n-1] == '2') && (name[n-2] == '/' || name[n-2] == '.') {
		return name[:n-2]
	}
	return name
}
