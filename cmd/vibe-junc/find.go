package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-junc/internal/alignment"
	"github.com/inodb/vibe-junc/internal/annotate"
	"github.com/inodb/vibe-junc/internal/cache"
	"github.com/inodb/vibe-junc/internal/duckdb"
	"github.com/inodb/vibe-junc/internal/junction"
	"github.com/inodb/vibe-junc/internal/output"
)

func (a *app) newFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find [flags] <input.bam|input.sam|input.sam.gz|->",
		Short: "Find splice junctions in a coordinate-sorted alignment file",
		Long: `Find splice junctions in a coordinate-sorted SAM or BAM file.

Each junction is printed on one line:

  chrom donorEnd acceptorStart support strand unique multi uniqueEdit multiEdit

donorEnd is the last exonic base before the intron and acceptorStart the
first exonic base after it. Junctions whose anchors are not longer than
the flank on both sides are suppressed, or printed with negative support
when --print-all is set.`,
		Example: `  vibe-junc find sample.bam > junctions.txt
  vibe-junc find -j 10 --stranded rf -o junctions.txt.gz sample.bam
  vibe-junc find --gtf gencode.v46.annotation.gtf.gz --db junctions.duckdb sample.bam
  samtools view -h sample.bam chr1 | vibe-junc find -`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFind(cmd.Context(), args[0])
		},
	}

	defaults := junction.DefaultOptions()
	f := cmd.Flags()
	f.IntP("flank", "j", defaults.Flank, "maximum anchor length that does not qualify a junction")
	f.BoolP("both-anchors", "B", false, "require a single read with both anchors longer than the flank")
	f.BoolP("print-all", "a", false, "print unqualified junctions with negative support")
	f.IntP("filter-bits", "y", defaults.FilterBits, "YS tag bits that filter an unstranded alignment")
	f.String("stranded", "un", "library strandedness: un, rf or fr")
	f.Bool("strip-mate-suffix", false, "strip /1 /2 .1 .2 from read names")
	f.Int("window-size", defaults.WindowSize, "maximum number of open junctions")
	f.Bool("reads", false, "list the supporting reads under each junction")
	f.String("gtf", "", "annotate junctions with a GTF file (.gz allowed)")
	f.Bool("canonical", false, "only canonical transcript introns count as known")
	f.String("canonical-file", "", "TSV of gene to canonical transcript overrides (.gz allowed)")
	f.String("transcript-cache", "", "directory to cache parsed GTF transcripts in")
	f.String("db", "", "also store junctions in a DuckDB database")
	f.StringP("output", "o", "", "output file, gzip if it ends in .gz (default: stdout)")

	for _, name := range []string{
		"flank", "both-anchors", "print-all", "filter-bits", "stranded",
		"strip-mate-suffix", "window-size", "reads", "gtf", "canonical", "canonical-file",
		"transcript-cache", "db", "output",
	} {
		_ = a.v.BindPFlag(name, f.Lookup(name))
	}

	return cmd
}

// findOptions builds detection options from flags, environment and config.
func (a *app) findOptions() (junction.Options, error) {
	opts := junction.DefaultOptions()
	opts.Flank = a.v.GetInt("flank")
	opts.BothAnchors = a.v.GetBool("both-anchors")
	opts.PrintAll = a.v.GetBool("print-all")
	opts.FilterBits = a.v.GetInt("filter-bits")
	opts.StripMateSuffix = a.v.GetBool("strip-mate-suffix")
	opts.WindowSize = a.v.GetInt("window-size")
	opts.ListReads = a.v.GetBool("reads")

	lib, err := junction.ParseLibrary(a.v.GetString("stranded"))
	if err != nil {
		return opts, &usageError{err}
	}
	opts.Library = lib

	if opts.Flank < 0 {
		return opts, &usageError{fmt.Errorf("--flank must not be negative, got %d", opts.Flank)}
	}
	if opts.WindowSize <= 0 {
		return opts, &usageError{fmt.Errorf("--window-size must be positive, got %d", opts.WindowSize)}
	}
	return opts, nil
}

func (a *app) runFind(ctx context.Context, inputPath string) (err error) {
	opts, err := a.findOptions()
	if err != nil {
		return err
	}

	reader, err := alignment.Open(inputPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	var out io.Writer = a.stdout
	if path := a.v.GetString("output"); path != "" && path != "-" {
		wc, cerr := output.Create(path)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := wc.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		out = wc
	}
	writer := output.NewJunctionWriter(out)
	sinks := []junction.Sink{writer}

	var store *duckdb.Store
	var dbSink *duckdb.JunctionSink
	if dbPath := a.v.GetString("db"); dbPath != "" {
		store, err = duckdb.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.ClearJunctions(); err != nil {
			return fmt.Errorf("clear junctions: %w", err)
		}
		dbSink = duckdb.NewJunctionSink(store, duckdb.DefaultBatchSize)
		sinks = append(sinks, dbSink)
	}

	sink := junction.MultiSink(sinks...)

	var ann *annotate.Annotator
	if gtfPath := a.v.GetString("gtf"); gtfPath != "" {
		c, err := a.loadAnnotation(gtfPath)
		if err != nil {
			return err
		}
		ann = annotate.NewAnnotator(c, sink)
		ann.SetCanonicalOnly(a.v.GetBool("canonical"))
		ann.SetLogger(a.logger)
		sink = ann
	}

	finder := junction.NewFinder(opts, sink)
	finder.SetLogger(a.logger)
	runErr := finder.Run(ctx, reader)

	// Whatever was emitted before a failure is still written out.
	if err := writer.Flush(); err != nil && runErr == nil {
		runErr = fmt.Errorf("write output: %w", err)
	}
	if dbSink != nil {
		if err := dbSink.Flush(); err != nil && runErr == nil {
			runErr = fmt.Errorf("store junctions: %w", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if ann != nil {
		ann.LogSummary()
	}
	if store != nil {
		fp, err := duckdb.StatFile(inputPath)
		if err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
		if err := store.RecordRun(fp, finder.Stats()); err != nil {
			return err
		}
		a.logger.Info("stored junctions",
			zap.String("db", store.Path()),
			zap.Int("junctions", dbSink.Written()))
	}
	return nil
}

// loadAnnotation loads the GTF transcript model, reusing the transcript cache
// when it was built from the same file, and applies canonical overrides.
func (a *app) loadAnnotation(gtfPath string) (*cache.Cache, error) {
	c := cache.New()

	var tc *duckdb.TranscriptCache
	var fp duckdb.FileFingerprint
	if dir := a.v.GetString("transcript-cache"); dir != "" {
		var err error
		if fp, err = duckdb.StatFile(gtfPath); err != nil {
			return nil, fmt.Errorf("load GTF: %w", err)
		}
		tc = duckdb.NewTranscriptCache(dir)
	}

	switch {
	case tc != nil && tc.Valid(fp):
		if err := tc.Load(c, fp); err != nil {
			return nil, err
		}
		a.logger.Debug("loaded transcripts from cache", zap.String("gtf", gtfPath))
	default:
		loader := cache.NewGTFLoader(gtfPath)
		loader.SetLogger(a.logger)
		if err := loader.Load(c); err != nil {
			return nil, fmt.Errorf("load GTF: %w", err)
		}
		if tc != nil {
			if err := tc.Write(c, fp); err != nil {
				a.logger.Warn("could not write transcript cache", zap.Error(err))
				tc.Clear(fp)
			}
		}
	}

	if path := a.v.GetString("canonical-file"); path != "" {
		overrides, err := cache.LoadCanonicalOverrides(path)
		if err != nil {
			return nil, err
		}
		marked := c.ApplyCanonicalOverrides(overrides)
		a.logger.Debug("applied canonical overrides",
			zap.String("file", path),
			zap.Int("genes", len(overrides)),
			zap.Int("transcripts", marked))
	}

	a.logger.Info("loaded annotation",
		zap.String("gtf", gtfPath),
		zap.Int("transcripts", c.TranscriptCount()),
		zap.Int("introns", c.IntronCount()))
	return c, nil
}
