// Package output provides junction output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-junc/internal/junction"
)

var _ junction.Sink = (*JunctionWriter)(nil)

// JunctionWriter writes one space-separated line per junction:
//
//	chrom donorEnd acceptorStart support strand unique multi uniqueEdit multiEdit
//
// Annotated summaries get two more columns, known|novel and a comma
// separated gene list ("-" if none). When a summary carries read names
// they follow the junction line, one per line, indented by a tab.
type JunctionWriter struct {
	w *bufio.Writer
}

// NewJunctionWriter creates a new junction writer.
func NewJunctionWriter(w io.Writer) *JunctionWriter {
	return &JunctionWriter{w: bufio.NewWriter(w)}
}

// WriteJunction writes a single junction summary.
func (jw *JunctionWriter) WriteJunction(s *junction.Summary) error {
	values := []string{
		s.Chrom,
		strconv.Itoa(s.DonorEnd()),
		strconv.Itoa(s.AcceptorStart()),
		strconv.Itoa(s.Support),
		s.Strand.String(),
		strconv.Itoa(s.Unique),
		strconv.Itoa(s.Multi),
		strconv.Itoa(s.UniqueEditDistance),
		strconv.Itoa(s.MultiEditDistance),
	}

	if s.Annotated {
		status := "novel"
		if s.Known {
			status = "known"
		}
		genes := "-"
		if len(s.Genes) > 0 {
			genes = strings.Join(s.Genes, ",")
		}
		values = append(values, status, genes)
	}

	if _, err := jw.w.WriteString(strings.Join(values, " ") + "\n"); err != nil {
		return err
	}

	for _, name := range s.Reads {
		if _, err := jw.w.WriteString("\t" + name + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (jw *JunctionWriter) Flush() error {
	return jw.w.Flush()
}
