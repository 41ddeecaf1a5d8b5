package alignment

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/klauspost/compress/gzip"
)

// Format is an alignment container format.
type Format int

const (
	FormatAuto Format = iota
	FormatSAM
	FormatBAM
)

func (f Format) String() string {
	switch f {
	case FormatSAM:
		return "sam"
	case FormatBAM:
		return "bam"
	}
	return "auto"
}

// RecordReader is implemented by sources of alignment records.
// Next returns nil, nil when there are no more records.
type RecordReader interface {
	Next() (*Record, error)
	Close() error
}

type samSource interface {
	Read() (*sam.Record, error)
}

// Reader reads alignment records from a SAM or BAM stream.
type Reader struct {
	src     samSource
	closers []io.Closer
	path    string
	format  Format
	count   int
}

// Open opens a SAM, gzipped SAM or BAM file. Use "-" for stdin.
// The format is taken from the file extension, falling back to the content.
func Open(path string) (*Reader, error) {
	if path == "-" {
		return NewReader(os.Stdin, FormatAuto)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alignment file: %w", err)
	}

	format := formatFromExt(path)
	r, err := newReader(f, format, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closers = append(r.closers, f)
	return r, nil
}

// NewReader reads alignments from r. FormatAuto sniffs the stream: BGZF/gzip
// data is read as BAM, anything else as SAM text.
func NewReader(r io.Reader, format Format) (*Reader, error) {
	return newReader(r, format, "-")
}

func newReader(r io.Reader, format Format, path string) (*Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)
	if format == FormatAuto {
		var err error
		if format, err = sniff(br); err != nil {
			return nil, &FormatError{Path: path, Err: err}
		}
	}

	rd := &Reader{path: path, format: format}
	switch format {
	case FormatBAM:
		b, err := bam.NewReader(br, 0)
		if err != nil {
			return nil, &FormatError{Path: path, Err: fmt.Errorf("not a valid bam file: %w", err)}
		}
		rd.src = b
		rd.closers = append(rd.closers, b)
	case FormatSAM:
		var in io.Reader = br
		magic, _ := br.Peek(2)
		if isGzip(magic) {
			gz, err := gzip.NewReader(br)
			if err != nil {
				return nil, &FormatError{Path: path, Err: fmt.Errorf("open gzip reader: %w", err)}
			}
			rd.closers = append(rd.closers, gz)
			in = gz
		}
		s, err := sam.NewReader(in)
		if err != nil {
			return nil, &FormatError{Path: path, Err: fmt.Errorf("not a valid sam file: %w", err)}
		}
		rd.src = s
	default:
		return nil, &FormatError{Path: path, Err: fmt.Errorf("unknown format %d", format)}
	}
	return rd, nil
}

// Next reads the next alignment record.
// Returns nil, nil when there are no more records.
func (r *Reader) Next() (*Record, error) {
	rec, err := r.src.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, &FormatError{Path: r.path, Record: r.count + 1, Err: err}
	}
	r.count++
	return FromSAM(rec), nil
}

// Format returns the container format being read.
func (r *Reader) Format() Format {
	return r.format
}

// Count returns the number of records read so far.
func (r *Reader) Count() int {
	return r.count
}

// Close closes the reader and any underlying file.
func (r *Reader) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

func formatFromExt(path string) Format {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".bam"):
		return FormatBAM
	case strings.HasSuffix(lower, ".sam"), strings.HasSuffix(lower, ".sam.gz"):
		return FormatSAM
	}
	return FormatAuto
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	bamMagic  = []byte("BAM\x01")
)

// sniffSize holds a whole BGZF block.
const sniffSize = 1 << 16

// sniff tells BAM from SAM text. Compressed input is BAM only when its
// decompressed content starts with the BAM magic, so gzip or bgzip
// compressed SAM is read as SAM.
func sniff(br *bufio.Reader) (Format, error) {
	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return FormatAuto, err
	}
	if !isGzip(head) {
		return FormatSAM, nil
	}

	gz, err := gzip.NewReader(bytes.NewReader(head))
	if err != nil {
		// Let the BAM reader report the broken stream.
		return FormatBAM, nil
	}
	defer gz.Close()
	magic := make([]byte, len(bamMagic))
	if _, err := io.ReadFull(gz, magic); err == nil && bytes.Equal(magic, bamMagic) {
		return FormatBAM, nil
	}
	return FormatSAM, nil
}

func isGzip(b []byte) bool {
	return len(b) >= 2 && bytes.Equal(b[:2], gzipMagic)
}

// FormatError reports an unreadable or malformed alignment stream.
type FormatError struct {
	Path   string
	Record int // 1-based record number, 0 if the header could not be read
	Err    error
}

func (e *FormatError) Error() string {
	if e.Record > 0 {
		return fmt.Sprintf("%s: record %d: %v", e.Path, e.Record, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
