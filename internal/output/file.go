package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

type gzipFile struct {
	*gzip.Writer
	f *os.File
}

func (g *gzipFile) Close() error {
	if err := g.Writer.Close(); err != nil {
		g.f.Close()
		return err
	}
	return g.f.Close()
}

// Create opens the output destination. An empty path or "-" writes to
// stdout, which is not closed. A path ending in ".gz" is gzip compressed.
func Create(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".gz") {
		return &gzipFile{Writer: gzip.NewWriter(f), f: f}, nil
	}
	return f, nil
}
