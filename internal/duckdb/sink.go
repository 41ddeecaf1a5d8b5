package duckdb

import (
	"github.com/inodb/vibe-junc/internal/junction"
)

// DefaultBatchSize is the number of junctions buffered before an append.
const DefaultBatchSize = 10000

// JunctionSink is a junction.Sink that buffers summaries and appends them
// to a Store in batches. Call Flush when the run ends.
type JunctionSink struct {
	store   *Store
	buf     []junction.Summary
	size    int
	written int
}

// NewJunctionSink creates a sink appending to store every size junctions.
// A non-positive size uses DefaultBatchSize.
func NewJunctionSink(store *Store, size int) *JunctionSink {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &JunctionSink{store: store, size: size}
}

// WriteJunction buffers s, appending the batch once it is full.
func (js *JunctionSink) WriteJunction(s *junction.Summary) error {
	c := *s
	c.Reads = nil
	js.buf = append(js.buf, c)
	if len(js.buf) >= js.size {
		return js.Flush()
	}
	return nil
}

// Flush appends the buffered junctions.
func (js *JunctionSink) Flush() error {
	if len(js.buf) == 0 {
		return nil
	}
	if err := js.store.WriteJunctions(js.buf); err != nil {
		return err
	}
	js.written += len(js.buf)
	js.buf = js.buf[:0]
	return nil
}

// Written returns the number of junctions appended so far.
func (js *JunctionSink) Written() int {
	return js.written
}
