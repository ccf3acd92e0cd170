package ingest

// streaming.go prepares an upload body for CSV parsing without buffering it.
//
// Survey exports come from spreadsheet tools that add a UTF-8 byte order
// mark and occasionally contain bytes that are not valid UTF-8. The decoder
// from golang.org/x/text strips the BOM and replaces invalid sequences with
// U+FFFD as the bytes stream through.

import (
	"io"
	"sync/atomic"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader io.Reader
	n      atomic.Int64
}

// NewCountingReader returns a CountingReader over r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.n.Add(int64(n))
	return n, err
}

// BytesRead returns the number of bytes read so far.
func (r *CountingReader) BytesRead() int64 {
	return r.n.Load()
}

// WrapForStreaming counts the raw bytes of r and decodes them as UTF-8,
// dropping a leading BOM and sanitizing invalid sequences.
//
// The counter sits below the decoder so it reports the upload size, not
// the size after sanitizing.
func WrapForStreaming(r io.Reader) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r)
	return transform.NewReader(counter, unicode.UTF8BOM.NewDecoder()), counter
}
