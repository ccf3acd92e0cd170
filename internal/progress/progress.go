// Package progress implements the newline-delimited JSON stream an import
// reports through.
//
// A stream is zero or more "progress" messages, one per processed batch and
// carrying only that batch's row results, followed by exactly one "complete"
// message carrying every row result of the import. The complete message is
// authoritative. A stream that ends without it describes an import that did
// not finish.
//
//	{"type":"progress","results":[{"success":true},{"success":false,"reason":"..."}]}
//	{"type":"complete","results":[...]}
package progress

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// ContentType is the media type of an import stream.
const ContentType = "application/x-ndjson"

// MaxLineSize bounds a single message on the wire. A complete message for a
// large import carries one small object per row.
const MaxLineSize = 64 * 1024 * 1024

// Type discriminates stream messages.
type Type string

const (
	TypeProgress Type = "progress"
	TypeComplete Type = "complete"
)

// Result is the outcome of one data row.
type Result struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// Succeeded returns a successful Result.
func Succeeded() Result { return Result{Success: true} }

// Failed returns a failed Result with the given reason.
func Failed(reason string) Result { return Result{Reason: reason} }

// Message is one line of the stream.
type Message struct {
	Type    Type     `json:"type"`
	Results []Result `json:"results"`
}

// Counts returns the number of successful and failed results in m.
func (m Message) Counts() (succeeded, failed int) {
	for _, r := range m.Results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Encoder writes messages as NDJSON, flushing after each line when the
// underlying writer supports it so clients see progress as it happens.
type Encoder struct {
	mu      sync.Mutex
	enc     *json.Encoder
	flusher http.Flusher
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	e := &Encoder{enc: json.NewEncoder(w)}
	e.enc.SetEscapeHTML(false)
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
	}
	return e
}

// Encode writes one message followed by a newline.
func (e *Encoder) Encode(m Message) error {
	if m.Results == nil {
		m.Results = []Result{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enc.Encode(m); err != nil {
		return fmt.Errorf("encode %s message: %w", m.Type, err)
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

// ErrUnknownType is returned by Decoder for a message whose type is neither
// progress nor complete.
var ErrUnknownType = errors.New("unknown message type")

// Decoder reads messages from an NDJSON stream.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Decoder{scanner: s}
}

// Decode returns the next message, or io.EOF when the stream ends. Blank
// lines are skipped.
func (d *Decoder) Decode() (Message, error) {
	for d.scanner.Scan() {
		d.line++
		raw := d.scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			return Message{}, fmt.Errorf("line %d: %w", d.line, err)
		}
		if m.Type != TypeProgress && m.Type != TypeComplete {
			return Message{}, fmt.Errorf("line %d: %w %q", d.line, ErrUnknownType, m.Type)
		}
		return m, nil
	}
	if err := d.scanner.Err(); err != nil {
		return Message{}, err
	}
	return Message{}, io.EOF
}
