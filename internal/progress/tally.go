package progress

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrIncomplete means the stream ended before its complete message.
	ErrIncomplete = errors.New("import stream ended without a complete message")

	// ErrAfterComplete means a message followed the complete message.
	ErrAfterComplete = errors.New("message after complete")
)

// Totals counts row outcomes.
type Totals struct {
	Rows      int `json:"rows"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func (t Totals) add(m Message) Totals {
	ok, failed := m.Counts()
	t.Succeeded += ok
	t.Failed += failed
	t.Rows += ok + failed
	return t
}

// Tally folds the messages of one stream.
//
// Running totals are the sum of progress messages seen so far and are only
// an estimate for display. Once the complete message arrives its results
// replace them; the two are never added together.
type Tally struct {
	batches  int
	running  Totals
	complete *Message
}

// Add records one message.
func (t *Tally) Add(m Message) error {
	if t.complete != nil {
		return ErrAfterComplete
	}
	switch m.Type {
	case TypeProgress:
		t.batches++
		t.running = t.running.add(m)
	case TypeComplete:
		t.complete = &m
	default:
		return fmt.Errorf("%w %q", ErrUnknownType, m.Type)
	}
	return nil
}

// Batches returns the number of progress messages seen.
func (t *Tally) Batches() int { return t.batches }

// Done reports whether the complete message has been seen.
func (t *Tally) Done() bool { return t.complete != nil }

// Current returns the authoritative totals when the stream is complete and
// the running progress totals otherwise.
func (t *Tally) Current() Totals {
	if t.complete != nil {
		return Totals{}.add(*t.complete)
	}
	return t.running
}

// Final returns the totals and per-row results from the complete message,
// or ErrIncomplete if it has not arrived.
func (t *Tally) Final() (Totals, []Result, error) {
	if t.complete == nil {
		return t.running, nil, ErrIncomplete
	}
	return Totals{}.add(*t.complete), t.complete.Results, nil
}

// Consume decodes r to the end, feeding every message into a new Tally and
// calling onMessage (if non-nil) after each one. A stream that ends without
// a complete message yields ErrIncomplete together with the partial Tally.
func Consume(r io.Reader, onMessage func(Message, *Tally)) (*Tally, error) {
	var t Tally
	dec := NewDecoder(r)
	for {
		m, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &t, fmt.Errorf("read import stream: %w", err)
		}
		if err := t.Add(m); err != nil {
			return &t, err
		}
		if onMessage != nil {
			onMessage(m, &t)
		}
	}
	if !t.Done() {
		return &t, ErrIncomplete
	}
	return &t, nil
}
