package ingest

import (
	"context"
	"errors"
	"io"

	"github.com/JonMunkholm/signsurvey/internal/survey"
)

// RowFailure is a row that would be reported as failed by an import.
type RowFailure struct {
	Row    int    `json:"row"`
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Preview is the reconstruction of the first rows of an export.
type Preview struct {
	Photos              []survey.Photo `json:"photos"`
	Failures            []RowFailure   `json:"failures"`
	UnrecognizedColumns []string       `json:"unrecognizedColumns"`
}

// Preview reconstructs up to limit data rows of r without persisting them.
// File-level errors are the same as Open's.
func (c *Coordinator) Preview(ctx context.Context, r io.Reader, limit int) (Preview, error) {
	imp, err := c.Open(ctx, r)
	if err != nil {
		return Preview{}, err
	}

	p := Preview{
		Photos:              []survey.Photo{},
		Failures:            []RowFailure{},
		UnrecognizedColumns: imp.layout.Unrecognized,
	}
	if p.UnrecognizedColumns == nil {
		p.UnrecognizedColumns = []string{}
	}

	for n := 0; n < limit; {
		if err := ctx.Err(); err != nil {
			return Preview{}, err
		}
		record, err := imp.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Preview{}, readError("read row", err)
		}
		if isBlankRecord(record) {
			continue
		}
		line, _ := imp.reader.FieldPos(0)

		photo := c.emitter.Reconstruct(imp.layout, record)
		if err := checkPhoto(photo); err != nil {
			p.Failures = append(p.Failures, RowFailure{Row: n, Line: line, Reason: rowReason(err)})
		}
		p.Photos = append(p.Photos, photo)
		n++
	}

	return p, nil
}
