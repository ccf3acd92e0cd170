// Package ingest turns an uploaded survey export into stored photos while
// streaming per-row outcomes back to the caller.
//
// An import has two stages. Coordinator.Open reads and classifies the header;
// anything wrong with the file itself fails here, before a single message has
// been written. Import.Run then reads data rows in batches, reconstructs and
// validates each row, persists the photos with bounded parallelism, and emits
// one progress message per batch followed by a final complete message.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/signsurvey/internal/logging"
	"github.com/JonMunkholm/signsurvey/internal/progress"
	"github.com/JonMunkholm/signsurvey/internal/store"
	"github.com/JonMunkholm/signsurvey/internal/survey"
)

var (
	// ErrNoFile is returned when a request carries no export to import.
	ErrNoFile = errors.New("no file provided")

	// ErrEmptyFile is returned when the export has no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrNoRecognizedColumns is returned when no header column matches a
	// survey field.
	ErrNoRecognizedColumns = errors.New("no recognized survey columns in header")

	// ErrUploadRead marks failures reading the export itself, as opposed to
	// failures storing it.
	ErrUploadRead = errors.New("upload read failed")
)

const (
	DefaultBatchSize = 100
	DefaultWorkers   = 8
)

// Options tune a Coordinator.
type Options struct {
	// BatchSize is the number of data rows per progress message.
	BatchSize int
	// Workers bounds concurrent SavePhoto calls within a batch.
	Workers int
	// PhotoBaseURL derives photo links; see survey.Emitter.
	PhotoBaseURL string
}

// Coordinator runs imports against one Persister.
type Coordinator struct {
	persister store.Persister
	emitter   survey.Emitter
	batchSize int
	workers   int
	metrics   *Metrics
}

// NewCoordinator returns a Coordinator saving photos to p. metrics may be nil.
func NewCoordinator(p store.Persister, opts Options, metrics *Metrics) *Coordinator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Coordinator{
		persister: p,
		emitter:   survey.Emitter{PhotoBaseURL: opts.PhotoBaseURL},
		batchSize: opts.BatchSize,
		workers:   opts.Workers,
		metrics:   metrics,
	}
}

// Import is an export whose header has been read and classified.
type Import struct {
	ID string

	c       *Coordinator
	layout  survey.Layout
	reader  *csv.Reader
	counter *CountingReader
}

// Open reads the header row of r and classifies it. A non-nil error is a
// file-level failure and no row has been read.
func (c *Coordinator) Open(ctx context.Context, r io.Reader) (*Import, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, counter := WrapForStreaming(r)
	reader := newCSVReader(body)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, readError("read header", err)
	}

	layout := survey.Classify(header)
	if layout.Recognized() == 0 {
		return nil, ErrNoRecognizedColumns
	}

	return &Import{
		ID:      uuid.NewString(),
		c:       c,
		layout:  layout,
		reader:  reader,
		counter: counter,
	}, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// Layout returns the classified header.
func (imp *Import) Layout() survey.Layout {
	return imp.layout
}

// Summary describes a finished or interrupted import.
type Summary struct {
	ImportID     string        `json:"import_id"`
	Rows         int           `json:"rows"`
	Succeeded    int           `json:"succeeded"`
	Failed       int           `json:"failed"`
	Batches      int           `json:"batches"`
	Bytes        int64         `json:"bytes"`
	Duration     time.Duration `json:"duration"`
	Unrecognized []string      `json:"unrecognized_columns"`
	Complete     bool          `json:"complete"`
}

// Run processes every remaining row and reports through emit: one progress
// message per batch, then one complete message holding every row result in
// input order. A read error, cancellation of ctx, or an emit error stops the
// import without a complete message and is returned.
func (imp *Import) Run(ctx context.Context, emit func(progress.Message) error) (Summary, error) {
	ctx = logging.WithImportID(ctx, imp.ID)
	logger := logging.FromContext(ctx)
	started := time.Now()

	summary := Summary{ImportID: imp.ID, Unrecognized: imp.layout.Unrecognized}
	imp.c.metrics.importStarted(len(imp.layout.Unrecognized))

	finish := func(err error) (Summary, error) {
		summary.Bytes = imp.counter.BytesRead()
		summary.Duration = time.Since(started)
		outcome := OutcomeComplete
		if err != nil {
			outcome = OutcomeIncomplete
		}
		imp.c.metrics.importFinished(outcome, started, summary.Bytes)
		return summary, err
	}

	if len(imp.layout.Unrecognized) > 0 {
		logger.Debug("ignoring unrecognized columns", "columns", imp.layout.Unrecognized)
	}

	all := make([]progress.Result, 0, imp.c.batchSize)
	batch := make([]row, 0, imp.c.batchSize)

	flush := func() error {
		results, err := imp.processBatch(ctx, batch)
		if err != nil {
			return err
		}
		batch = batch[:0]

		succeeded, failed := progress.Message{Results: results}.Counts()
		summary.Batches++
		summary.Rows += len(results)
		summary.Succeeded += succeeded
		summary.Failed += failed
		all = append(all, results...)

		if err := emit(progress.Message{Type: progress.TypeProgress, Results: results}); err != nil {
			return fmt.Errorf("emit progress: %w", err)
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		record, err := imp.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return finish(readError("read row", err))
		}
		if isBlankRecord(record) {
			continue
		}

		line, _ := imp.reader.FieldPos(0)
		batch = append(batch, row{line: line, cells: record})
		if len(batch) == imp.c.batchSize {
			if err := flush(); err != nil {
				return finish(err)
			}
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return finish(err)
		}
	}

	if err := emit(progress.Message{Type: progress.TypeComplete, Results: all}); err != nil {
		return finish(fmt.Errorf("emit complete: %w", err))
	}
	summary.Complete = true

	logger.Info("import completed",
		"rows", summary.Rows,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"batches", summary.Batches,
	)
	return finish(nil)
}

type row struct {
	line  int
	cells []string
}

// processBatch reconstructs, validates and persists one batch. Photos that
// share a custom_id are saved by a single task in input order, so no two
// concurrent SavePhoto calls touch the same key and the last row wins.
// Results are written by index and are therefore in input order.
func (imp *Import) processBatch(ctx context.Context, rows []row) ([]progress.Result, error) {
	logger := logging.FromContext(ctx)
	started := time.Now()

	results := make([]progress.Result, len(rows))
	photos := make([]survey.Photo, len(rows))

	fail := func(i int, err error) {
		results[i] = progress.Failed(rowReason(err))
		imp.c.metrics.rowFailed(MapError(err).Code)
		logger.Debug("row failed", "line", rows[i].line, "error", err)
	}

	var keys []string
	groups := make(map[string][]int)
	for i, r := range rows {
		photo := imp.c.emitter.Reconstruct(imp.layout, r.cells)
		if err := checkPhoto(photo); err != nil {
			fail(i, err)
			continue
		}
		key := strings.TrimSpace(photo.CustomID)
		photos[i] = photo
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imp.c.workers)
	for _, key := range keys {
		indices := groups[key]
		g.Go(func() error {
			for _, i := range indices {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := imp.c.persister.SavePhoto(gctx, photos[i]); err != nil {
					fail(i, err)
					continue
				}
				results[i] = progress.Succeeded()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	succeeded, failed := progress.Message{Results: results}.Counts()
	imp.c.metrics.batchDone(started, succeeded, failed)
	return results, nil
}

// checkPhoto applies the record rules and requires a storage key.
func checkPhoto(photo survey.Photo) error {
	if err := survey.Validate(photo); err != nil {
		return err
	}
	if strings.TrimSpace(photo.CustomID) == "" {
		return store.ErrMissingKey
	}
	return nil
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUploadRead, err)
}
