// Package source loads the input datasets: the parcel registry, the prior
// model run, the land-use survey, the polygon reference layers, the public
// parcels artifact and the transit stop sets.
package source

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Record is one CSV row addressed by column name. Column names are matched
// exactly: some sources carry columns that differ only by case.
type Record struct {
	index  map[string]int
	fields []string
}

// Get returns the trimmed value of col, or "" when the column is absent or
// the row is short.
func (r Record) Get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// Has reports whether the source header carries col.
func (r Record) Has(col string) bool {
	_, ok := r.index[col]
	return ok
}

// StreamRecords reads a headed CSV and sends each data row as a Record.
// The header must contain every column in required. Both channels are
// closed when processing completes; at most one error is sent.
func StreamRecords(ctx context.Context, r io.Reader, required ...string) (<-chan Record, <-chan error) {
	recCh := make(chan Record, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(recCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1 // allow variable fields
		reader.LazyQuotes = true

		header, err := reader.Read()
		if err == io.EOF {
			errCh <- eris.New("csv: missing header")
			return
		}
		if err != nil {
			errCh <- eris.Wrap(err, "csv: read header")
			return
		}
		index := make(map[string]int, len(header))
		for i, h := range header {
			h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
			if _, dup := index[h]; !dup {
				index[h] = i
			}
		}
		for _, col := range required {
			if _, ok := index[col]; !ok {
				errCh <- eris.Errorf("csv: required column %q not found", col)
				return
			}
		}

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			fields, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			select {
			case recCh <- Record{index: index, fields: fields}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return recCh, errCh
}

// ReadRecords opens path and calls fn for every row in file order. An error
// from fn stops the read and is returned as is.
func ReadRecords(ctx context.Context, path string, fn func(Record) error, required ...string) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "source: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recCh, errCh := StreamRecords(ctx, f, required...)
	for rec := range recCh {
		if err := fn(rec); err != nil {
			cancel()
			for range recCh {
			}
			return err
		}
	}
	if err := <-errCh; err != nil {
		return eris.Wrapf(err, "source: read %s", path)
	}
	return nil
}
