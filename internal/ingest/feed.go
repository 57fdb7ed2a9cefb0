// Package ingest adapts upstream record sources to the resolver's feed.
package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"rosterid/internal/identity/models"
	dErrors "rosterid/pkg/domain-errors"
)

// Feed yields raw records one at a time and returns io.EOF when drained.
//
// A CodeValidation error rejects only the current record; the caller may
// keep calling Next. Any other error ends the feed.
type Feed interface {
	Next(ctx context.Context) (models.RawRecord, error)
}

// SliceFeed serves an in-memory batch.
type SliceFeed struct {
	records []models.RawRecord
	pos     int
}

func NewSliceFeed(records []models.RawRecord) *SliceFeed {
	return &SliceFeed{records: records}
}

func (f *SliceFeed) Next(ctx context.Context) (models.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.RawRecord{}, err
	}
	if f.pos >= len(f.records) {
		return models.RawRecord{}, io.EOF
	}
	r := f.records[f.pos]
	f.pos++
	return r, nil
}

// maxLineBytes bounds one JSON line.
const maxLineBytes = 1 << 20

// JSONLinesFeed decodes one record per line. Blank lines are skipped.
type JSONLinesFeed struct {
	scanner *bufio.Scanner
	line    int
}

func NewJSONLinesFeed(r io.Reader) *JSONLinesFeed {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &JSONLinesFeed{scanner: scanner}
}

func (f *JSONLinesFeed) Next(ctx context.Context) (models.RawRecord, error) {
	for {
		if err := ctx.Err(); err != nil {
			return models.RawRecord{}, err
		}
		if !f.scanner.Scan() {
			if err := f.scanner.Err(); err != nil {
				return models.RawRecord{}, fmt.Errorf("read line %d: %w", f.line+1, err)
			}
			return models.RawRecord{}, io.EOF
		}
		f.line++
		line := strings.TrimSpace(f.scanner.Text())
		if line == "" {
			continue
		}
		var r models.RawRecord
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			return models.RawRecord{}, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("line %d is not a record", f.line))
		}
		return r, nil
	}
}

// PageFunc fetches the page at cursor. An empty next cursor marks the last page.
type PageFunc func(ctx context.Context, cursor string) (records []models.RawRecord, next string, err error)

// PagedFeed walks a paginated upstream lazily, one page at a time.
type PagedFeed struct {
	fetch  PageFunc
	cursor string
	page   []models.RawRecord
	done   bool
}

func NewPagedFeed(fetch PageFunc) *PagedFeed {
	return &PagedFeed{fetch: fetch}
}

func (f *PagedFeed) Next(ctx context.Context) (models.RawRecord, error) {
	for len(f.page) == 0 {
		if f.done {
			return models.RawRecord{}, io.EOF
		}
		records, next, err := f.fetch(ctx, f.cursor)
		if err != nil {
			return models.RawRecord{}, fmt.Errorf("fetch page %q: %w", f.cursor, err)
		}
		if next == "" || next == f.cursor {
			f.done = true
		}
		f.cursor = next
		f.page = records
	}
	r := f.page[0]
	f.page = f.page[1:]
	return r, nil
}

// Drain reads every record from feed. Records rejected with CodeValidation
// are counted, not returned.
func Drain(ctx context.Context, feed Feed) ([]models.RawRecord, int, error) {
	var (
		out      []models.RawRecord
		rejected int
	)
	for {
		r, err := feed.Next(ctx)
		switch {
		case errors.Is(err, io.EOF):
			return out, rejected, nil
		case dErrors.HasCode(err, dErrors.CodeValidation):
			rejected++
			continue
		case err != nil:
			return nil, rejected, err
		}
		out = append(out, r)
	}
}
