// Package csvio reads and writes tables as CSV.
//
// Input is streamed through BOM removal and UTF-8 sanitizing before
// parsing. Header cells are cleaned of spreadsheet artifacts, empty cells
// become nulls and every other cell stays a string; type inference is left
// to clean.InferTypes.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/tabkit/internal/clean"
	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
)

// ReadOptions configures Read.
type ReadOptions struct {
	// Index names the columns moved into the index, in order.
	Index []string
	// Comma is the field delimiter; zero means ','.
	Comma rune
	// MaxRows caps the data rows read; zero means no cap.
	MaxRows int
	// MaxBytes caps the input size; zero means no cap.
	MaxBytes int64
}

// Read parses CSV from r. The first record is the header.
func Read(r io.Reader, opts ReadOptions) (*frame.Frame, error) {
	cr := csv.NewReader(wrap(r, opts.MaxBytes))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return frame.MustNew(nil, nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make([]frame.Label, len(header))
	for i, h := range header {
		columns[i] = clean.CleanCell(h)
	}

	var rows [][]any
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if isEmptyRow(record) {
			continue
		}
		if opts.MaxRows > 0 && len(rows) >= opts.MaxRows {
			return nil, errs.Valuef("input exceeds %d rows", opts.MaxRows)
		}
		if len(record) > len(columns) {
			return nil, errs.New(errs.ErrShape, "line %d has %d fields, header has %d", line, len(record), len(columns))
		}
		row := make([]any, len(columns))
		for i, cell := range record {
			if cell != "" {
				row[i] = cell
			}
		}
		rows = append(rows, row)
	}

	f, err := frame.FromRows(columns, rows, nil)
	if err != nil {
		return nil, err
	}
	if len(opts.Index) > 0 {
		return f.SetIndex(frame.Labels(opts.Index...)...)
	}
	return f, nil
}

// ReadFile reads the CSV file at path.
func ReadFile(path string, opts ReadOptions) (*frame.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Read(fh, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func isEmptyRow(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteOptions configures Write.
type WriteOptions struct {
	// Index writes the index levels as leading columns. A named index is
	// always written.
	Index bool
	Comma rune
}

// Write renders f as CSV. Nulls are written as empty cells.
func Write(w io.Writer, f *frame.Frame, opts WriteOptions) error {
	cw := csv.NewWriter(w)
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}

	ix := f.Index()
	withIndex := opts.Index
	for _, n := range ix.Names() {
		if n != nil {
			withIndex = true
		}
	}

	var header []string
	if withIndex {
		for _, n := range f.ResetIndexNames() {
			header = append(header, frame.FormatLabel(n))
		}
	}
	for _, c := range f.Columns() {
		header = append(header, frame.FormatLabel(c))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for r := 0; r < f.Len(); r++ {
		record = record[:0]
		if withIndex {
			for _, v := range ix.Key(r) {
				record = append(record, cell(v))
			}
		}
		for _, v := range f.Row(r) {
			record = append(record, cell(v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes f to path, replacing any existing file.
func WriteFile(path string, f *frame.Frame, opts WriteOptions) (err error) {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fh.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(fh, f, opts)
}

func cell(v any) string {
	if frame.IsNull(v) {
		return ""
	}
	return frame.FormatCell(v)
}
