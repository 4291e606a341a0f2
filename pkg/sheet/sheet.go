package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dmitrymomot/mailmerge/pkg/merge"
)

// Source provides the header row and the data rows of a dataset.
type Source interface {
	Headers(ctx context.Context) ([]string, error)
	Rows(ctx context.Context) ([][]merge.Value, error)
}

// Opener resolves a dataset name to a Source.
type Opener interface {
	Open(ctx context.Context, name string) (Source, error)
}

// Lister is implemented by openers that can enumerate their datasets.
type Lister interface {
	Names(ctx context.Context) ([]string, error)
}

// Table is a fully loaded dataset.
type Table struct {
	headers []string
	rows    [][]merge.Value
}

// NewTable builds a Table from already typed rows.
func NewTable(headers []string, rows [][]merge.Value) *Table {
	return &Table{headers: headers, rows: rows}
}

func (t *Table) Headers(context.Context) ([]string, error) {
	return t.headers, nil
}

func (t *Table) Rows(context.Context) ([][]merge.Value, error) {
	return t.rows, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// ReadCSV loads a CSV dataset. Rows may be shorter or longer than the header;
// the engine reads missing cells as empty.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &Table{headers: header}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		row := make([]merge.Value, len(record))
		for i, raw := range record {
			row[i] = merge.ParseValue(raw)
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}

// fileName validates a dataset name and adds the default extension.
func fileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "\\") {
		return "", ErrInvalidName
	}
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidName
	}
	if path.Ext(clean) == "" {
		clean += ".csv"
	}
	return clean, nil
}
