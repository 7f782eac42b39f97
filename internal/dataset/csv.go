package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadCSV reads a table whose first record is the header. Every record
// must have as many fields as the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := New(header...)
	if len(t.columns) != len(header) {
		return nil, fmt.Errorf("dataset: duplicate column in header %v", header)
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		t.AppendRow(rec...)
	}
	return t, nil
}

func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteCSV writes the header and every row. NA cells are written empty.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.columns); err != nil {
		return err
	}

	row := make([]string, len(t.columns))
	for i := 0; i < t.rows; i++ {
		for j, c := range t.columns {
			cell := t.cells[c][i]
			if IsNA(cell) {
				cell = ""
			}
			row[j] = cell
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the table to path, creating parent directories.
func (t *Table) SaveCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
