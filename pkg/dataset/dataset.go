// Package dataset reads and writes the two-column label tables exchanged by
// the training-data tools: one row per sample, with an image path and the
// text shown in that image.
//
// Tables are written as UTF-8 CSV with the header "image_path,text". They
// can be read from CSV or from the first sheet of an XLSX workbook, which is
// how hand-corrected labels usually come back from annotators.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column names of a label table
const (
	ColumnImagePath = "image_path"
	ColumnText      = "text"
)

// ErrMissingColumn is returned when a required column is absent from the header
var ErrMissingColumn = errors.New("column not found")

// Row is one labelled sample
type Row struct {
	ImagePath string // Path of the (cropped) image
	Text      string // Text shown in the image
}

// Field is one cell of a column. Null marks a row that is too short to
// have a value for the column at all, as opposed to an empty string.
type Field struct {
	Value string
	Null  bool
}

// Table is a header plus raw records, as read from disk
type Table struct {
	Header  []string
	Records [][]string
}

// Write writes rows as CSV with a header row
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnImagePath, ColumnText}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.ImagePath, row.Text}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes rows to a CSV file at path, replacing any existing file.
// The parent directory must exist.
func WriteCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// ReadTable loads a table from a .csv or .xlsx file
func ReadTable(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	default:
		return readCSV(path)
	}
}

func readCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1 // short rows are reported as null fields

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: file is empty or has no header", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read header: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	table := &Table{Header: header}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		table.Records = append(table.Records, record)
	}
	return table, nil
}

func readXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read sheet %q: %w", path, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: sheet %q has no header", path, sheets[0])
	}
	return &Table{Header: rows[0], Records: rows[1:]}, nil
}

// Index returns the position of a column in the header
func (t *Table) Index(name string) (int, error) {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
}

// Column returns every value of the named column in record order
func (t *Table) Column(name string) ([]Field, error) {
	idx, err := t.Index(name)
	if err != nil {
		return nil, err
	}
	fields := make([]Field, len(t.Records))
	for i, record := range t.Records {
		if idx >= len(record) {
			fields[i] = Field{Null: true}
			continue
		}
		fields[i] = Field{Value: record[idx]}
	}
	return fields, nil
}

// Rows returns the image_path and text columns as rows. Null cells become
// empty strings.
func (t *Table) Rows() ([]Row, error) {
	paths, err := t.Column(ColumnImagePath)
	if err != nil {
		return nil, err
	}
	texts, err := t.Column(ColumnText)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(t.Records))
	for i := range rows {
		rows[i] = Row{ImagePath: paths[i].Value, Text: texts[i].Value}
	}
	return rows, nil
}

// ReadRows loads a label table and returns its rows
func ReadRows(path string) ([]Row, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	rows, err := table.Rows()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
