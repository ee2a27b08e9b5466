package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	rows := []Row{
		{ImagePath: "line_images/a.png", Text: "Hello, World"},
		{ImagePath: "line_images/b.png", Text: `say "hi"`},
	}
	if err := Write(&buf, rows); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "image_path,text\n" +
		"line_images/a.png,\"Hello, World\"\n" +
		"line_images/b.png,\"say \"\"hi\"\"\"\n"
	if got := buf.String(); got != want {
		t.Errorf("Write() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteCSVAndReadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.csv")
	rows := []Row{
		{ImagePath: "a.png", Text: "ünïcödé"},
		{ImagePath: "b.png", Text: "multi\nline"},
	}
	if err := WriteCSV(path, rows); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	got, err := ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
	}
}

func TestWriteCSVUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "labels.csv")
	if err := WriteCSV(path, nil); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}

func TestColumnNullFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.csv")
	data := "\ufeffimage_path,text\na.png,abc\nb.png\nc.png,\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	fields, err := table.Column(ColumnText)
	if err != nil {
		t.Fatalf("Column failed: %v", err)
	}
	want := []Field{{Value: "abc"}, {Null: true}, {Value: ""}}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields, want %d", len(fields), len(want))
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, fields[i], want[i])
		}
	}

	if _, err := table.Column("label"); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("Column(label) error = %v, want ErrMissingColumn", err)
	}
}

func TestReadTableEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadTable(path); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range [][]interface{}{
		{"text", "image_path"},
		{"first line", "a.png"},
		{"second line", "b.png"},
	} {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	f.Close()

	rows, err := ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	want := []Row{{ImagePath: "a.png", Text: "first line"}, {ImagePath: "b.png", Text: "second line"}}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}
