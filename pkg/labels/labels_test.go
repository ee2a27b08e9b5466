package labels

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gardar/ocrtrain/pkg/dataset"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func writeTable(t *testing.T, path string, rows []dataset.Row) {
	t.Helper()
	if err := dataset.WriteCSV(path, rows); err != nil {
		t.Fatal(err)
	}
}

func TestJoinSidecars(t *testing.T) {
	dir := t.TempDir()
	imgs := filepath.Join(dir, "imgs")
	writeFile(t, filepath.Join(imgs, "a.png"), "x")
	writeFile(t, filepath.Join(imgs, "a_text.txt"), "  from text sidecar \n")
	writeFile(t, filepath.Join(imgs, "a.txt"), "plain sidecar")
	writeFile(t, filepath.Join(imgs, "b.JPG"), "x")
	writeFile(t, filepath.Join(imgs, "b_text.txt"), "   \n")
	writeFile(t, filepath.Join(imgs, "b.txt"), "fallback")
	writeFile(t, filepath.Join(imgs, "c.gif"), "x")
	writeFile(t, filepath.Join(imgs, "notes.md"), "ignored")
	writeFile(t, filepath.Join(imgs, "sub", "d.png"), "x")
	writeFile(t, filepath.Join(imgs, "sub", "d.txt"), "not visited")

	out := filepath.Join(dir, "out", "labels.csv")
	res, err := JoinSidecars(imgs, out, quietLogger())
	if err != nil {
		t.Fatalf("JoinSidecars: %v", err)
	}

	want := []dataset.Row{
		{ImagePath: filepath.Join(imgs, "a.png"), Text: "from text sidecar"},
		{ImagePath: filepath.Join(imgs, "b.JPG"), Text: "fallback"},
	}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("rows = %v, want %v", res.Rows, want)
	}
	if res.Missing != 1 {
		t.Errorf("missing = %d, want 1", res.Missing)
	}

	got, err := dataset.ReadRows(out)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CSV rows = %v, want %v", got, want)
	}
}

func TestJoinSidecarsErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := JoinSidecars(filepath.Join(dir, "missing"), filepath.Join(dir, "o.csv"), quietLogger()); err == nil {
		t.Error("expected error for missing folder")
	}

	writeFile(t, filepath.Join(dir, "imgs", "a.png"), "x")
	_, err := JoinSidecars(filepath.Join(dir, "imgs"), filepath.Join(dir, "o.csv"), quietLogger())
	if !errors.Is(err, ErrNoPairs) {
		t.Errorf("err = %v, want ErrNoPairs", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "o.csv")); statErr == nil {
		t.Error("output written without pairs")
	}
}

func TestConvertCharacterFilter(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "labels.csv")
	writeTable(t, csvPath, []dataset.Row{
		{ImagePath: "l/1.png", Text: "Hello World"},
		{ImagePath: "l/2.png", Text: "hello world"},
		{ImagePath: "l/3.png", Text: "good day"},
		{ImagePath: "l/4.png", Text: "  "},
		{ImagePath: "", Text: "orphan"},
	})

	dict := "abcdefghijklmnopqrstuvwxyz\n"
	dict = strings.Join(strings.Split(strings.TrimSuffix(dict, "\n"), ""), "\n") + "\n \n"
	dictPath := filepath.Join(dir, "dict.txt")
	writeFile(t, dictPath, dict)

	outDir := filepath.Join(dir, "paddle")
	opts := DefaultConvertOptions()
	opts.CharDictPath = dictPath
	opts.TrainRatio = 0.5
	opts.Logger = quietLogger()

	res, err := Convert(csvPath, outDir, opts)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if res.FilteredByChars != 1 {
		t.Errorf("filtered by chars = %d, want 1", res.FilteredByChars)
	}
	if !reflect.DeepEqual(res.UnknownChars, []string{"H", "W"}) {
		t.Errorf("unknown = %q, want [H W]", res.UnknownChars)
	}
	if got := readFile(t, filepath.Join(outDir, UnknownCharsFile)); got != "H\nW\n" {
		t.Errorf("unknown file = %q", got)
	}

	if len(res.Train) != 1 || len(res.Eval) != 1 {
		t.Fatalf("split = %d/%d, want 1/1", len(res.Train), len(res.Eval))
	}
	all := append(append([]dataset.Row{}, res.Train...), res.Eval...)
	for _, row := range all {
		if row.Text == "Hello World" {
			t.Error("row with unknown characters kept")
		}
	}

	train := readFile(t, filepath.Join(outDir, TrainLabelFile))
	want := res.Train[0].ImagePath + "\t" + res.Train[0].Text + "\n"
	if train != want {
		t.Errorf("train file = %q, want %q", train, want)
	}
}

func TestConvertUnknownCharsPerRow(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "labels.csv")
	writeTable(t, csvPath, []dataset.Row{
		{ImagePath: "1.png", Text: "Hello"},
		{ImagePath: "2.png", Text: "World"},
		{ImagePath: "3.png", Text: "ok"},
		{ImagePath: "4.png", Text: "fine"},
	})
	dictPath := filepath.Join(dir, "dict.txt")
	writeFile(t, dictPath, "e\nl\no\nk\nf\ni\nn\nr\nd\n")

	opts := DefaultConvertOptions()
	opts.CharDictPath = dictPath
	opts.TrainRatio = 0.5
	opts.Logger = quietLogger()

	res, err := Convert(csvPath, dir, opts)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !reflect.DeepEqual(res.UnknownChars, []string{"H", "W"}) {
		t.Errorf("unknown = %q, want [H W]", res.UnknownChars)
	}
}

func TestConvertLengthFilterAndDeterminism(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "labels.csv")
	var rows []dataset.Row
	for _, text := range []string{"a", "bb", "ccc", "dddd", "ééééé", "f", "gg", "hhh", "iiii", "jjjjj", "k"} {
		rows = append(rows, dataset.Row{ImagePath: text + ".png", Text: text})
	}
	writeTable(t, csvPath, rows)

	opts := DefaultConvertOptions()
	opts.MaxTextLength = 4
	opts.Logger = quietLogger()

	first, err := Convert(csvPath, filepath.Join(dir, "one"), opts)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if first.FilteredByLength != 2 {
		t.Errorf("filtered by length = %d, want 2", first.FilteredByLength)
	}
	// floor(0.9 * 9) = 8
	if len(first.Train) != 8 || len(first.Eval) != 1 {
		t.Errorf("split = %d/%d, want 8/1", len(first.Train), len(first.Eval))
	}

	second, err := Convert(csvPath, filepath.Join(dir, "two"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Train, second.Train) || !reflect.DeepEqual(first.Eval, second.Eval) {
		t.Error("same seed produced different splits")
	}
}

func TestConvertErrors(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultConvertOptions()
	opts.Logger = quietLogger()

	blank := filepath.Join(dir, "blank.csv")
	writeTable(t, blank, []dataset.Row{{ImagePath: "a.png", Text: " "}})
	if _, err := Convert(blank, dir, opts); !errors.Is(err, ErrNoRows) {
		t.Errorf("blank rows: err = %v, want ErrNoRows", err)
	}

	single := filepath.Join(dir, "single.csv")
	writeTable(t, single, []dataset.Row{{ImagePath: "a.png", Text: "a"}})
	if _, err := Convert(single, dir, opts); err == nil {
		t.Error("expected error when the train split would be empty")
	}

	bad := opts
	bad.TrainRatio = 1
	if _, err := Convert(single, dir, bad); err == nil {
		t.Error("expected error for train ratio 1")
	}

	noText := filepath.Join(dir, "notext.csv")
	writeFile(t, noText, "image_path,label\na.png,x\n")
	if _, err := Convert(noText, dir, opts); !errors.Is(err, dataset.ErrMissingColumn) {
		t.Errorf("missing column: err = %v", err)
	}
}

func TestLoadCharDictKeepsSpace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.txt")
	writeFile(t, path, "a\r\n \r\n\nb")
	got, err := LoadCharDict(path)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"a": true, " ": true, "b": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dict = %v, want %v", got, want)
	}
}

func TestGenerateDictionary(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "labels.csv")
	writeFile(t, csvPath, "image_path,text\na.png,bca\nb.png,þá b\nc.png\n")

	out := filepath.Join(dir, "dict", "chars.txt")
	n, err := GenerateDictionary(csvPath, out, quietLogger())
	if err != nil {
		t.Fatalf("GenerateDictionary: %v", err)
	}
	if n != 6 {
		t.Errorf("chars = %d, want 6", n)
	}
	if got, want := readFile(t, out), " \na\nb\nc\ná\nþ\n"; got != want {
		t.Errorf("dictionary = %q, want %q", got, want)
	}
}

func TestGenerateDictionaryEmpty(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "labels.csv")
	writeFile(t, csvPath, "image_path,text\n")

	out := filepath.Join(dir, "chars.txt")
	n, err := GenerateDictionary(csvPath, out, quietLogger())
	if err != nil {
		t.Fatalf("GenerateDictionary: %v", err)
	}
	if n != 0 || readFile(t, out) != "" {
		t.Errorf("expected empty dictionary, got %d chars", n)
	}
}

func TestDiagnoseChars(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "labels.csv")
	writeFile(t, csvPath, "id,text,extra\n1,ba,x\n2\n3,ð,y\n")

	var buf bytes.Buffer
	diag, err := DiagnoseChars(csvPath, &buf, quietLogger())
	if err != nil {
		t.Fatalf("DiagnoseChars: %v", err)
	}
	if diag.Rows != 3 || diag.SkippedRows != 1 {
		t.Errorf("rows = %d skipped = %d, want 3 and 1", diag.Rows, diag.SkippedRows)
	}
	if got, want := buf.String(), "a\nb\nð\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	noText := filepath.Join(dir, "notext.csv")
	writeFile(t, noText, "image_path,label\n")
	if _, err := DiagnoseChars(noText, io.Discard, quietLogger()); !errors.Is(err, dataset.ErrMissingColumn) {
		t.Errorf("err = %v, want ErrMissingColumn", err)
	}
}

func TestMaxTextLength(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"basic", "image_path,text\na.png,a\nb.png,abc\nc.png,\n", 3},
		{"runes", "image_path,text\na.png,þórður\n", 6},
		{"null rows", "image_path,text\na.png,ab\nb.png\n", 2},
		{"no rows", "image_path,text\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".csv")
			writeFile(t, path, tt.content)
			got, err := MaxTextLength(path)
			if err != nil {
				t.Fatalf("MaxTextLength: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := MaxTextLength(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
