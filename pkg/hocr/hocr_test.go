package hocr

import (
	"strings"
	"testing"
)

const sampleHOCR = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en" lang="en">
 <head>
  <title>sample</title>
  <meta http-equiv="Content-Type" content="text/html;charset=utf-8"/>
  <meta name="ocr-system" content="tesseract 5.3.0"/>
 </head>
 <body>
  <div class="ocr_page" id="page_1" title="image &quot;page.png&quot;; bbox 0 0 200 100; ppageno 0">
   <div class="ocr_carea" id="block_1_1" title="bbox 10 10 190 90">
    <p class="ocr_par" id="par_1_1" title="bbox 10 10 190 90">
     <span class="ocr_header" id="line_1_1" title="bbox 10 10 60 30; baseline 0 -2">
      <span class="ocrx_word" id="word_1_1" title="bbox 10 10 30 30; x_wconf 96">Hello</span>
      <span class="ocrx_word" id="word_1_2" title="bbox 35 10 60 30; x_wconf 95">World</span>
     </span>
     <span class="ocr_line" id="line_1_2" title="bbox 10 40 120 60">
      <span class="ocrx_word" id="word_1_3" title="bbox 10 40 50 60">  spaced  </span>
      <span class="ocrx_word" id="word_1_4" title="bbox 55 40 80 60"></span>
      <span class="ocrx_word" id="word_1_5" title="bbox 85 40 120 60">out</span>
     </span>
     <span class="ocr_line" id="line_1_3" title="bbox 10 70 100 90">plain
        text   line</span>
    </p>
   </div>
  </div>
 </body>
</html>`

func TestParseFindsLinesInDocumentOrder(t *testing.T) {
	doc, err := Parse([]byte(sampleHOCR))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if doc.Title != "sample" {
		t.Errorf("Title = %q, want %q", doc.Title, "sample")
	}
	if doc.Language != "en" {
		t.Errorf("Language = %q, want %q", doc.Language, "en")
	}
	if got := doc.Metadata["ocr-system"]; got != "tesseract 5.3.0" {
		t.Errorf("ocr-system = %q", got)
	}

	lines := doc.Lines()
	wantIDs := []string{"line_1_1", "line_1_2", "line_1_3"}
	if len(lines) != len(wantIDs) {
		t.Fatalf("got %d lines, want %d", len(lines), len(wantIDs))
	}
	for i, id := range wantIDs {
		if lines[i].ID != id {
			t.Errorf("line %d ID = %q, want %q", i, lines[i].ID, id)
		}
	}
	if lines[0].Kind != KindHeader {
		t.Errorf("first line kind = %v, want %v", lines[0].Kind, KindHeader)
	}
	if pages := doc.Pages(); len(pages) != 1 {
		t.Errorf("got %d pages, want 1", len(pages))
	}
}

func TestLineText(t *testing.T) {
	doc, err := Parse([]byte(sampleHOCR))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	lines := doc.Lines()

	tests := []struct {
		name string
		line *Element
		want string
	}{
		{"words", lines[0], "Hello World"},
		{"whitespace and empty word", lines[1], "spaced out"},
		{"element text fallback", lines[2], "plain text line"},
		{"inline markup without words", parseLine(t, `<span class="ocr_line" title="bbox 1 1 50 20">Hello <em>World</em></span>`), "Hello World"},
		{"word split by inline markup", parseLine(t, `<span class="ocr_line" title="bbox 1 1 50 20"><span class="ocrx_word" title="bbox 1 1 20 20">Wor<b>ld</b></span> <span class="ocrx_word" title="bbox 25 1 50 20"><i>wide</i>&#160;</span></span>`), "World wide"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineText(tt.line)
			if got != tt.want {
				t.Errorf("LineText() = %q, want %q", got, tt.want)
			}
			if strings.Contains(got, "  ") || strings.TrimSpace(got) != got {
				t.Errorf("LineText() = %q has doubled or surrounding whitespace", got)
			}
		})
	}
}

func parseLine(t *testing.T, markup string) *Element {
	t.Helper()
	doc, err := Parse([]byte("<html><body>" + markup + "</body></html>"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	lines := doc.Lines()
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	return lines[0]
}

func TestParseWithoutLines(t *testing.T) {
	doc, err := Parse([]byte(`<html><body><div class="ocr_page" title="bbox 0 0 10 10"></div></body></html>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if lines := doc.Lines(); len(lines) != 0 {
		t.Errorf("got %d lines, want 0", len(lines))
	}
}

func TestKindFromClass(t *testing.T) {
	tests := []struct {
		class string
		want  Kind
	}{
		{"ocr_line", KindLine},
		{"ocr_header", KindHeader},
		{"ocrx_word", KindWord},
		{"custom ocr_line", KindLine},
		{"ocr_line_extra", KindOther},
		{"", KindOther},
	}
	for _, tt := range tests {
		if got := KindFromClass(tt.class); got != tt.want {
			t.Errorf("KindFromClass(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}

func TestParseBoundingBox(t *testing.T) {
	tests := []struct {
		title string
		want  BoundingBox
		ok    bool
	}{
		{"bbox 10 10 60 30", NewBoundingBox(10, 10, 60, 30), true},
		{"bbox 1 2 3 4; baseline 0.01 -3; x_size 20", NewBoundingBox(1, 2, 3, 4), true},
		{"image \"a.png\"; bbox  0   0  200 100", NewBoundingBox(0, 0, 200, 100), true},
		{"bbox 1 2 3", BoundingBox{}, false},
		{"bbox -1 2 3 4", BoundingBox{}, false},
		{"x_wconf 95", BoundingBox{}, false},
		{"", BoundingBox{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseBoundingBox(tt.title)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseBoundingBox(%q) = %v, %v; want %v, %v", tt.title, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBoundingBoxValid(t *testing.T) {
	tests := []struct {
		box  BoundingBox
		want bool
	}{
		{NewBoundingBox(10, 10, 60, 30), true},
		{NewBoundingBox(10, 10, 10, 30), false},
		{NewBoundingBox(60, 10, 10, 30), false},
		{NewBoundingBox(10, 30, 60, 30), false},
	}
	for _, tt := range tests {
		if got := tt.box.Valid(); got != tt.want {
			t.Errorf("%v.Valid() = %v, want %v", tt.box, got, tt.want)
		}
	}
}

func TestParseTitle(t *testing.T) {
	props := ParseTitle("bbox 100 200 300 400; x_wconf 95")
	if got := strings.Join(props["bbox"], " "); got != "100 200 300 400" {
		t.Errorf("bbox = %q", got)
	}
	if got := props["x_wconf"]; len(got) != 1 || got[0] != "95" {
		t.Errorf("x_wconf = %v", got)
	}
	if got := FormatTitle(NewBoundingBox(1, 2, 3, 4), "x_wconf 95"); got != "bbox 1 2 3 4; x_wconf 95" {
		t.Errorf("FormatTitle() = %q", got)
	}
}

func TestParseLatin1(t *testing.T) {
	data := []byte(`<html><head><meta http-equiv="Content-Type" content="text/html; charset=iso-8859-1"></head>` +
		`<body><span class="ocr_line" title="bbox 0 0 10 10">caf` + "\xe9" + `</span></body></html>`)
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	lines := doc.Lines()
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if got := LineText(lines[0]); got != "café" {
		t.Errorf("LineText() = %q, want %q", got, "café")
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	doc := NewDocument("generated", "en", "test")
	page := NewElement(KindPage, "page_1", NewBoundingBox(0, 0, 200, 100))
	line := NewElement(KindLine, "line_1_1", NewBoundingBox(10, 10, 60, 30))
	line.Append(
		NewElement(KindWord, "word_1_1", NewBoundingBox(10, 10, 30, 30)).Append(NewText("Fish & Chips")),
		NewElement(KindWord, "word_1_2", NewBoundingBox(35, 10, 60, 30)).Append(NewText("<ok>")),
	)
	doc.Root.Append(page.Append(line))

	out, err := GenerateHOCRDocument(doc)
	if err != nil {
		t.Fatalf("GenerateHOCRDocument failed: %v", err)
	}
	if !strings.Contains(out, "&amp;") || !strings.Contains(out, "&lt;ok&gt;") {
		t.Errorf("generated text is not escaped:\n%s", out)
	}

	parsed, err := Parse([]byte(out))
	if err != nil {
		t.Fatalf("Parse of generated hOCR failed: %v", err)
	}
	lines := parsed.Lines()
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if got := LineText(lines[0]); got != "Fish & Chips <ok>" {
		t.Errorf("LineText() = %q", got)
	}
	if box, ok := lines[0].BBox(); !ok || box != NewBoundingBox(10, 10, 60, 30) {
		t.Errorf("BBox() = %v, %v", box, ok)
	}
	if parsed.Metadata["ocr-system"] != "test" {
		t.Errorf("ocr-system = %q", parsed.Metadata["ocr-system"])
	}
}

func TestExtractText(t *testing.T) {
	doc, err := Parse([]byte(sampleHOCR))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := "Hello World\nspaced out\nplain text line\n\n"
	if got := ExtractText(doc); got != want {
		t.Errorf("ExtractText() = %q, want %q", got, want)
	}
}

func TestGenerateParsedDocument(t *testing.T) {
	doc, err := Parse([]byte(sampleHOCR))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	doc.Root.FindAll(KindParagraph)[0].Attrs = map[string]string{"dir": "ltr"}

	out, err := GenerateHOCRDocument(doc)
	if err != nil {
		t.Fatalf("GenerateHOCRDocument failed: %v", err)
	}
	for _, tag := range []string{"<html", "<head", "<body", "<title"} {
		if n := strings.Count(out, tag); n != 1 {
			t.Errorf("found %d %s tags, want 1:\n%s", n, tag, out)
		}
	}
	if strings.Contains(out, "<meta></meta>") || strings.Contains(out, "</meta>") {
		t.Errorf("meta written without attributes:\n%s", out)
	}
	if !strings.Contains(out, `dir="ltr"`) {
		t.Errorf("extra attributes were dropped:\n%s", out)
	}

	again, err := Parse([]byte(out))
	if err != nil {
		t.Fatalf("Parse of generated hOCR failed: %v", err)
	}
	if again.Metadata["ocr-system"] != "tesseract 5.3.0" {
		t.Errorf("ocr-system = %q", again.Metadata["ocr-system"])
	}
	if again.Title != "sample" {
		t.Errorf("Title = %q", again.Title)
	}
	if got, want := ExtractText(again), ExtractText(doc); got != want {
		t.Errorf("ExtractText() = %q, want %q", got, want)
	}

	before, after := doc.Lines(), again.Lines()
	if len(after) != len(before) {
		t.Fatalf("got %d lines, want %d", len(after), len(before))
	}
	for i := range before {
		wantBox, _ := before[i].BBox()
		gotBox, ok := after[i].BBox()
		if !ok || gotBox != wantBox || after[i].ID != before[i].ID || after[i].Kind != before[i].Kind {
			t.Errorf("line %d = %s %v %v, want %s %v %v", i, after[i].ID, after[i].Kind, gotBox, before[i].ID, before[i].Kind, wantBox)
		}
	}
	if words := again.Root.FindAll(KindWord); len(words) != 5 || words[0].Title != "bbox 10 10 30 30; x_wconf 96" {
		t.Errorf("words were not preserved: %d", len(words))
	}
}
