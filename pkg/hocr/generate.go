package hocr

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"sort"
	"text/template"
)

//go:embed templates/hocr.tmpl
var templateFS embed.FS

// GenerateHOCRDocument creates an hOCR HTML document from a Document
// Uses the embedded template to generate a complete HTML document
func GenerateHOCRDocument(doc *Document) (string, error) {
	if doc == nil || doc.Root == nil {
		return "", fmt.Errorf("hOCR document is empty")
	}

	// Set up the template with helper functions
	tmpl, err := template.New("hocr.tmpl").Funcs(template.FuncMap{
		"esc":      html.EscapeString,
		"metaKeys": sortedKeys,
		"isText":   func(e *Element) bool { return e.Kind == KindText },
		"isVoid":   isVoid,
	}).ParseFS(templateFS, "templates/hocr.tmpl")
	if err != nil {
		return "", fmt.Errorf("error parsing hOCR template: %w", err)
	}

	// Render the template with the hOCR data
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("error rendering hOCR template: %w", err)
	}

	return buf.String(), nil
}

// isVoid reports whether an element is written without a closing tag
func isVoid(tag string) bool {
	switch tag {
	case "area", "br", "col", "embed", "hr", "img", "input", "link", "meta", "source", "wbr":
		return true
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewDocument creates an empty document ready for pages to be appended to
// its Root. Root's children become the contents of <body> when generated.
func NewDocument(title, lang, system string) *Document {
	return &Document{
		Title:    title,
		Language: lang,
		Metadata: map[string]string{
			"ocr-system":       system,
			"ocr-capabilities": "ocr_page ocr_carea ocr_par ocr_line ocrx_word",
		},
		Root: &Element{},
	}
}
