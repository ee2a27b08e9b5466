package hocr

import (
	"strings"
)

// FindAll returns all descendants of e (not e itself) whose kind is one of
// kinds, in document order. Matching does not stop descent, so nested
// matches are returned as well.
func (e *Element) FindAll(kinds ...Kind) []*Element {
	var found []*Element
	var walk func(*Element)
	walk = func(n *Element) {
		for _, c := range n.Children {
			for _, k := range kinds {
				if c.Kind == k {
					found = append(found, c)
					break
				}
			}
			walk(c)
		}
	}
	walk(e)
	return found
}

// Lines returns every text line and section header in the document, in
// document order. These are the regions that become training samples.
func (d *Document) Lines() []*Element {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.FindAll(KindLine, KindHeader)
}

// Pages returns every 'ocr_page' element in the document
func (d *Document) Pages() []*Element {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.FindAll(KindPage)
}

// Words returns the 'ocrx_word' descendants of the element
func (e *Element) Words() []*Element {
	return e.FindAll(KindWord)
}

// TextContent gets all text from an element and its children.
// Text nodes are concatenated as they are, whitespace included.
func (e *Element) TextContent() string {
	if e.Kind == KindText {
		return e.Text
	}

	var builder strings.Builder
	e.writeText(&builder)
	return builder.String()
}

func (e *Element) writeText(builder *strings.Builder) {
	if e.Kind == KindText {
		builder.WriteString(e.Text)
		return
	}
	for _, c := range e.Children {
		c.writeText(builder)
	}
}

// LineText derives the text of a line element.
// Word texts are joined with single spaces; a line without word children
// falls back to its own text. Internal whitespace runs are collapsed to one
// space and the result is trimmed.
func LineText(line *Element) string {
	var text string
	if words := line.Words(); len(words) > 0 {
		parts := make([]string, 0, len(words))
		for _, word := range words {
			parts = append(parts, word.TextContent())
		}
		text = strings.Join(parts, " ")
	} else {
		text = line.TextContent()
	}
	return collapseSpace(text)
}

// collapseSpace replaces whitespace runs with a single space and trims
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ExtractText extracts all line text from a document, one line per row,
// with a blank line between pages.
func ExtractText(doc *Document) string {
	var builder strings.Builder

	pages := doc.Pages()
	if len(pages) == 0 && doc.Root != nil {
		pages = []*Element{doc.Root}
	}

	for _, page := range pages {
		for _, line := range page.FindAll(KindLine, KindHeader) {
			if text := LineText(line); text != "" {
				builder.WriteString(text)
				builder.WriteString("\n")
			}
		}

		// Add a page break
		builder.WriteString("\n")
	}

	return builder.String()
}
