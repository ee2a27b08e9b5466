package hocr

import (
	"image"
	"strconv"
	"strings"
)

// Kind identifies the hOCR class of an element
type Kind int

const (
	KindOther     Kind = iota // Element without a recognized hOCR class
	KindText                  // Text node
	KindPage                  // 'ocr_page'
	KindArea                  // 'ocr_carea'
	KindParagraph             // 'ocr_par'
	KindLine                  // 'ocr_line'
	KindHeader                // 'ocr_header'
	KindWord                  // 'ocrx_word'
)

var kindClasses = map[Kind]string{
	KindPage:      "ocr_page",
	KindArea:      "ocr_carea",
	KindParagraph: "ocr_par",
	KindLine:      "ocr_line",
	KindHeader:    "ocr_header",
	KindWord:      "ocrx_word",
}

var classKinds = map[string]Kind{
	"ocr_page":   KindPage,
	"ocr_carea":  KindArea,
	"ocr_par":    KindParagraph,
	"ocr_line":   KindLine,
	"ocr_header": KindHeader,
	"ocrx_word":  KindWord,
}

var kindTags = map[Kind]string{
	KindPage:      "div",
	KindArea:      "div",
	KindParagraph: "p",
	KindLine:      "span",
	KindHeader:    "span",
	KindWord:      "span",
}

// Class returns the hOCR class name for the kind, or "" for KindOther and KindText
func (k Kind) Class() string { return kindClasses[k] }

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindOther:
		return "other"
	}
	return kindClasses[k]
}

// KindFromClass maps a class attribute value to a Kind.
// The attribute may hold several space separated class names; the first
// recognized hOCR class wins.
func KindFromClass(class string) Kind {
	for _, name := range strings.Fields(class) {
		if kind, ok := classKinds[name]; ok {
			return kind
		}
	}
	return KindOther
}

// Document represents a parsed hOCR document
type Document struct {
	Title    string            // Document title from <title>
	Language string            // Document language
	Metadata map[string]string // ocr-system, ocr-capabilities, ...
	Root     *Element          // Root of the element tree
}

// Element is one node of the hOCR tree.
// Text nodes have Kind KindText and only the Text field set.
type Element struct {
	Kind     Kind              // hOCR kind derived from Class
	Tag      string            // HTML tag name
	ID       string            // id attribute
	Class    string            // Raw class attribute
	Title    string            // Raw title attribute (bbox and other properties)
	Lang     string            // lang attribute
	Attrs    map[string]string // All other attributes
	Children []*Element        // Child nodes in document order
	Text     string            // Text content of a text node
}

// NewElement creates an element of the given kind with its default tag and class
func NewElement(kind Kind, id string, bbox BoundingBox) *Element {
	return &Element{
		Kind:  kind,
		Tag:   kindTags[kind],
		ID:    id,
		Class: kind.Class(),
		Title: bbox.String(),
	}
}

// NewText creates a text node
func NewText(text string) *Element {
	return &Element{Kind: KindText, Text: text}
}

// Append adds children to the element and returns it
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// BBox parses the element's bounding box from its title attribute
func (e *Element) BBox() (BoundingBox, bool) {
	return ParseBoundingBox(e.Title)
}

// BoundingBox is an integer pixel rectangle in hOCR convention:
// X1,Y1 is the top-left corner (inclusive), X2,Y2 the bottom-right (exclusive).
type BoundingBox struct {
	X1 int // Left coordinate
	Y1 int // Top coordinate
	X2 int // Right coordinate
	Y2 int // Bottom coordinate
}

// NewBoundingBox creates a bounding box from coordinates
func NewBoundingBox(x1, y1, x2, y2 int) BoundingBox {
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Valid reports whether left < right and top < bottom
func (b BoundingBox) Valid() bool {
	return b.X1 < b.X2 && b.Y1 < b.Y2
}

func (b BoundingBox) Width() int  { return b.X2 - b.X1 }
func (b BoundingBox) Height() int { return b.Y2 - b.Y1 }

// Rect converts the box to an image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// String formats the box as an hOCR title property, e.g. "bbox 10 10 60 30"
func (b BoundingBox) String() string {
	return "bbox " + strconv.Itoa(b.X1) + " " + strconv.Itoa(b.Y1) + " " +
		strconv.Itoa(b.X2) + " " + strconv.Itoa(b.Y2)
}
