package hocr

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// bboxPattern matches the four integer coordinates following the bbox keyword
var bboxPattern = regexp.MustCompile(`bbox\s+(\d+)\s+(\d+)\s+(\d+)\s+(\d+)`)

// Parse converts raw hOCR data into a Document.
// A document without any hOCR elements is not an error; it simply yields
// an empty set of lines.
func Parse(data []byte) (*Document, error) {
	decoded, err := decodeCharset(data)
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR markup: %w", err)
	}

	// Root holds the body so that generating a parsed document does not
	// nest a second html element inside the template's body
	body := root
	if node := findElement(root, "body"); node != nil {
		body = node
	}

	doc := &Document{
		Metadata: make(map[string]string),
		Root:     convertNode(body),
	}

	// Extract document metadata from the head section
	extractDocumentMeta(doc, root)

	return doc, nil
}

// decodeCharset converts the data to UTF-8 based on a declared charset.
// Unknown charset names fall back to ISO-8859-1, which never fails to decode.
func decodeCharset(data []byte) ([]byte, error) {
	name := declaredCharset(data)
	if name == "" || name == "utf-8" || name == "utf8" {
		return data, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		enc = charmap.ISO8859_1
	}
	if canonical, _ := htmlindex.Name(enc); canonical == "utf-8" {
		return data, nil
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return decoded, nil
}

// declaredCharset figures out the character encoding named in a meta tag
// or an XML declaration. It returns "" when nothing is declared.
func declaredCharset(data []byte) string {
	// Only the prologue is of interest
	head := data
	if len(head) > 2048 {
		head = head[:2048]
	}
	content := strings.ToLower(string(head))

	for _, marker := range []string{"charset=", "encoding="} {
		idx := strings.Index(content, marker)
		if idx < 0 {
			continue
		}
		rest := content[idx+len(marker):]
		fields := strings.FieldsFunc(rest, func(r rune) bool {
			return r == '"' || r == ';' || r == '\'' || r == '>' || r == ' ' || r == '?' || r == '/'
		})
		if len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

// convertNode builds the typed element tree from an html node
func convertNode(n *html.Node) *Element {
	var el *Element
	switch n.Type {
	case html.TextNode:
		return NewText(n.Data)
	case html.ElementNode:
		el = &Element{Tag: n.Data}
		for _, attr := range n.Attr {
			switch attr.Key {
			case "id":
				el.ID = attr.Val
			case "class":
				el.Class = attr.Val
				el.Kind = KindFromClass(attr.Val)
			case "title":
				el.Title = attr.Val
			case "lang", "xml:lang":
				el.Lang = attr.Val
			default:
				if el.Attrs == nil {
					el.Attrs = make(map[string]string)
				}
				el.Attrs[attr.Key] = attr.Val
			}
		}
	case html.DocumentNode:
		el = &Element{}
	default:
		// Comments, doctypes and the like carry no OCR content
		return nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := convertNode(c); child != nil {
			el.Children = append(el.Children, child)
		}
	}
	return el
}

// ParseTitle breaks down an hOCR title attribute into its components
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	parts := strings.Split(title, ";")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		items := strings.Fields(part)
		if len(items) > 0 {
			key := items[0]
			values := items[1:]
			result[key] = values
		}
	}

	return result
}

// FormatTitle builds a title attribute from a bounding box and extra
// properties, e.g. FormatTitle(box, "x_wconf 95") gives "bbox 1 2 3 4; x_wconf 95"
func FormatTitle(bbox BoundingBox, extra ...string) string {
	parts := append([]string{bbox.String()}, extra...)
	return strings.Join(parts, "; ")
}

// ParseBoundingBox extracts the bounding box from a title string.
// It returns false if the title has no bbox property with four
// non-negative integers.
func ParseBoundingBox(title string) (BoundingBox, bool) {
	if title == "" {
		return BoundingBox{}, false
	}
	match := bboxPattern.FindStringSubmatch(title)
	if match == nil {
		return BoundingBox{}, false
	}

	var coords [4]int
	for i := range coords {
		v, err := strconv.Atoi(match[i+1])
		if err != nil {
			// Out of range for int
			return BoundingBox{}, false
		}
		coords[i] = v
	}
	return NewBoundingBox(coords[0], coords[1], coords[2], coords[3]), true
}

// extractDocumentMeta extracts document-level metadata from the head section
func extractDocumentMeta(doc *Document, root *html.Node) {
	// Check for lang attribute on the html tag
	if htmlNode := findElement(root, "html"); htmlNode != nil {
		if lang := getAttrVal(htmlNode, "lang"); lang != "" {
			doc.Language = lang
		} else if lang := getAttrVal(htmlNode, "xml:lang"); lang != "" {
			doc.Language = lang
		}
	}

	head := findElement(root, "head")
	if head == nil {
		return
	}

	// Extract title, language and ocr-* metadata
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "title":
			if c.FirstChild != nil {
				doc.Title = c.FirstChild.Data
			}
		case "meta":
			name := getAttrVal(c, "name")
			content := getAttrVal(c, "content")
			if name == "" || content == "" {
				continue
			}
			if strings.HasPrefix(name, "ocr-") {
				doc.Metadata[name] = content
			} else if name == "dc.language" {
				doc.Language = content
			}
		}
	}
}

// findElement returns the first element with the given tag in document order
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// Get the value of a specific attribute from a node
func getAttrVal(n *html.Node, attrName string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrName {
			return attr.Val
		}
	}
	return ""
}
