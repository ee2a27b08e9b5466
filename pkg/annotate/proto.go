package annotate

import (
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/ocrtrain/pkg/hocr"
)

// HOCRFromProto converts a Document AI response to an hOCR document.
//
// Blocks become 'ocr_carea', paragraphs 'ocr_par', lines 'ocr_line' and
// tokens 'ocrx_word'. Containment is decided by text anchors. Paragraphs
// outside every block and lines outside every paragraph are attached to
// the page directly so no recognized text is lost.
func HOCRFromProto(doc *documentaipb.Document) *hocr.Document {
	lang := documentLanguage(doc)
	if lang == "" {
		lang = "unknown"
	}

	out := hocr.NewDocument("Document OCR", lang, "Document AI OCR")
	out.Metadata["ocr-number-of-pages"] = strconv.Itoa(len(doc.GetPages()))
	out.Metadata["ocr-langs"] = lang

	// Text anchors index code points of the full text
	text := []rune(doc.GetText())
	for i, page := range doc.GetPages() {
		pageNumber := int(page.GetPageNumber())
		if pageNumber == 0 {
			pageNumber = i + 1
		}
		out.Root.Append(pageElement(page, text, pageNumber))
	}
	return out
}

func pageElement(page *documentaipb.Document_Page, fullText []rune, pageNumber int) *hocr.Element {
	dim := page.GetDimension()
	ocrPage := layoutElement(hocr.KindPage, fmt.Sprintf("page_%d", pageNumber), page.GetLayout(), dim)
	if ocrPage.Title == "" && dim != nil {
		// Fall back to the full page
		ocrPage.Title = hocr.NewBoundingBox(0, 0, int(dim.Width), int(dim.Height)).String()
	}
	if langs := page.GetDetectedLanguages(); len(langs) > 0 {
		ocrPage.Lang = langs[0].GetLanguageCode()
	}

	// Track which lines are assigned to avoid duplication
	assigned := make(map[string]bool)

	paragraph := func(pidx int, para *documentaipb.Document_Page_Paragraph, id string, blockIdx int) *hocr.Element {
		ocrPar := layoutElement(hocr.KindParagraph, id, para.GetLayout(), dim)
		for lidx, line := range page.GetLines() {
			if !isElementInParent(line.GetLayout(), para.GetLayout()) {
				continue
			}
			assigned[layoutKey(line.GetLayout())] = true
			ocrPar.Append(lineElement(line, page, fullText, pageNumber, blockIdx, pidx, lidx))
		}
		return ocrPar
	}

	for aidx, block := range page.GetBlocks() {
		ocrArea := layoutElement(hocr.KindArea, fmt.Sprintf("carea_%d_%d", pageNumber, aidx), block.GetLayout(), dim)
		for pidx, para := range page.GetParagraphs() {
			if !isElementInParent(para.GetLayout(), block.GetLayout()) {
				continue
			}
			ocrArea.Append(paragraph(pidx, para, fmt.Sprintf("par_%d_%d_%d", pageNumber, aidx, pidx), aidx))
		}
		ocrPage.Append(ocrArea)
	}

	// Paragraphs not inside any block
	for pidx, para := range page.GetParagraphs() {
		inBlock := false
		for _, block := range page.GetBlocks() {
			if isElementInParent(para.GetLayout(), block.GetLayout()) {
				inBlock = true
				break
			}
		}
		if !inBlock {
			ocrPage.Append(paragraph(pidx, para, fmt.Sprintf("par_%d_direct_%d", pageNumber, pidx), 0))
		}
	}

	// Lines not inside any paragraph
	for lidx, line := range page.GetLines() {
		if !assigned[layoutKey(line.GetLayout())] {
			ocrPage.Append(lineElement(line, page, fullText, pageNumber, 0, 0, lidx))
		}
	}

	return ocrPage
}

// lineElement converts a proto line and the tokens it contains
func lineElement(line *documentaipb.Document_Page_Line, page *documentaipb.Document_Page,
	fullText []rune, pageNum, blockIdx, paraIdx, lineIdx int) *hocr.Element {

	dim := page.GetDimension()
	ocrLine := layoutElement(hocr.KindLine, fmt.Sprintf("line_%d_%d_%d_%d", pageNum, blockIdx, paraIdx, lineIdx), line.GetLayout(), dim)
	if langs := line.GetDetectedLanguages(); len(langs) > 0 {
		ocrLine.Lang = langs[0].GetLanguageCode()
	}

	for tidx, token := range page.GetTokens() {
		if !isElementInParent(token.GetLayout(), line.GetLayout()) {
			continue
		}

		text := cleanTokenText(textFromLayout(token.GetLayout(), fullText))
		if text == "" {
			continue
		}

		word := layoutElement(hocr.KindWord, fmt.Sprintf("word_%d_%d_%d_%d_%d", pageNum, blockIdx, paraIdx, lineIdx, tidx), token.GetLayout(), dim)
		if layout := token.GetLayout(); layout != nil {
			conf := fmt.Sprintf("x_wconf %d", int(layout.GetConfidence()*100+0.5))
			if word.Title == "" {
				word.Title = conf
			} else {
				word.Title += "; " + conf
			}
		}
		if langs := token.GetDetectedLanguages(); len(langs) > 0 {
			word.Lang = langs[0].GetLanguageCode()
		}

		ocrLine.Append(word.Append(hocr.NewText(text)))
	}

	return ocrLine
}

// cleanTokenText flattens a token's text to a single trimmed word
func cleanTokenText(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}

// layoutElement creates an element with the pixel bounding box of layout.
// The title is left empty when the layout has no usable bounding polygon.
func layoutElement(kind hocr.Kind, id string, layout *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) *hocr.Element {
	box, ok := pixelBox(layout, dim)
	el := hocr.NewElement(kind, id, box)
	if !ok {
		el.Title = ""
	}
	return el
}

// pixelBox converts Document AI coordinates to hOCR coordinates.
// Takes normalized vertices (0-1) and scales them to actual pixel dimensions
func pixelBox(layout *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) (hocr.BoundingBox, bool) {
	vertices := layout.GetBoundingPoly().GetNormalizedVertices()
	if dim == nil || len(vertices) < 4 {
		return hocr.BoundingBox{}, false
	}
	return hocr.NewBoundingBox(
		int(vertices[0].X*dim.Width+0.5),
		int(vertices[0].Y*dim.Height+0.5),
		int(vertices[2].X*dim.Width+0.5),
		int(vertices[2].Y*dim.Height+0.5),
	), true
}

// documentLanguage finds the most common language in the document
// by counting language occurrences across pages and tokens
func documentLanguage(doc *documentaipb.Document) string {
	langCount := make(map[string]int)
	for _, page := range doc.GetPages() {
		for _, lang := range page.GetDetectedLanguages() {
			langCount[lang.GetLanguageCode()]++
		}
		for _, token := range page.GetTokens() {
			for _, lang := range token.GetDetectedLanguages() {
				langCount[lang.GetLanguageCode()]++
			}
		}
	}

	var mostCommon string
	var highest int
	for lang, count := range langCount {
		// Ties go to the alphabetically first code so output is stable
		if count > highest || (count == highest && lang < mostCommon) {
			highest = count
			mostCommon = lang
		}
	}
	return mostCommon
}

// isElementInParent reports whether the first text segment of element lies
// within the first text segment of parent
func isElementInParent(element, parent *documentaipb.Document_Page_Layout) bool {
	elementSegs := element.GetTextAnchor().GetTextSegments()
	parentSegs := parent.GetTextAnchor().GetTextSegments()
	if len(elementSegs) == 0 || len(parentSegs) == 0 {
		return false
	}
	return elementSegs[0].GetStartIndex() >= parentSegs[0].GetStartIndex() &&
		elementSegs[0].GetEndIndex() <= parentSegs[0].GetEndIndex()
}

// layoutKey identifies a layout by its first text segment
func layoutKey(layout *documentaipb.Document_Page_Layout) string {
	segs := layout.GetTextAnchor().GetTextSegments()
	if len(segs) == 0 {
		return ""
	}
	return fmt.Sprintf("%d-%d", segs[0].GetStartIndex(), segs[0].GetEndIndex())
}

// textFromLayout extracts text from a layout's text anchor segments
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText []rune) string {
	var builder strings.Builder
	for _, seg := range layout.GetTextAnchor().GetTextSegments() {
		start := max(int(seg.GetStartIndex()), 0)
		end := min(int(seg.GetEndIndex()), len(fullText))
		if start > end {
			start = end
		}
		builder.WriteString(string(fullText[start:end]))
	}
	return builder.String()
}
