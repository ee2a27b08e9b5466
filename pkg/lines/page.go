package lines

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gardar/ocrtrain/pkg/hocr"
)

// LineImageName is the file name of a cropped line:
// <page>_line_<ordinal>_<left>_<top>_<right>_<bottom>.png
func LineImageName(pageName string, ordinal int, box hocr.BoundingBox) string {
	return fmt.Sprintf("%s_line_%d_%d_%d_%d_%d.png", pageName, ordinal, box.X1, box.Y1, box.X2, box.Y2)
}

// ExtractPage crops every usable line of one page into lineDir and returns
// a record per saved crop.
//
// Problems with individual lines (empty text, missing or invalid bbox,
// crop or save failure) are logged and the line is skipped. An error is
// returned only when the page as a whole cannot be processed, in which
// case no records are produced.
func ExtractPage(page Page, lineDir string, logger *slog.Logger) ([]Record, error) {
	data, err := os.ReadFile(page.MarkupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read hOCR file: %w", err)
	}

	doc, err := hocr.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR file %s: %w", page.MarkupPath, err)
	}

	regions := doc.Lines()
	if len(regions) == 0 {
		logger.Debug("no line elements in hOCR", "hocr", page.MarkupPath)
		return nil, nil
	}

	// Decode the page once for all of its lines
	img, err := loadImage(page.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open page image for hOCR %s: %w", page.MarkupPath, err)
	}

	name := page.Name()
	var records []Record
	for i, region := range regions {
		text := hocr.LineText(region)
		if text == "" {
			continue
		}

		box, ok := region.BBox()
		if !ok {
			logger.Warn("could not parse bbox for line, skipping",
				"hocr", page.MarkupPath, "element", elementID(region))
			continue
		}
		if !box.Valid() {
			logger.Warn("invalid bbox coordinates, skipping line",
				"hocr", page.MarkupPath, "element", elementID(region), "bbox", box.String())
			continue
		}

		cropPath := filepath.Join(lineDir, LineImageName(name, i, box))
		if err := savePNG(CropImage(img, box), cropPath); err != nil {
			logger.Error("error cropping/saving line",
				"image", page.ImagePath, "element", elementID(region), "bbox", box.String(), "error", err)
			continue
		}

		records = append(records, Record{ImagePath: cropPath, Text: text})
	}

	logger.Debug("page processed", "image", page.ImagePath, "lines", len(regions), "records", len(records))
	return records, nil
}

func elementID(e *hocr.Element) string {
	if e.ID == "" {
		return "N/A"
	}
	return e.ID
}
