// Package proofsheet renders a line dataset as a PDF for proofreading.
//
// Each row of the dataset is drawn as its cropped line image with the label
// text underneath, so a proofreader can page through the sheet and spot labels
// that do not match the image. Labels are set in a PDF core font, which only
// covers ISO-8859-1; characters outside it are replaced with '?' and counted.
package proofsheet

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ocrtrain/pkg/dataset"
)

const (
	margin     = 36.0
	rowSpacing = 10.0
	metaSize   = 7.0
)

// Result is a rendered proof sheet
type Result struct {
	PDF            []byte
	Rows           int // Rows drawn
	MissingImages  int // Rows whose image could not be read
	EncodingErrors int // Rows whose text had characters replaced
}

// Render draws the rows onto A4 pages
func Render(rows []dataset.Row, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if opts.Font.Name == "" {
		opts.Font = DefaultFont
	}
	if opts.MaxImageHeight <= 0 {
		opts.MaxImageHeight = DefaultOptions().MaxImageHeight
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Line dataset proof sheet", true)
	pdf.SetCreator("ocrtrain proofsheet", true)

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*margin
	textH := opts.Font.Size * 1.3
	metaH := metaSize * 1.4

	result := &Result{}
	y := pageH // forces the first page

	for i, row := range rows {
		name := fmt.Sprintf("row%d", i)
		imgOpts := fpdf.ImageOptions{ReadDpi: false}
		img, err := loadImage(row.ImagePath)
		if err != nil {
			logger.Warn("failed to load line image", "image", row.ImagePath, "error", err)
			result.MissingImages++
		} else {
			imgOpts.ImageType = img.format
			pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(img.data))
			if err := pdf.Error(); err != nil {
				// A rejected image must not fail the rest of the sheet
				logger.Warn("failed to embed line image", "image", row.ImagePath, "error", err)
				pdf.ClearError()
				result.MissingImages++
				img = nil
			}
		}

		var drawW, drawH float64
		if img != nil {
			drawW, drawH = fitImage(float64(img.width), float64(img.height), contentW, opts.MaxImageHeight)
		} else {
			drawH = textH
		}

		rowH := metaH + drawH + textH + rowSpacing
		if y+rowH > pageH-margin {
			pdf.AddPage()
			y = margin
		}

		// Row number and path
		pdf.SetFont(opts.Font.Name, "", metaSize)
		pdf.SetTextColor(110, 110, 110)
		meta, _ := encodeLatin1(fmt.Sprintf("%d  %s", i+1, row.ImagePath))
		pdf.Text(margin, y+metaSize, meta)
		y += metaH

		if img != nil {
			pdf.ImageOptions(name, margin, y, drawW, drawH, false, imgOpts, 0, "")
			if opts.Debug {
				pdf.SetDrawColor(255, 0, 0)
				pdf.Rect(margin, y, drawW, drawH, "D")
			}
		} else {
			pdf.SetTextColor(200, 0, 0)
			pdf.Text(margin, y+opts.Font.Size, "[image not available]")
		}
		y += drawH

		label, ok := encodeLatin1(row.Text)
		if !ok {
			result.EncodingErrors++
		}
		pdf.SetFont(opts.Font.Name, opts.Font.Style, opts.Font.Size)
		pdf.SetTextColor(0, 0, 0)
		pdf.Text(margin, y+opts.Font.Size, label)
		y += textH + rowSpacing

		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("failed to draw row %d (%s): %w", i+1, row.ImagePath, err)
		}
		result.Rows++
	}

	if result.Rows == 0 {
		pdf.AddPage()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	result.PDF = buf.Bytes()

	if result.EncodingErrors > 0 {
		logger.Warn("some labels had characters outside ISO-8859-1", "rows", result.EncodingErrors)
	}
	return result, nil
}

// fitImage scales w×h to fit within maxW×maxH, keeping the aspect ratio
func fitImage(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := min(maxW/w, maxH/h)
	return w * scale, h * scale
}

// encodeLatin1 converts text to ISO-8859-1 for the core fonts. Characters
// that cannot be encoded become '?' and ok is false.
func encodeLatin1(text string) (string, bool) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String(text)
	if err == nil {
		return latin1, true
	}

	var b strings.Builder
	for _, r := range text {
		if c, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			b.WriteByte(c)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String(), false
}

type sheetImage struct {
	data   []byte
	format string // fpdf image type
	width  int
	height int
}

// loadImage reads an image for embedding. JPEG data is embedded as is and
// every other format is converted to PNG.
func loadImage(path string) (*sheetImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image config: %w", err)
	}

	if format == "jpeg" {
		return &sheetImage{data: data, format: "JPG", width: cfg.Width, height: cfg.Height}, nil
	}

	// Everything else is decoded in full and written back as an 8-bit,
	// non-interlaced PNG, the only PNG flavour the PDF writer accepts
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, to8Bit(img)); err != nil {
		return nil, fmt.Errorf("failed to convert %s image: %w", format, err)
	}
	return &sheetImage{data: buf.Bytes(), format: "PNG", width: cfg.Width, height: cfg.Height}, nil
}

// to8Bit flattens 16-bit images, which the PNG encoder would otherwise
// write with 16 bits per sample
func to8Bit(img image.Image) image.Image {
	var dst draw.Image
	switch img.ColorModel() {
	case color.Gray16Model:
		dst = image.NewGray(img.Bounds())
	case color.RGBA64Model, color.NRGBA64Model:
		dst = image.NewNRGBA(img.Bounds())
	default:
		return img
	}
	draw.Draw(dst, img.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}
