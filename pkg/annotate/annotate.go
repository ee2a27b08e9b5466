// Package annotate produces hOCR markup for page images, so that scans
// without existing OCR output can be fed to the line extractor.
//
// Two annotators are provided:
//
// - DocumentAI: sends the image to Google Document AI and converts the
// recognized pages, blocks, paragraphs, lines and tokens to hOCR
// - tesseract.Annotator (subpackage): runs a local Tesseract engine
//
// AnnotateDir runs an annotator over a directory of images and writes one
// "<name>.hocr" file per image, using the same naming the line extractor
// looks for first.
package annotate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gardar/ocrtrain/pkg/hocr"
	"github.com/gardar/ocrtrain/pkg/lines"
)

// Annotator recognizes the text of a page image
type Annotator interface {
	Annotate(ctx context.Context, image []byte, mimeType string) (*hocr.Document, error)
}

var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// MimeType returns the MIME type for a file based on its extension
func MimeType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := mimeTypes[ext]; ok {
		return mt, nil
	}
	return "", fmt.Errorf("unsupported file type %q", ext)
}

// DirOptions configures AnnotateDir
type DirOptions struct {
	Extensions []string     // Image extensions to annotate
	Suffix     string       // Markup file suffix, e.g. ".hocr"
	Overwrite  bool         // Replace existing markup files
	WriteText  bool         // Also write "<name>.txt" with the recognized text
	Logger     *slog.Logger // nil logs to stderr
}

// DefaultDirOptions matches the line extractor's defaults
func DefaultDirOptions() DirOptions {
	cfg := lines.DefaultConfig()
	return DirOptions{
		Extensions: cfg.ImageExtensions,
		Suffix:     cfg.MarkupSuffix,
	}
}

// DirResult summarizes an AnnotateDir run
type DirResult struct {
	Written []string // Markup files written
	Skipped int      // Images that already had markup
	Failed  int      // Images that could not be annotated
}

// AnnotateDir annotates every image under imageDir and writes the markup to
// markupDir. A failure on one image is logged and does not stop the run.
func AnnotateDir(ctx context.Context, a Annotator, imageDir, markupDir string, opts DirOptions) (*DirResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	images, err := lines.Discover(imageDir, opts.Extensions)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w in %s", lines.ErrNoImages, imageDir)
	}

	if err := os.MkdirAll(markupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create markup directory: %w", err)
	}

	result := &DirResult{}
	for _, imagePath := range images {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		page := lines.Page{ImagePath: imagePath}
		target := filepath.Join(markupDir, page.Name()+opts.Suffix)
		if _, err := os.Stat(target); err == nil && !opts.Overwrite {
			logger.Debug("markup exists, skipping", "image", imagePath, "markup", target)
			result.Skipped++
			continue
		}

		if err := annotateFile(ctx, a, imagePath, target, opts.WriteText); err != nil {
			logger.Error("failed to annotate image", "image", imagePath, "error", err)
			result.Failed++
			continue
		}
		logger.Info("wrote markup", "image", imagePath, "markup", target)
		result.Written = append(result.Written, target)
	}
	return result, nil
}

func annotateFile(ctx context.Context, a Annotator, imagePath, target string, writeText bool) error {
	mimeType, err := MimeType(imagePath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return err
	}

	doc, err := a.Annotate(ctx, data, mimeType)
	if err != nil {
		return err
	}

	markup, err := hocr.GenerateHOCRDocument(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(target, []byte(markup), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	if writeText {
		textPath := strings.TrimSuffix(target, filepath.Ext(target)) + ".txt"
		if err := os.WriteFile(textPath, []byte(hocr.ExtractText(doc)), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", textPath, err)
		}
	}
	return nil
}
