// Package lines turns full-page images and their hOCR markup into a line
// level OCR training set: one cropped PNG per text line plus a CSV table
// mapping each crop to its text.
//
// Extraction runs in stages:
//
// - Discover page images recursively under an image directory
// - Pair each image with "<name>.hocr" (or "<name>.<ext>.hocr") in a markup directory
// - Crop every 'ocr_line' and 'ocr_header' region of each page, in parallel across pages
// - Write all records to a single "image_path,text" CSV
//
// Failures are contained to the smallest unit possible. A bad line is
// skipped, a bad page contributes no lines, and the run only fails when
// there is nothing to work on or nothing was extracted.
package lines

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/gardar/ocrtrain/pkg/dataset"
)

// Record is one extracted line: the path of its crop and its text
type Record = dataset.Row

var (
	ErrNoImages  = errors.New("no image files found")
	ErrNoPairs   = errors.New("no hOCR files found to process with associated images")
	ErrNoRecords = errors.New("no line data extracted from any hOCR file")
)

// Result summarizes a completed extraction
type Result struct {
	OutputPath   string   // CSV written
	LineImageDir string   // Directory holding the crops
	Records      []Record // Records in the order pages completed
	Pages        int      // Pages paired with markup and processed
	FailedPages  int      // Pages that failed as a whole
	Unpaired     []string // Images without markup
	Duplicates   []string // Images skipped because an earlier page has the same name
}

// pageResult is what a worker hands back for one page
type pageResult struct {
	page    Page
	records []Record
	err     error
}

// Extract builds the line dataset for the pages under imageDir and writes
// the table to outputPath. Crops are written to a directory named
// config.LineImageDir next to outputPath.
func Extract(ctx context.Context, imageDir, markupDir, outputPath string, config Config) (*Result, error) {
	logger := config.logger()

	images, err := Discover(imageDir, config.ImageExtensions)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, imageDir)
	}

	pages, unpaired := Pair(images, markupDir, config.MarkupSuffix)
	for _, imagePath := range unpaired {
		logger.Warn("hOCR file not found for image",
			"image", imagePath, "tried", MarkupCandidates(imagePath, config.MarkupSuffix))
	}
	if len(pages) == 0 {
		return nil, ErrNoPairs
	}

	pages, duplicates := UniqueNames(pages)
	var skipped []string
	for _, page := range pages {
		if paths, ok := duplicates[page.Name()]; ok {
			logger.Warn("images share a page name, only the first is extracted",
				"name", page.Name(), "image", page.ImagePath, "skipped", paths)
			skipped = append(skipped, paths...)
		}
	}

	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output path: %w", err)
	}
	lineDir := filepath.Join(filepath.Dir(absOutput), config.LineImageDir)
	if err := os.MkdirAll(lineDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create line image directory: %w", err)
	}
	logger.Info("cropped line images will be saved", "dir", lineDir)

	result := &Result{
		OutputPath:   outputPath,
		LineImageDir: lineDir,
		Pages:        len(pages),
		Unpaired:     unpaired,
		Duplicates:   skipped,
	}

	for res := range runPages(ctx, pages, lineDir, config.workers(), logger) {
		if res.err != nil {
			result.FailedPages++
			logger.Error("hOCR processing failed",
				"hocr", res.page.MarkupPath, "image", res.page.ImagePath, "error", res.err)
			continue
		}
		result.Records = append(result.Records, res.records...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(result.Records) == 0 {
		return nil, ErrNoRecords
	}

	if err := dataset.WriteCSV(outputPath, result.Records); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	logger.Info("created line-level labels CSV", "path", outputPath, "entries", len(result.Records))

	return result, nil
}

// runPages extracts pages on a fixed-size pool of workers. Results are
// delivered in completion order and the channel is closed once every
// dispatched page has finished. A failing or panicking page never affects
// the others.
func runPages(ctx context.Context, pages []Page, lineDir string, workers int, logger *slog.Logger) <-chan pageResult {
	results := make(chan pageResult, len(pages))

	var g errgroup.Group
	g.SetLimit(workers)

	go func() {
		defer close(results)
		for _, page := range pages {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				results <- extractSafely(page, lineDir, logger)
				return nil
			})
		}
		g.Wait()
	}()

	return results
}

// extractSafely runs ExtractPage, turning a panic into a page error
func extractSafely(page Page, lineDir string, logger *slog.Logger) (res pageResult) {
	res.page = page
	defer func() {
		if r := recover(); r != nil {
			res.records = nil
			res.err = fmt.Errorf("page task panicked: %v", r)
		}
	}()

	res.records, res.err = ExtractPage(page, lineDir, logger)
	return res
}
