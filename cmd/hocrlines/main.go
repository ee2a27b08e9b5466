// hocrlines is a command-line tool for building a line-level OCR training set
// from full-page images and their hOCR markup.
//
// Every 'ocr_line' and 'ocr_header' element with text and a valid bounding box
// is cropped out of its page image and saved as a PNG in a "line_images"
// directory next to the output CSV. The CSV maps each crop to its text.
//
// Usage:
//
//	hocrlines [options] <image_dir> <hocr_dir> <output_csv>
//
// Arguments:
//
//	image_dir   Directory searched recursively for page images (.png .jpg .jpeg .bmp .tiff)
//	hocr_dir    Directory holding "<name>.hocr" (or "<name>.<ext>.hocr") for each page
//	output_csv  Path of the "image_path,text" CSV to write
//
// Options:
//
//	-config string     Path to a YAML configuration file
//	-workers int       Pages processed in parallel (default: one per CPU)
//	-log-level string  debug, info, warn or error
//
// Example:
//
//	hocrlines -workers 4 ./scans ./hocr ./dataset/line_labels.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gardar/ocrtrain/pkg/config"
	"github.com/gardar/ocrtrain/pkg/lines"
)

func main() {
	configPath := flag.String("config", "", "Path to the config YAML file")
	workers := flag.Int("workers", 0, "Number of pages processed in parallel (0 = config or one per CPU)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hocrlines [options] <image_dir> <hocr_dir> <output_csv>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(1)
	}
	imageDir, hocrDir, outputPath := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := cfg.Logger(os.Stderr, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	extractConfig := cfg.Lines(logger)
	if *workers > 0 {
		extractConfig.Workers = *workers
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := lines.Extract(ctx, imageDir, hocrDir, outputPath, extractConfig)
	if err != nil {
		fmt.Printf("Line extraction failed: %v\n", err)
		stop()
		os.Exit(1)
	}

	fmt.Printf("Line extraction completed. Output CSV: %s\n", result.OutputPath)
	fmt.Printf("%d lines from %d pages, crops in %s\n", len(result.Records), result.Pages, result.LineImageDir)
	if result.FailedPages > 0 || len(result.Unpaired) > 0 {
		fmt.Printf("%d pages failed, %d images had no hOCR file\n", result.FailedPages, len(result.Unpaired))
	}
	if len(result.Duplicates) > 0 {
		fmt.Printf("%d images skipped for sharing a page name\n", len(result.Duplicates))
	}
}
