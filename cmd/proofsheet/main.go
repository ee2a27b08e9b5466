// proofsheet is a command-line tool for rendering a line dataset as a PDF,
// one line image per row with its label underneath, for proofreading.
//
// Usage:
//
//	proofsheet [options] <labels_csv> <output_pdf>
//
// Options:
//
//	-config string     Path to a YAML configuration file
//	-limit int         Render at most this many rows (0 = all)
//	-debug             Outline each line image
//	-overwrite         Overwrite the output PDF if it already exists
//	-log-level string  debug, info, warn or error
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gardar/ocrtrain/pkg/config"
	"github.com/gardar/ocrtrain/pkg/dataset"
	"github.com/gardar/ocrtrain/pkg/proofsheet"
)

func main() {
	configPath := flag.String("config", "", "Path to the config YAML file")
	limit := flag.Int("limit", 0, "Render at most this many rows (0 = all)")
	debug := flag.Bool("debug", false, "Enable debug mode")
	overwriteOutput := flag.Bool("overwrite", false, "Overwrite the output PDF if it already exists")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: proofsheet [options] <labels_csv> <output_pdf>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	csvPath, outputPath := flag.Arg(0), flag.Arg(1)

	if _, err := os.Stat(outputPath); err == nil && !*overwriteOutput {
		fmt.Printf("Output file %s already exists. Use -overwrite to overwrite.\n", outputPath)
		os.Exit(1)
	}

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

	rows, err := dataset.ReadRows(csvPath)
	if err != nil {
		fmt.Printf("Error reading labels: %v\n", err)
		os.Exit(1)
	}

	opts := proofsheet.DefaultOptions()
	opts.Limit = *limit
	opts.Debug = *debug
	opts.Logger = logger

	result, err := proofsheet.Render(rows, opts)
	if err != nil {
		fmt.Printf("Error rendering proof sheet: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outputPath, result.PDF, 0644); err != nil {
		fmt.Printf("Error writing PDF: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Proof sheet with %d rows saved to %s\n", result.Rows, outputPath)
	if result.MissingImages > 0 || result.EncodingErrors > 0 {
		fmt.Printf("%d rows without an image, %d labels with characters the PDF font cannot show\n",
			result.MissingImages, result.EncodingErrors)
	}
}
