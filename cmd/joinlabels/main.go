// joinlabels is a command-line tool for building a label table from images
// with sidecar text files.
//
// For every image directly inside the image directory (.jpg .jpeg .png .bmp
// .tiff .gif) the text is read from "<name>_text.txt", or "<name>.txt" when
// the first is missing or empty.
//
// Usage:
//
//	joinlabels [options] <image_dir> <output_csv>
//
// Options:
//
//	-config string     Path to a YAML configuration file
//	-log-level string  debug, info, warn or error
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gardar/ocrtrain/pkg/config"
	"github.com/gardar/ocrtrain/pkg/labels"
)

func main() {
	configPath := flag.String("config", "", "Path to the config YAML file")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: joinlabels [options] <image_dir> <output_csv>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
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

	result, err := labels.JoinSidecars(flag.Arg(0), flag.Arg(1), logger)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully created '%s' with %d image-text pairs.\n", flag.Arg(1), len(result.Rows))
	if result.Missing > 0 {
		fmt.Printf("Could not find or process valid text for %d images.\n", result.Missing)
	}
}
