// diagnosechars is a command-line tool for listing the distinct characters of
// a label table's text column. Rows too short to have a text value are
// reported and skipped, which makes it useful for finding malformed rows.
//
// The characters are printed to stdout, one per line; diagnostics go to stderr.
//
// Usage:
//
//	diagnosechars [options] <labels_csv>
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
		fmt.Fprintln(os.Stderr, "Usage: diagnosechars [options] <labels_csv>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
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

	if _, err := labels.DiagnoseChars(flag.Arg(0), os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
