// chardict is a command-line tool for generating a character dictionary from
// the text column of a label table: every distinct character, one per line,
// in code point order.
//
// Usage:
//
//	chardict [options] <labels_csv> <output_txt>
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
		fmt.Fprintln(os.Stderr, "Usage: chardict [options] <labels_csv> <output_txt>")
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

	n, err := labels.GenerateDictionary(flag.Arg(0), flag.Arg(1), logger)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Character dictionary with %d characters saved to %s\n", n, flag.Arg(1))
}
