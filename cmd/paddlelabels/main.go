// paddlelabels is a command-line tool for converting a label table into
// PaddleOCR recognition label files.
//
// It writes rec_gt_train.txt and rec_gt_eval.txt ("image_path<TAB>text" per
// line) to the output directory, and unknown_characters.txt when rows were
// dropped for characters missing from the dictionary.
//
// Usage:
//
//	paddlelabels [options] <labels_csv> <output_dir>
//
// Options:
//
//	-config string       Path to a YAML configuration file
//	-char-dict string    Character dictionary; rows with other characters are dropped
//	-train-ratio float   Share of rows used for training (default 0.9)
//	-max-len int         Drop rows with longer text (0 = no limit)
//	-seed uint           Shuffle seed (default 42)
//	-log-level string    debug, info, warn or error
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
	charDict := flag.String("char-dict", "", "Path to the character dictionary (one character per line)")
	trainRatio := flag.Float64("train-ratio", 0, "Share of rows used for training (0 = config default)")
	maxLen := flag.Int("max-len", -1, "Maximum text length in characters (0 = no limit, -1 = config default)")
	seed := flag.Uint64("seed", 0, "Shuffle seed (0 = config default)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: paddlelabels [options] <labels_csv> <output_dir>")
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

	opts := cfg.ConvertOptions(logger)
	opts.CharDictPath = *charDict
	if *trainRatio > 0 {
		opts.TrainRatio = *trainRatio
	}
	if *maxLen >= 0 {
		opts.MaxTextLength = *maxLen
	}
	if *seed > 0 {
		opts.Seed = *seed
	}

	result, err := labels.Convert(flag.Arg(0), flag.Arg(1), opts)
	if err != nil {
		fmt.Printf("Conversion failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Training labels:   %s (%d rows)\n", result.TrainPath, len(result.Train))
	fmt.Printf("Evaluation labels: %s (%d rows)\n", result.EvalPath, len(result.Eval))
	if result.UnknownPath != "" {
		fmt.Printf("Unknown characters: %s (%d rows dropped)\n", result.UnknownPath, result.FilteredByChars)
	}
	if result.FilteredByLength > 0 {
		fmt.Printf("%d rows dropped for exceeding %d characters\n", result.FilteredByLength, opts.MaxTextLength)
	}
}
