package labels

import (
	"bufio"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gardar/ocrtrain/pkg/dataset"
)

// Output file names written by Convert
const (
	TrainLabelFile   = "rec_gt_train.txt"
	EvalLabelFile    = "rec_gt_eval.txt"
	UnknownCharsFile = "unknown_characters.txt"
)

// ConvertOptions configures Convert
type ConvertOptions struct {
	TrainRatio    float64      // Share of rows that go to the training split
	CharDictPath  string       // Allow-list of characters, one per line; "" disables
	MaxTextLength int          // Longest text kept, in characters; 0 disables
	Seed          uint64       // Shuffle seed
	Logger        *slog.Logger // nil logs to stderr
}

// DefaultConvertOptions returns the options used when nothing is configured
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{
		TrainRatio: 0.9,
		Seed:       42,
	}
}

// ConvertResult summarizes a Convert run
type ConvertResult struct {
	Train            []dataset.Row
	Eval             []dataset.Row
	UnknownChars     []string // Sorted characters that caused a row to be dropped
	FilteredByChars  int
	FilteredByLength int
	TrainPath        string
	EvalPath         string
	UnknownPath      string // "" when no unknown characters were found
}

// Convert turns a label table into PaddleOCR recognition label files.
//
// Rows with a blank image path or text are dropped. If a character
// dictionary is given, a row with any character not in the dictionary is
// dropped and those characters are recorded. Rows longer than
// MaxTextLength are dropped too. What is left is shuffled with the seed
// and split into "<outDir>/rec_gt_train.txt" and "<outDir>/rec_gt_eval.txt",
// one "image_path<TAB>text" line per row.
func Convert(csvPath, outDir string, opts ConvertOptions) (*ConvertResult, error) {
	logger := defaultLogger(opts.Logger)

	if opts.TrainRatio <= 0 || opts.TrainRatio >= 1 {
		return nil, fmt.Errorf("train ratio must be between 0 and 1, got %v", opts.TrainRatio)
	}

	all, err := dataset.ReadRows(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", csvPath, err)
	}

	rows := all[:0:0]
	for _, row := range all {
		if strings.TrimSpace(row.ImagePath) == "" || strings.TrimSpace(row.Text) == "" {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w after basic cleaning", csvPath, ErrNoRows)
	}
	logger.Info("loaded label table", "path", csvPath, "rows", len(all), "usable", len(rows))

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ConvertResult{}

	if opts.CharDictPath != "" {
		allowed, err := LoadCharDict(opts.CharDictPath)
		if err != nil {
			logger.Warn("character dictionary unusable, skipping character filtering", "path", opts.CharDictPath, "error", err)
		} else if len(allowed) > 0 {
			unknown := make(map[string]bool)
			kept := rows[:0:0]
			for _, row := range rows {
				if missing := unknownChars(row.Text, allowed); len(missing) > 0 {
					for _, c := range missing {
						unknown[c] = true
					}
					continue
				}
				kept = append(kept, row)
			}
			result.FilteredByChars = len(rows) - len(kept)
			result.UnknownChars = sortedSet(unknown)
			rows = kept
			logger.Info("filtered rows by character dictionary", "removed", result.FilteredByChars, "unknown_chars", len(unknown))
		}
	}

	if opts.MaxTextLength > 0 {
		kept := rows[:0:0]
		for _, row := range rows {
			if utf8.RuneCountInString(row.Text) <= opts.MaxTextLength {
				kept = append(kept, row)
			}
		}
		result.FilteredByLength = len(rows) - len(kept)
		rows = kept
		logger.Info("filtered rows by text length", "max", opts.MaxTextLength, "removed", result.FilteredByLength)
	}

	if len(result.UnknownChars) > 0 {
		result.UnknownPath = filepath.Join(outDir, UnknownCharsFile)
		if err := writeLines(result.UnknownPath, result.UnknownChars); err != nil {
			return nil, err
		}
		logger.Info("saved unknown characters", "path", result.UnknownPath)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w after filtering", ErrNoRows)
	}

	result.Train, result.Eval, err = split(rows, opts.TrainRatio, opts.Seed)
	if err != nil {
		return nil, err
	}

	result.TrainPath = filepath.Join(outDir, TrainLabelFile)
	if err := writeLabels(result.TrainPath, result.Train); err != nil {
		return nil, err
	}
	result.EvalPath = filepath.Join(outDir, EvalLabelFile)
	if err := writeLabels(result.EvalPath, result.Eval); err != nil {
		return nil, err
	}

	logger.Info("saved label files", "train", len(result.Train), "eval", len(result.Eval))
	return result, nil
}

// LoadCharDict reads a character dictionary. Only line terminators are
// stripped, so a line holding a single space allows the space character.
// Blank lines are ignored.
func LoadCharDict(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	allowed := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		entry := strings.TrimRight(scanner.Text(), "\r\n")
		if entry != "" {
			allowed[entry] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return allowed, nil
}

// unknownChars returns the characters of text missing from allowed
func unknownChars(text string, allowed map[string]bool) []string {
	var missing []string
	for _, r := range text {
		if !allowed[string(r)] {
			missing = append(missing, string(r))
		}
	}
	return missing
}

// split shuffles rows and divides them into train and eval sets.
// The train set gets floor(ratio*n) rows and must not be empty.
func split(rows []dataset.Row, ratio float64, seed uint64) (train, eval []dataset.Row, err error) {
	n := len(rows)
	nTrain := int(math.Floor(ratio * float64(n)))
	if nTrain == 0 {
		return nil, nil, fmt.Errorf("with %d rows and train ratio %v the train set would be empty", n, ratio)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)

	nEval := n - nTrain
	eval = make([]dataset.Row, 0, nEval)
	for _, i := range perm[:nEval] {
		eval = append(eval, rows[i])
	}
	train = make([]dataset.Row, 0, nTrain)
	for _, i := range perm[nEval:] {
		train = append(train, rows[i])
	}
	return train, eval, nil
}

func writeLabels(path string, rows []dataset.Row) error {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = row.ImagePath + "\t" + row.Text
	}
	return writeLines(path, lines)
}

// writeLines writes each entry followed by a newline
func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
