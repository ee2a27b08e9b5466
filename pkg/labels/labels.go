// Package labels holds the small single-pass tools that sit around the line
// extractor in the training-data flow:
//
// - JoinSidecars: pair images with sidecar .txt files into a label table
// - Convert: filter a label table and split it into PaddleOCR train/eval label files
// - GenerateDictionary: list every character used in a label table
// - DiagnoseChars: print the unique characters of a label table
// - MaxTextLength: report the longest label
package labels

import (
	"errors"
	"log/slog"
	"os"
	"sort"
)

var (
	ErrNoPairs = errors.New("no image-text pairs found")
	ErrNoRows  = errors.New("no rows left to process")
)

func defaultLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// uniqueChars collects every rune of texts as one-character strings
func uniqueChars(set map[string]bool, text string) {
	for _, r := range text {
		set[string(r)] = true
	}
}

// sortedSet returns the members of set in code point order
func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
