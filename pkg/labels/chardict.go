package labels

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gardar/ocrtrain/pkg/dataset"
)

// MinDictionarySize is the size below which a generated dictionary is
// probably missing characters the model will meet later
const MinDictionarySize = 80

// GenerateDictionary writes every distinct character of the text column
// to outPath, one per line, in code point order. A table without text
// produces an empty file. It returns the number of characters written.
func GenerateDictionary(csvPath, outPath string, logger *slog.Logger) (int, error) {
	logger = defaultLogger(logger)

	table, err := dataset.ReadTable(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", csvPath, err)
	}
	texts, err := table.Column(dataset.ColumnText)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", csvPath, err)
	}

	set := make(map[string]bool)
	for _, text := range texts {
		if !text.Null {
			uniqueChars(set, text.Value)
		}
	}
	chars := sortedSet(set)

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := writeLines(outPath, chars); err != nil {
		return 0, err
	}

	logger.Info("saved character dictionary", "path", outPath, "chars", len(chars))
	if len(chars) < MinDictionarySize {
		logger.Warn("character dictionary is small, check the source data", "chars", len(chars))
	}
	return len(chars), nil
}
