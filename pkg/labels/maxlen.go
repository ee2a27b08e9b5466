package labels

import (
	"fmt"
	"unicode/utf8"

	"github.com/gardar/ocrtrain/pkg/dataset"
)

// MaxTextLength returns the length in characters of the longest text in a
// label table. Rows without a text value are ignored; empty text counts
// as zero. A table without rows yields 0.
func MaxTextLength(csvPath string) (int, error) {
	table, err := dataset.ReadTable(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", csvPath, err)
	}
	texts, err := table.Column(dataset.ColumnText)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", csvPath, err)
	}

	longest := 0
	for _, text := range texts {
		if text.Null {
			continue
		}
		longest = max(longest, utf8.RuneCountInString(text.Value))
	}
	return longest, nil
}
