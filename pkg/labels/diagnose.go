package labels

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"github.com/gardar/ocrtrain/pkg/dataset"
)

const (
	progressInterval = 50000
	maxShortRowLogs  = 5
)

// Diagnosis summarizes a DiagnoseChars run
type Diagnosis struct {
	Rows        int      // Data rows read
	SkippedRows int      // Rows too short to have a text column
	Chars       []string // Distinct characters in code point order
}

// DiagnoseChars reads the text column of a label table and writes its
// distinct characters to w, one per line. It reads the raw records, so a
// malformed row is reported and skipped instead of failing the run.
func DiagnoseChars(csvPath string, w io.Writer, logger *slog.Logger) (*Diagnosis, error) {
	logger = defaultLogger(logger)

	table, err := dataset.ReadTable(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", csvPath, err)
	}
	idx, err := table.Index(dataset.ColumnText)
	if err != nil {
		return nil, fmt.Errorf("%s: %w (header: %v)", csvPath, err, table.Header)
	}

	diag := &Diagnosis{}
	set := make(map[string]bool)
	for i, record := range table.Records {
		diag.Rows++
		if idx >= len(record) {
			if diag.SkippedRows < maxShortRowLogs {
				// Row numbers count the header as row 1
				logger.Warn("row has too few columns, skipping", "row", i+2, "columns", len(record))
			}
			diag.SkippedRows++
			continue
		}
		uniqueChars(set, record[idx])

		if diag.Rows%progressInterval == 0 {
			logger.Info("processing rows", "rows", diag.Rows)
		}
	}
	diag.Chars = sortedSet(set)

	logger.Info("finished reading table", "rows", diag.Rows, "skipped", diag.SkippedRows, "unique_chars", len(diag.Chars))

	bw := bufio.NewWriter(w)
	for _, c := range diag.Chars {
		bw.WriteString(c)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write characters: %w", err)
	}
	return diag, nil
}
