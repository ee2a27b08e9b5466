package labels

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gardar/ocrtrain/pkg/dataset"
)

// JoinImageExtensions are the image types picked up by JoinSidecars
var JoinImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".gif"}

// JoinResult summarizes a JoinSidecars run
type JoinResult struct {
	Rows    []dataset.Row // Rows written, in file name order
	Missing int           // Images without usable text
}

// SidecarCandidates returns the text files tried for an image, in order:
// "<name>_text.txt" then "<name>.txt".
func SidecarCandidates(imagePath string) []string {
	dir := filepath.Dir(imagePath)
	name := filepath.Base(imagePath)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return []string{
		filepath.Join(dir, base+"_text.txt"),
		filepath.Join(dir, base+".txt"),
	}
}

// JoinSidecars pairs each image directly inside imageDir with the text of
// its sidecar file and writes the pairs to outputPath as a label table.
// An empty sidecar does not count; the next candidate is tried.
func JoinSidecars(imageDir, outputPath string, logger *slog.Logger) (*JoinResult, error) {
	logger = defaultLogger(logger)

	info, err := os.Stat(imageDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("image folder not found or is not a directory: %s", imageDir)
	}

	entries, err := os.ReadDir(imageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", imageDir, err)
	}

	allowed := make(map[string]bool, len(JoinImageExtensions))
	for _, ext := range JoinImageExtensions {
		allowed[ext] = true
	}

	result := &JoinResult{}
	for _, entry := range entries {
		if entry.IsDir() || !allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		imagePath := filepath.Join(imageDir, entry.Name())

		text := ""
		for _, candidate := range SidecarCandidates(imagePath) {
			text = readSidecar(candidate, entry.Name(), logger)
			if text != "" {
				break
			}
		}

		if text == "" {
			result.Missing++
			continue
		}
		result.Rows = append(result.Rows, dataset.Row{ImagePath: imagePath, Text: text})
	}

	if len(result.Rows) == 0 {
		return nil, ErrNoPairs
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := dataset.WriteCSV(outputPath, result.Rows); err != nil {
		return nil, err
	}

	logger.Info("created labels CSV", "path", outputPath, "pairs", len(result.Rows), "missing", result.Missing)
	return result, nil
}

// readSidecar returns the trimmed content of a sidecar file, or "" if it
// is missing, unreadable or blank
func readSidecar(path, imageName string, logger *slog.Logger) string {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ""
	}
	if err != nil {
		logger.Warn("error reading text file", "file", path, "image", imageName, "error", err)
		return ""
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		logger.Info("text file is empty", "file", path, "image", imageName)
	}
	return text
}
