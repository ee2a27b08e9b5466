package lines

import (
	"io"
	"log/slog"
	"os"
	"runtime"
)

// Config holds user options for line extraction
type Config struct {
	Workers         int          // Parallel page workers (<= 0 means runtime.NumCPU())
	ImageExtensions []string     // Page image extensions to discover, matched case-insensitively
	MarkupSuffix    string       // Suffix appended to a page name to find its hOCR file
	LineImageDir    string       // Name of the crop directory created next to the output table
	Logger          *slog.Logger // Logger for per-page and per-line diagnostics (nil = stderr)
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Workers:         0,
		ImageExtensions: []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff"},
		MarkupSuffix:    ".hocr",
		LineImageDir:    "line_images",
		Logger:          nil,
	}
}

// workers returns the size of the worker pool
func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// logger returns the configured logger, defaulting to a text handler on stderr
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return NewLogger(os.Stderr, slog.LevelInfo)
}

// NewLogger builds the text logger used by the command-line tools
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
