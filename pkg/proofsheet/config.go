package proofsheet

import "log/slog"

// Options holds user options for rendering a proof sheet
type Options struct {
	Limit          int          // Render at most this many rows (0 = all)
	MaxImageHeight float64      // Tallest a line image is drawn, in points
	Debug          bool         // Outline each image
	Font           FontConfig
	Logger         *slog.Logger // nil logs to stderr
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() Options {
	return Options{
		MaxImageHeight: 48,
		Font:           DefaultFont,
	}
}

// FontConfig contains font settings for the label text
type FontConfig struct {
	Name  string  // Font name (e.g., "Helvetica")
	Style string  // Font style ("", "B", "I", "BI")
	Size  float64 // Font size in points
}

// DefaultFont is one of the PDF core fonts, so nothing needs embedding
var DefaultFont = FontConfig{
	Name:  "Helvetica",
	Style: "",
	Size:  11,
}
