// Package tesseract annotates page images with a local Tesseract engine.
// It needs the Tesseract and Leptonica libraries at build time (cgo), which
// is why it lives apart from the annotate package.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/gardar/ocrtrain/pkg/hocr"
)

// Annotator runs Tesseract on each image and parses its hOCR output
type Annotator struct {
	Languages []string // Tesseract language codes, e.g. "eng", "isl"

	clientFactory func() *gosseract.Client
}

// New creates an annotator for the given languages
func New(languages ...string) *Annotator {
	return &Annotator{Languages: languages, clientFactory: gosseract.NewClient}
}

// Annotate recognizes the image and returns the hOCR document Tesseract
// produced for it. The MIME type is not needed; Leptonica sniffs the format.
func (a *Annotator) Annotate(ctx context.Context, image []byte, mimeType string) (*hocr.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	factory := a.clientFactory
	if factory == nil {
		factory = gosseract.NewClient
	}
	c := factory()
	defer c.Close()

	if len(a.Languages) > 0 {
		if err := c.SetLanguage(a.Languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	out, err := c.HOCRText()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	return hocr.Parse([]byte(out))
}
