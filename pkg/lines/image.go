package lines

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	// Decoders for the page image formats
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/gardar/ocrtrain/pkg/hocr"
)

// loadImage opens and decodes a page image. The file is closed before
// returning on every path.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("cannot identify image file %s: %w", path, err)
	}
	return img, nil
}

// CropImage returns the part of src inside box as a new image whose origin
// is (0,0). The result is always box.Width() x box.Height(); any part of
// the box outside src is filled with black (transparent for sources that
// have an alpha channel).
func CropImage(src image.Image, box hocr.BoundingBox) image.Image {
	rect := box.Rect()
	bounds := image.Rect(0, 0, rect.Dx(), rect.Dy())

	var dst draw.Image
	switch src.(type) {
	case *image.Gray:
		dst = image.NewGray(bounds)
	case *image.Gray16:
		dst = image.NewGray16(bounds)
	default:
		rgba := image.NewRGBA(bounds)
		if !rect.In(src.Bounds()) && isOpaque(src) {
			draw.Draw(rgba, bounds, image.NewUniform(color.Black), image.Point{}, draw.Src)
		}
		dst = rgba
	}

	draw.Copy(dst, image.Point{}, src, rect, draw.Src, nil)
	return dst
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

// savePNG writes img to path. A partially written file is removed on failure.
func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
