package monitor

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// WritePNG encodes img to path.
func WritePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// WriteVisionPNG writes the rectified vision image. A nil image is an error
// since there is nothing to show before the first frame.
func WriteVisionPNG(img *image.RGBA, path string) error {
	if img == nil {
		return fmt.Errorf("no vision image yet")
	}
	return WritePNG(img, path)
}

// ReadPNG decodes a PNG file.
func ReadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
