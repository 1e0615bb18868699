package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultMaxImageBytes is the size above which images are downscaled.
const DefaultMaxImageBytes = 1_000_000

// MaxImagePixels bounds width*height of images that get decoded for
// downscaling or OCR.
const MaxImagePixels = 40_000_000

var ErrImageTooLarge = errors.New("image dimensions too large")

// CheckPixels reads only the image header and returns ErrImageTooLarge when
// the declared dimensions exceed maxPixels.
func CheckPixels(data []byte, maxPixels int) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	return nil
}

// IsImage reports whether ext names an image format imaging can re-encode.
func IsImage(ext string) bool {
	_, err := imaging.FormatFromExtension(ext)
	return err == nil && ext != ""
}

// Downscale shrinks an encoded image whose size exceeds maxBytes. The scale
// factor is estimated from sqrt(maxBytes/size) since encoded size roughly
// follows pixel area, and is clamped to [0.1, 0.95]. Data that is within
// budget, not an image, or cannot be decoded is returned unchanged with
// changed=false. Images over MaxImagePixels are returned unchanged with
// ErrImageTooLarge.
func Downscale(data []byte, ext string, maxBytes int) (out []byte, changed bool, err error) {
	if maxBytes <= 0 || len(data) <= maxBytes {
		return data, false, nil
	}
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return data, false, nil
	}
	if err := CheckPixels(data, MaxImagePixels); err != nil {
		if errors.Is(err, ErrImageTooLarge) {
			return data, false, err
		}
		return data, false, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data, false, nil
	}
	scale := math.Sqrt(float64(maxBytes) / float64(len(data)))
	if scale > 0.95 {
		scale = 0.95
	}
	if scale < 0.1 {
		scale = 0.1
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	newW := int(math.Max(1, math.Round(float64(w)*scale)))
	newH := int(math.Max(1, math.Round(float64(h)*scale)))
	resized := imaging.Resize(img, newW, newH, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return data, false, fmt.Errorf("encode resized image: %w", err)
	}
	if buf.Len() >= len(data) {
		return data, false, nil
	}
	return buf.Bytes(), true, nil
}
