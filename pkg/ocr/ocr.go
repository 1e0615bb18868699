// Package ocr extracts text from image attachments with Tesseract.
//
// Building this package needs the tesseract and leptonica development
// headers (gosseract uses cgo).
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"

	"notesapp/pkg/media"
)

// Tesseract runs a small set of preprocessing passes over an image and keeps
// the pass that recognised the most letters and digits.
type Tesseract struct {
	languages []string
	log       *zap.Logger
}

// New returns an extractor for languages (default "eng").
func New(log *zap.Logger, languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Tesseract{languages: languages, log: log}
}

// Extract returns normalised text found in the encoded image, or "" when
// nothing legible was recognised.
func (t *Tesseract) Extract(ctx context.Context, data []byte) (string, error) {
	if err := media.CheckPixels(data, media.MaxImagePixels); err != nil {
		return "", err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	gray := prepare(img)

	passes := []struct {
		name string
		img  image.Image
		mode gosseract.PageSegMode
	}{
		{"gray", gray, gosseract.PSM_AUTO},
		{"binary", binarize(gray, 210), gosseract.PSM_AUTO},
		{"sparse", gray, gosseract.PSM_SPARSE_TEXT},
	}

	best, bestScore := "", 0
	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := t.run(p.img, p.mode)
		if err != nil {
			t.log.Debug("ocr pass failed", zap.String("pass", p.name), zap.Error(err))
			continue
		}
		if s := score(text); s > bestScore {
			best, bestScore = text, s
		}
	}
	t.log.Debug("ocr done", zap.Int("length", len(best)), zap.String("snippet", snippet(best, 60)))
	return best, nil
}

func (t *Tesseract) run(img image.Image, mode gosseract.PageSegMode) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.languages...); err != nil {
		return "", err
	}
	if err := client.SetPageSegMode(mode); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", err
	}
	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return normalizeOCRText(text), nil
}

// prepare converts to high-contrast grayscale and upscales small images,
// which Tesseract reads much more reliably.
func prepare(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 15)
	gray = imaging.Sharpen(gray, 0.7)
	if gray.Bounds().Dy() < 900 {
		gray = imaging.Resize(gray, 0, 1300, imaging.Lanczos)
	}
	return gray
}

// score counts letters and digits.
func score(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
