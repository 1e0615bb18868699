package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"notesapp/pkg/media"
)

func TestNormalizeOCRText(t *testing.T) {
	assert.Equal(t, "a b c", normalizeOCRText("  a\n\tb   c \n"))
	assert.Equal(t, "", normalizeOCRText("\n\n"))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	assert.Equal(t, "ab…", snippet("abcdef", 2))
	assert.Equal(t, "éé…", snippet("ééé", 2))
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0, score(" .,;"))
	assert.Equal(t, 5, score("ab 12 c!"))
}

func TestBinarize(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: 40})
	img.SetGray(1, 0, color.Gray{Y: 240})

	out := binarize(img, 128)
	assert.Equal(t, color.NRGBA{A: 255}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, out.NRGBAAt(1, 0))
}

func TestPrepareUpscalesSmallImages(t *testing.T) {
	out := prepare(image.NewRGBA(image.Rect(0, 0, 100, 50)))
	assert.Equal(t, 1300, out.Bounds().Dy())
	assert.Equal(t, 2600, out.Bounds().Dx())
}

func TestExtract_RejectsNonImage(t *testing.T) {
	_, err := New(nil).Extract(context.Background(), []byte("not an image"))
	assert.Error(t, err)
}

func TestExtract_RejectsHugeDimensions(t *testing.T) {
	// header only: 60000x60000 pixels
	data := []byte{'G', 'I', 'F', '8', '9', 'a', 0x60, 0xea, 0x60, 0xea, 0, 0, 0}
	_, err := New(nil).Extract(context.Background(), data)
	assert.ErrorIs(t, err, media.ErrImageTooLarge)
}

// textPNG renders s in a bitmap font on a white background.
func textPNG(t *testing.T, s string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 12*len(s)+20, 30))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: img, Src: image.Black, Face: basicfont.Face7x13, Dot: fixed.P(10, 20)}
	d.DrawString(s)
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestExtract_Tesseract(t *testing.T) {
	if os.Getenv("OCR_TEST") != "1" {
		t.Skip("set OCR_TEST=1 to run tesseract")
	}
	text, err := New(nil).Extract(context.Background(), textPNG(t, "HELLO NOTES 2024"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(strings.ToUpper(text), "HELLO"), "got %q", text)
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).Extract(ctx, textPNG(t, "X"))
	assert.ErrorIs(t, err, context.Canceled)
}
