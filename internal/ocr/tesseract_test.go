//go:build ocr

package ocr

import (
	"context"
	"image"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/equation-board/internal/recognition"
)

// scaledTextImage renders text and enlarges it with nearest-neighbour
// sampling so Tesseract sees crisp, large glyphs.
func scaledTextImage(t *testing.T, text string, scale int) image.Image {
	t.Helper()
	img := createImageWithText(t, text)
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*scale, b.Dy()*scale, imaging.NearestNeighbor)
}

func skipIfUnavailable(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	msg := err.Error()
	if strings.Contains(msg, "tesseract") || strings.Contains(msg, "language") || strings.Contains(msg, "library") {
		t.Skipf("Tesseract not available: %v", err)
	}
}

func TestExtractText(t *testing.T) {
	r := New()
	data, err := r.Prepare(scaledTextImage(t, "y = x + 1", 3))
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	text, err := extractText(data, DefaultLanguage)
	skipIfUnavailable(t, err)
	if err != nil {
		t.Fatalf("extractText failed: %v", err)
	}
	if !strings.Contains(strings.ReplaceAll(text, " ", ""), "x") {
		t.Errorf("extractText: got %q, want text containing x", text)
	}
}

func TestExtractText_InvalidLanguage(t *testing.T) {
	r := New()
	data, err := r.Prepare(scaledTextImage(t, "y = x", 3))
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	if _, err := extractText(data, "not_a_real_language"); err == nil {
		t.Error("extractText should fail for an unknown language")
	}
}

func TestRecognize(t *testing.T) {
	img := scaledTextImage(t, "y = x + 1", 3)

	d, err := New().Recognize(context.Background(), recognition.Image{Raster: img})
	skipIfUnavailable(t, err)
	if err != nil {
		// Glyph-level misreads are possible; they must still surface as
		// recognition failures.
		if recognition.UserMessage(err) == "" {
			t.Fatalf("Recognize failed without a user message: %v", err)
		}
		t.Skipf("Tesseract misread the sample: %v", err)
	}
	if d.DependentVariable == "" || d.Expression == "" {
		t.Errorf("Recognize: got %+v, want a complete descriptor", d)
	}
}
