package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	eqimaging "github.com/ironsheep/equation-board/internal/imaging"
	"github.com/ironsheep/equation-board/internal/recognition"
	"github.com/ironsheep/equation-board/internal/sampler"
)

// ErrOCRNotEnabled is returned when the binary was built without the "ocr"
// tag.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// NotEnabledMessage is shown to users of a binary without OCR support.
const NotEnabledMessage = "Local recognition is not available on this server."

// Whitelist restricts Tesseract to the characters that occur in equations.
const Whitelist = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ+-*/^=()., "

// Default preprocessing parameters.
const (
	DefaultLanguage = "eng"
	// DefaultMargin is the white border kept around trimmed ink.
	DefaultMargin = 8
	// minHeight is the height small snapshots are scaled up to.
	minHeight = 64
)

// Recognizer implements recognition.Recognizer with Tesseract.
type Recognizer struct {
	language string
	level    uint8
	margin   int
	r        sampler.Range
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithLanguage sets the Tesseract language code, e.g. "eng".
func WithLanguage(lang string) Option {
	return func(r *Recognizer) {
		if lang != "" {
			r.language = lang
		}
	}
}

// WithInkLevel sets the luminance below which a pixel counts as ink.
func WithInkLevel(level uint8) Option {
	return func(r *Recognizer) { r.level = level }
}

// WithRange sets the plotting range given to the recognized variable.
func WithRange(rng sampler.Range) Option {
	return func(r *Recognizer) { r.r = rng }
}

// New creates a Recognizer.
func New(opts ...Option) *Recognizer {
	r := &Recognizer{
		language: DefaultLanguage,
		level:    eqimaging.DefaultInkLevel,
		margin:   DefaultMargin,
		r:        sampler.DefaultRange,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Language returns the configured Tesseract language.
func (r *Recognizer) Language() string { return r.language }

// Recognize reads the equation in img.
func (r *Recognizer) Recognize(ctx context.Context, img recognition.Image) (*sampler.Descriptor, error) {
	raster := img.Raster
	if raster == nil {
		if len(img.Data) == 0 {
			return nil, recognition.Fail(recognition.NoImageMessage, nil)
		}
		decoded, _, err := image.Decode(bytes.NewReader(img.Data))
		if err != nil {
			return nil, recognition.Fail("", fmt.Errorf("failed to decode snapshot: %w", err))
		}
		raster = decoded
	}

	prepared, err := r.Prepare(raster)
	if err != nil {
		return nil, recognition.Fail("", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, recognition.Fail("", err)
	}

	text, err := extractText(prepared, r.language)
	if errors.Is(err, ErrOCRNotEnabled) {
		return nil, recognition.Fail(NotEnabledMessage, err)
	}
	if err != nil {
		return nil, recognition.Fail("", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, recognition.Fail("", err)
	}

	return recognition.ParseEquationText(text, r.r)
}

// Prepare trims img to its ink, scales short snapshots up, thresholds the
// result to black on white and encodes it as PNG for Tesseract.
func (r *Recognizer) Prepare(img image.Image) ([]byte, error) {
	trimmed := eqimaging.TrimToInk(img, r.level, r.margin)
	if h := trimmed.Bounds().Dy(); h > 0 && h < minHeight {
		trimmed = imaging.Resize(trimmed, 0, minHeight, imaging.Lanczos)
	}
	bilevel := eqimaging.Binarize(trimmed, r.level)

	var buf bytes.Buffer
	if err := eqimaging.Encode(&buf, bilevel, eqimaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode prepared snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
