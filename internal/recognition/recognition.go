// Package recognition turns a snapshot of a handwritten equation into a
// sampler.Descriptor.
//
// Back ends implement Recognizer. VisionClient asks a hosted vision model;
// the ocr package provides a local Tesseract alternative whose text is parsed
// by ParseEquationText. Every failure a back end returns is, or wraps, a
// *Failure whose Message is safe to show to the user; the underlying cause is
// kept for logging only.
package recognition

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/equation-board/internal/sampler"
)

// ErrRecognition matches every recognition failure with errors.Is.
var ErrRecognition = errors.New("recognition failed")

// GenericMessage is shown when the cause of a failure is not meant for users.
const GenericMessage = "Error processing the image."

// NoImageMessage is reported when a request carries no image data.
const NoImageMessage = "No image received."

// Image is a snapshot submitted for recognition.
type Image struct {
	// Data is the encoded raster (PNG or JPEG).
	Data []byte
	// MimeType describes Data, e.g. "image/jpeg".
	MimeType string
	// Raster optionally holds the decoded image so local back ends can skip
	// decoding Data again.
	Raster image.Image
}

// Recognizer extracts an equation from an image.
type Recognizer interface {
	Recognize(ctx context.Context, img Image) (*sampler.Descriptor, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, img Image) (*sampler.Descriptor, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, img Image) (*sampler.Descriptor, error) {
	return f(ctx, img)
}

// Failure is a recognition failure with a user-visible message.
type Failure struct {
	Message string
	Err     error
}

// Fail creates a Failure. An empty message becomes GenericMessage.
func Fail(message string, err error) *Failure {
	if message == "" {
		message = GenericMessage
	}
	return &Failure{Message: message, Err: err}
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

// Unwrap exposes both ErrRecognition and the cause.
func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{ErrRecognition}
	}
	return []error{ErrRecognition, f.Err}
}

// UserMessage returns the message of the first Failure in err's chain, or
// GenericMessage if there is none.
func UserMessage(err error) string {
	var f *Failure
	if errors.As(err, &f) && f.Message != "" {
		return f.Message
	}
	return GenericMessage
}
