// Package ocr recognizes handwritten equations locally with Tesseract.
//
// It is the offline alternative to the hosted vision model: a snapshot is
// trimmed to its ink, thresholded to black on white, read as a single text
// line and parsed with recognition.ParseEquationText.
//
// # Build Tag
//
// Tesseract is linked through github.com/otiai10/gosseract/v2, which needs
// cgo and the Tesseract headers. The binding is only compiled with the "ocr"
// build tag:
//
//	go build -tags ocr ./cmd/equation-board
//
// Without the tag, Recognize reports ErrOCRNotEnabled as a recognition
// failure and the server keeps working with the vision back end.
//
// # Prerequisites
//
// With the tag, Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Accuracy
//
// Tesseract is trained on print, not handwriting. Results are best for
// neatly written single-line equations; the vision back end should be
// preferred when network access is available.
package ocr
