//go:build !ocr

package ocr

// Enabled reports whether Tesseract support is compiled in.
const Enabled = false

func extractText(png []byte, language string) (string, error) {
	return "", ErrOCRNotEnabled
}
