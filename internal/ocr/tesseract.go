//go:build ocr

package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Enabled reports whether Tesseract support is compiled in.
const Enabled = true

// extractText runs Tesseract on a PNG-encoded single-line image.
func extractText(png []byte, language string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetWhitelist(Whitelist); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}
