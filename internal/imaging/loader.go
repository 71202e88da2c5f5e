package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// MaxPixels caps the width*height of an upload. The header is checked before
// any pixel data is allocated.
const MaxPixels = 40_000_000

var (
	// ErrNotImage is returned when uploaded data is not a decodable raster image.
	ErrNotImage = errors.New("data is not an image")

	// ErrImageTooLarge is returned when an upload declares more than MaxPixels.
	ErrImageTooLarge = errors.New("image dimensions too large")
)

// Upload is an image received from a client, typically as a data URL.
type Upload struct {
	// Image is the decoded raster.
	Image image.Image

	// Data is the raw encoded bytes as received.
	Data []byte

	// MimeType is sniffed from the content, not taken from the data URL
	// header.
	MimeType string

	Width  int
	Height int
}

// DecodeDataURL decodes an image sent either as a "data:<mime>;base64,..."
// URL or as bare base64.
//
// The content type is detected from the decoded bytes with
// github.com/h2non/filetype; anything that is not an image is rejected with
// ErrNotImage before decoding is attempted, and one whose header declares
// more than MaxPixels with ErrImageTooLarge.
func DecodeDataURL(s string) (*Upload, error) {
	payload := strings.TrimSpace(s)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, fmt.Errorf("malformed data URL: missing comma")
		}
		if !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, fmt.Errorf("malformed data URL: only base64 payloads are supported")
		}
		payload = payload[comma+1:]
	}
	if payload == "" {
		return nil, fmt.Errorf("empty image payload")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 image: %w", err)
		}
	}

	if !filetype.IsImage(data) {
		return nil, ErrNotImage
	}
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, fmt.Errorf("failed to detect image type: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	return &Upload{
		Image:    img,
		Data:     data,
		MimeType: kind.MIME.Value,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// EncodeDataURL builds a base64 data URL from encoded image bytes.
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
