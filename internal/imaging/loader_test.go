package imaging

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image/color"
	"image/png"
	"testing"

	"github.com/ironsheep/equation-board/internal/geometry"
)

// encodePNG encodes a solid test image as PNG bytes.
func encodePNG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, createInMemoryImage(width, height, c)); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeDataURL(t *testing.T) {
	data := encodePNG(t, 30, 20, color.White)

	tests := []struct {
		name  string
		input string
	}{
		{"data url", EncodeDataURL("image/png", data)},
		{"bare base64", base64.StdEncoding.EncodeToString(data)},
		{"raw base64", base64.RawStdEncoding.EncodeToString(data)},
		{"surrounding whitespace", "  " + EncodeDataURL("image/png", data) + "\n"},
		{"mislabelled mime", EncodeDataURL("image/jpeg", data)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upload, err := DecodeDataURL(tt.input)
			if err != nil {
				t.Fatalf("DecodeDataURL failed: %v", err)
			}
			if upload.Width != 30 || upload.Height != 20 {
				t.Errorf("dimensions: got %dx%d, want 30x20", upload.Width, upload.Height)
			}
			if upload.MimeType != "image/png" {
				t.Errorf("MimeType: got %s, want image/png", upload.MimeType)
			}
		})
	}
}

func TestDecodeDataURL_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing comma", "data:image/png;base64"},
		{"not base64 encoded url", "data:image/png,abcd"},
		{"garbage", "!!!not base64!!!"},
		{"text payload", base64.StdEncoding.EncodeToString([]byte("hello world, not an image"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeDataURL(tt.input); err == nil {
				t.Error("DecodeDataURL should fail")
			}
		})
	}
}

func TestDecodeDataURL_NotImage(t *testing.T) {
	// A PDF header is a known type that is not an image.
	pdf := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"))
	_, err := DecodeDataURL(pdf)
	if !errors.Is(err, ErrNotImage) {
		t.Errorf("got %v, want ErrNotImage", err)
	}
}

// pngHeader returns a PNG signature and IHDR chunk declaring an 8-bit RGB
// image of the given size, with no pixel data behind it.
func pngHeader(width, height uint32) []byte {
	ihdr := make([]byte, 4+13)
	copy(ihdr, "IHDR")
	binary.BigEndian.PutUint32(ihdr[4:], width)
	binary.BigEndian.PutUint32(ihdr[8:], height)
	ihdr[12] = 8 // bit depth
	ihdr[13] = 2 // truecolor

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(ihdr)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(ihdr))
	return buf.Bytes()
}

func TestDecodeDataURL_TooLarge(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
	}{
		{"huge square", 100000, 100000},
		{"one pixel over", MaxPixels + 1, 1},
		{"tall strip", 1, 1 << 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDataURL(EncodeDataURL("image/png", pngHeader(tt.width, tt.height)))
			if !errors.Is(err, ErrImageTooLarge) {
				t.Errorf("got %v, want ErrImageTooLarge", err)
			}
		})
	}
}

func TestDecodeDataURL_TruncatedBody(t *testing.T) {
	// Header within the cap but no image data: rejected by the decoder.
	_, err := DecodeDataURL(EncodeDataURL("image/png", pngHeader(64, 64)))
	if err == nil {
		t.Fatal("DecodeDataURL should fail")
	}
	if errors.Is(err, ErrImageTooLarge) {
		t.Errorf("got %v, want a decode error", err)
	}
}

func TestDecodeDataURL_RoundTripSnapshot(t *testing.T) {
	objects := strokeObjects()
	result, err := CropToBoundingBox(objects, geometry.ComputeBoundingBox(objects), JPEG)
	if err != nil {
		t.Fatalf("CropToBoundingBox failed: %v", err)
	}

	upload, err := DecodeDataURL(result.DataURL())
	if err != nil {
		t.Fatalf("DecodeDataURL failed: %v", err)
	}
	if upload.MimeType != "image/jpeg" {
		t.Errorf("MimeType: got %s, want image/jpeg", upload.MimeType)
	}
	if upload.Width != result.Width || upload.Height != result.Height {
		t.Errorf("dimensions: got %dx%d, want %dx%d", upload.Width, upload.Height, result.Width, result.Height)
	}
}
