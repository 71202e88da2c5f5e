package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"

	"github.com/ironsheep/equation-board/internal/geometry"
)

// Format selects the raster encoding of a snapshot.
type Format int

const (
	// JPEG encodes with quality 80, matching what the browser produced for
	// recognition uploads.
	JPEG Format = iota

	// PNG encodes losslessly.
	PNG
)

// JPEGQuality is the quality used for JPEG snapshots.
const JPEGQuality = 80

// MimeType returns the MIME type of the format.
func (f Format) MimeType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/jpeg"
}

// CropResult contains the rendered snapshot of a cropped region.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// Data is the encoded raster.
	Data []byte `json:"-"`

	// Image is the rendered surface before encoding.
	Image image.Image `json:"-"`
}

// DataURL returns the snapshot as a data URL suitable for recognition
// services that accept inline images.
func (r *CropResult) DataURL() string {
	return EncodeDataURL(r.MimeType, r.Data)
}

// CropToBoundingBox renders duplicates of objects, translated to the box
// origin, onto a fresh opaque white surface sized to the box and encodes it.
//
// A nil box means there was nothing to extract and yields
// geometry.ErrEmptyExtraction. The surface is at least 1x1 pixels even for a
// degenerate box. The live objects are not modified.
func CropToBoundingBox(objects []geometry.Object, box *geometry.Box, format Format) (*CropResult, error) {
	if box == nil {
		return nil, geometry.ErrEmptyExtraction
	}

	local, err := geometry.Localize(objects, box)
	if err != nil {
		return nil, err
	}

	width, height := box.PixelSize()
	rendered := Render(local, width, height)

	var buf bytes.Buffer
	if err := Encode(&buf, rendered, format); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return &CropResult{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    format.MimeType(),
		Data:        buf.Bytes(),
		Image:       rendered,
	}, nil
}

// Render draws objects onto a new width x height surface with an opaque white
// background. Object coordinates are taken as surface pixels.
func Render(objects []geometry.Object, width, height int) *image.NRGBA {
	canvas := imaging.New(width, height, color.White)
	z := vector.NewRasterizer(width, height)

	for _, obj := range objects {
		switch obj.Kind {
		case geometry.KindText, geometry.KindIText:
			canvas = drawText(canvas, obj)
		case geometry.KindRect:
			drawRect(canvas, z, obj)
		default:
			drawPath(canvas, z, obj)
		}
	}
	return canvas
}

// Encode writes img to buf in the given format.
func Encode(buf *bytes.Buffer, img image.Image, format Format) error {
	if format == PNG {
		return imaging.Encode(buf, img, imaging.PNG)
	}
	return imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
}
