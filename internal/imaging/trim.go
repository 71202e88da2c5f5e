package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// DefaultInkLevel is the gray level below which a pixel counts as ink.
const DefaultInkLevel uint8 = 160

// Binarize converts img to a black-on-white bilevel image. Pixels darker than
// level become black. Contrast is raised first so faint pencil strokes
// survive the threshold.
func Binarize(img image.Image, level uint8) *image.Gray {
	gray := effect.Grayscale(img)
	return segment.Threshold(adjust.Contrast(gray, 0.2), level)
}

// InkBounds returns the smallest rectangle containing every ink pixel of img,
// in img's coordinate space. ok is false when the image has no ink.
func InkBounds(img image.Image, level uint8) (rect image.Rectangle, ok bool) {
	bw := segment.Threshold(img, level)
	b := bw.Bounds()

	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if bw.GrayAt(x, y).Y != 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}

	offset := img.Bounds().Min.Sub(b.Min)
	return image.Rect(minX, minY, maxX+1, maxY+1).Add(offset), true
}

// TrimToInk crops uploaded rasters down to their ink plus margin pixels on
// each side. Images without ink are returned unchanged.
func TrimToInk(img image.Image, level uint8, margin int) image.Image {
	rect, ok := InkBounds(img, level)
	if !ok {
		return img
	}
	rect = image.Rect(rect.Min.X-margin, rect.Min.Y-margin, rect.Max.X+margin, rect.Max.Y+margin)
	rect = rect.Intersect(img.Bounds())
	if rect == img.Bounds() {
		return img
	}
	return imaging.Crop(img, rect)
}
