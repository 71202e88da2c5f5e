package imaging

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/equation-board/internal/geometry"
)

// defaultFontSize is the size of text objects that do not specify one.
const defaultFontSize = 20

// drawText renders a text object with the 7x13 bitmap face scaled to the
// object's font size and composites it onto dst. It returns the composited
// image.
func drawText(dst *image.NRGBA, obj geometry.Object) *image.NRGBA {
	text := strings.Join(strings.Fields(obj.Text), " ")
	if text == "" {
		return dst
	}

	col := ParseColor(obj.Fill, color.Black)
	if isTransparent(col) {
		return dst
	}

	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Height

	glyphs := image.NewNRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	size := obj.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	scale := size / float64(height)
	var layer image.Image = glyphs
	if scale != 1 {
		w := int(math.Round(float64(width) * scale))
		h := int(math.Round(float64(height) * scale))
		if w < 1 || h < 1 {
			return dst
		}
		layer = imaging.Resize(glyphs, w, h, imaging.Linear)
	}

	pos := image.Pt(int(math.Round(obj.Left)), int(math.Round(obj.Top)))
	return imaging.Overlay(dst, layer, pos, 1.0)
}
