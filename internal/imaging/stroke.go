package imaging

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"

	"github.com/ironsheep/equation-board/internal/geometry"
)

// discSides is the number of polygon sides used to approximate round joins
// and caps.
const discSides = 16

// defaultStrokeWidth is the whiteboard pencil width.
const defaultStrokeWidth = 5

// drawPath rasterizes a free-hand stroke with round joins and caps.
// A path without vertices is drawn as a dot at its position.
func drawPath(dst *image.NRGBA, z *vector.Rasterizer, obj geometry.Object) {
	col := ParseColor(obj.Stroke, color.Black)
	if isTransparent(col) {
		return
	}

	width := obj.StrokeWidth
	if width <= 0 {
		width = defaultStrokeWidth
	}

	pts := obj.Points
	if len(pts) == 0 {
		pts = []geometry.Point{{X: obj.Width / 2, Y: obj.Height / 2}}
	}

	bounds := dst.Bounds()
	z.Reset(bounds.Dx(), bounds.Dy())
	addPolyline(z, pts, obj.Left, obj.Top, width/2, false)
	z.Draw(dst, bounds, image.NewUniform(col), image.Point{})
}

// drawRect fills and outlines a rectangle object.
func drawRect(dst *image.NRGBA, z *vector.Rasterizer, obj geometry.Object) {
	bounds := dst.Bounds()
	x0, y0 := float32(obj.Left), float32(obj.Top)
	x1, y1 := float32(obj.Left+obj.Width), float32(obj.Top+obj.Height)

	if fill := ParseColor(obj.Fill, color.Transparent); !isTransparent(fill) {
		z.Reset(bounds.Dx(), bounds.Dy())
		// Clockwise in screen space, same orientation as the stroke polygons.
		z.MoveTo(x0, y0)
		z.LineTo(x0, y1)
		z.LineTo(x1, y1)
		z.LineTo(x1, y0)
		z.ClosePath()
		z.Draw(dst, bounds, image.NewUniform(fill), image.Point{})
	}

	stroke := ParseColor(obj.Stroke, color.Transparent)
	if isTransparent(stroke) || obj.StrokeWidth <= 0 {
		return
	}
	corners := []geometry.Point{
		{X: 0, Y: 0},
		{X: obj.Width, Y: 0},
		{X: obj.Width, Y: obj.Height},
		{X: 0, Y: obj.Height},
	}
	z.Reset(bounds.Dx(), bounds.Dy())
	addPolyline(z, corners, obj.Left, obj.Top, obj.StrokeWidth/2, true)
	z.Draw(dst, bounds, image.NewUniform(stroke), image.Point{})
}

// addPolyline adds one quad per segment and one disc per vertex. Every
// polygon is emitted with the same winding so overlapping coverage saturates
// instead of cancelling.
func addPolyline(z *vector.Rasterizer, pts []geometry.Point, ox, oy, radius float64, closed bool) {
	if radius < 0.5 {
		radius = 0.5
	}

	n := len(pts)
	segments := n - 1
	if closed && n > 2 {
		segments = n
	}
	for i := 0; i < segments; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		addSegment(z, a.X+ox, a.Y+oy, b.X+ox, b.Y+oy, radius)
	}
	for _, p := range pts {
		addDisc(z, p.X+ox, p.Y+oy, radius)
	}
}

func addSegment(z *vector.Rasterizer, ax, ay, bx, by, radius float64) {
	dx, dy := bx-ax, by-ay
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*radius, dx/length*radius

	z.MoveTo(float32(ax+nx), float32(ay+ny))
	z.LineTo(float32(bx+nx), float32(by+ny))
	z.LineTo(float32(bx-nx), float32(by-ny))
	z.LineTo(float32(ax-nx), float32(ay-ny))
	z.ClosePath()
}

func addDisc(z *vector.Rasterizer, cx, cy, radius float64) {
	for k := 0; k < discSides; k++ {
		theta := -2 * math.Pi * float64(k) / discSides
		x := float32(cx + radius*math.Cos(theta))
		y := float32(cy + radius*math.Sin(theta))
		if k == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}

func isTransparent(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a == 0
}
