package geometry

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrEmptyExtraction is returned when there is nothing on the surface to
// extract an equation from.
var ErrEmptyExtraction = errors.New("nothing to extract")

// Box is the minimal axis-aligned rectangle enclosing a set of objects.
//
// A Box produced by ComputeBoundingBox always satisfies MinX <= MaxX and
// MinY <= MaxY.
type Box struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// Width returns MaxX - MinX.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY - MinY.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Contains reports whether r lies entirely inside the box.
func (b Box) Contains(r Rect) bool {
	return b.MinX <= r.Left && b.MinY <= r.Top && r.Right() <= b.MaxX && r.Bottom() <= b.MaxY
}

// PixelSize returns the raster size needed to hold the box, rounding up and
// clamping each dimension to at least one pixel so a single point still
// yields a drawable surface.
func (b Box) PixelSize() (width, height int) {
	width = int(math.Ceil(b.Width()))
	height = int(math.Ceil(b.Height()))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// ComputeBoundingBox folds the rendered bounds of every object into a single
// box. It returns nil when objects is empty.
//
// The fold only takes running minima and maxima, so the result does not
// depend on the order of objects.
func ComputeBoundingBox(objects []Object) *Box {
	if len(objects) == 0 {
		return nil
	}

	box := Box{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
	for _, obj := range objects {
		r := obj.Bounds()
		box.MinX = math.Min(box.MinX, r.Left)
		box.MinY = math.Min(box.MinY, r.Top)
		box.MaxX = math.Max(box.MaxX, r.Right())
		box.MaxY = math.Max(box.MaxY, r.Bottom())
	}
	return &box
}

// Localize duplicates every object, moves the duplicates so the box's
// top-left corner becomes the origin and marks them non-interactive.
// The input objects are left untouched.
func Localize(objects []Object, box *Box) ([]Object, error) {
	if box == nil {
		return nil, ErrEmptyExtraction
	}

	local := make([]Object, 0, len(objects))
	for _, obj := range objects {
		dup, err := obj.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to duplicate objects: %w", err)
		}
		dup = dup.Translated(-box.MinX, -box.MinY)
		dup.Selectable = false
		dup.Evented = false
		local = append(local, dup)
	}
	return local, nil
}

// FirstText returns the first object with non-empty text content. When kinds
// are given, only objects of those kinds are considered.
func FirstText(objects []Object, kinds ...Kind) (Object, bool) {
	for _, obj := range objects {
		if !obj.IsText() || obj.Text == "" {
			continue
		}
		if len(kinds) > 0 && !slices.Contains(kinds, obj.Kind) {
			continue
		}
		return obj, true
	}
	return Object{}, false
}
