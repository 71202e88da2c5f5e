package pipeline

import (
	"math"
	"strconv"

	"github.com/ironsheep/equation-board/internal/geometry"
	"github.com/ironsheep/equation-board/internal/sampler"
)

// IDs of the annotations the orchestrator adds to the surface.
const (
	EquationObjectID    = "equation"
	ResultObjectID      = "result"
	PlaceholderObjectID = "placeholder"
)

// PlaceholderText is the prompt added by a double click.
const PlaceholderText = "Write equation here"

const (
	defaultFontSize = 20
	equationFont    = "Caveat, cursive"
	// equationGap separates the echoed equation from the captured ink.
	equationGap = 10
)

// textObject estimates the extent of a single line of text the way the
// browser lays out proportional fonts: about half an em per glyph.
func textObject(id string, kind geometry.Kind, text string, left, top, size float64, fill string) geometry.Object {
	return geometry.Object{
		ID:       id,
		Kind:     kind,
		Left:     left,
		Top:      top,
		Width:    float64(len([]rune(text))) * size * 0.5,
		Height:   size * 1.13,
		Text:     text,
		FontSize: size,
		Fill:     fill,
	}
}

// equationObject echoes a recognized equation below the captured region,
// sized to match the handwriting.
func equationObject(d sampler.Descriptor, box geometry.Box) geometry.Object {
	size := math.Round(box.Height() * 0.9)
	if size < 1 {
		size = defaultFontSize
	}
	obj := textObject(EquationObjectID, geometry.KindIText, d.Equation(), box.MinX, box.MaxY+equationGap, size, "green")
	obj.FontFamily = equationFont
	return obj
}

func resultObject(v float64) geometry.Object {
	return textObject(ResultObjectID, geometry.KindText, "Result: "+FormatResult(v), 10, 50, defaultFontSize, "blue")
}

func placeholderObject(x, y float64) geometry.Object {
	obj := textObject(PlaceholderObjectID, geometry.KindIText, PlaceholderText, x, y, defaultFontSize, "red")
	obj.Selectable = true
	obj.Evented = true
	return obj
}

// FormatResult renders a solved value with 14 significant digits, which hides
// binary rounding noise such as 0.1+0.2.
func FormatResult(v float64) string {
	return strconv.FormatFloat(v, 'g', 14, 64)
}
