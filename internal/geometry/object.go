package geometry

import (
	"fmt"

	"github.com/jinzhu/copier"
)

// Kind identifies how an object is drawn.
type Kind string

const (
	// KindPath is a free-hand stroke made of connected vertices.
	KindPath Kind = "path"

	// KindText is static text.
	KindText Kind = "text"

	// KindIText is editable text, such as the double-click placeholder.
	KindIText Kind = "i-text"

	// KindRect is a filled and/or stroked rectangle.
	KindRect Kind = "rect"
)

// Point is a 2D point in surface units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Object is a drawable item on the whiteboard surface.
//
// The JSON field names follow the canvas widget's object model so the browser
// can send its objects without translation.
type Object struct {
	ID     string  `json:"id,omitempty"`
	Kind   Kind    `json:"type"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Stroke and Fill are CSS-style colours ("#000000", "rgb(0,0,0)", "black").
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Fill        string  `json:"fill,omitempty"`

	// Points holds path vertices relative to (Left, Top).
	Points []Point `json:"points,omitempty"`

	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`

	Selectable bool `json:"selectable"`
	Evented    bool `json:"evented"`
}

// Bounds returns the rendered rectangle of the object, including half the
// stroke width of padding on every side.
func (o Object) Bounds() Rect {
	pad := o.StrokeWidth / 2
	if pad < 0 {
		pad = 0
	}
	return Rect{
		Left:   o.Left - pad,
		Top:    o.Top - pad,
		Width:  o.Width + 2*pad,
		Height: o.Height + 2*pad,
	}
}

// IsText reports whether the object carries text content.
func (o Object) IsText() bool {
	return o.Kind == KindText || o.Kind == KindIText
}

// Clone returns a deep copy of the object, including its vertex slice.
func (o Object) Clone() (Object, error) {
	var dup Object
	if err := copier.CopyWithOption(&dup, &o, copier.Option{DeepCopy: true}); err != nil {
		return Object{}, fmt.Errorf("failed to clone object %q: %w", o.ID, err)
	}
	return dup, nil
}

// Translated returns a copy of the object moved by (dx, dy).
func (o Object) Translated(dx, dy float64) Object {
	o.Left += dx
	o.Top += dy
	return o
}
