// Package geometry models the drawable objects on the whiteboard surface and
// the bounding-box arithmetic used to extract a hand-drawn equation.
//
// # Coordinate System
//
// Surface coordinates are floating point with the origin at the top-left
// corner, X increasing rightward and Y increasing downward. An object's
// position (Left, Top) is its top-left corner; path vertices are stored
// relative to that corner so that translating an object only moves Left and
// Top.
//
// # Rendered Bounds
//
// Object.Bounds returns the rendered rectangle, which grows the nominal
// rectangle by half the stroke width on every side. Bounding boxes are always
// computed from rendered bounds so anti-aliased stroke edges are not clipped
// when the region is cropped.
//
// # Immutability
//
// The live objects handed to this package are never modified. Localize
// returns deep copies (via github.com/jinzhu/copier) translated to the box
// origin, so callers may render or mutate the result freely.
package geometry
