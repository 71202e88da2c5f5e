// Package imaging renders and prepares the raster images exchanged with the
// recognition back ends.
//
// It has two directions:
//
//   - Outbound snapshots: CropToBoundingBox duplicates the whiteboard objects
//     inside a bounding box, translates them to a local origin and draws them
//     onto a fresh opaque white surface, which is then encoded as JPEG
//     (quality 80) or PNG. Recognition back ends degrade on transparent
//     pixels, so the background is always opaque.
//   - Inbound uploads: DecodeDataURL validates and decodes images posted by
//     clients, and TrimToInk/Binarize prepare them for OCR.
//
// # Coordinate System
//
// Snapshot pixels map 1:1 to surface units after translation, with (0,0) at
// the top-left corner of the bounding box. Surface sizes are rounded up and
// clamped to at least one pixel in each dimension.
//
// # Rendering
//
// Strokes are rasterized with golang.org/x/image/vector as quads with round
// joins, so thick anti-aliased pencil strokes look the way the canvas drew
// them. Text uses the 7x13 bitmap face from golang.org/x/image/font/basicfont,
// scaled to the object's font size with github.com/disintegration/imaging.
//
// # Colors
//
// Object colours are CSS-style strings parsed with
// github.com/lucasb-eyer/go-colorful. Unknown colours fall back to black for
// strokes and text and to transparent for rectangle fills.
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use.
package imaging
