// Package pivot recomputes sprite anchor points after trimming.
package pivot

import (
	"fmt"
	"image"
)

// Pivot is an anchor point expressed as a fraction of the sprite frame,
// measured from the top-left corner. Center is (0.5, 0.5).
type Pivot struct {
	X, Y float64
}

// Center is the pivot assumed for entries that do not carry one.
var Center = Pivot{X: 0.5, Y: 0.5}

func (p Pivot) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Recalculate maps pivot p of an image of the passed size onto the frame
// that results from cropping the image to bbox and padding it with border
// pixels on every side.
//
// The pivot keeps pointing at the same spot of the artwork. Offsets from the
// original center are measured in a frame that is itself padded by border, so
// the result only equals p for an uncropped image.
//
// bbox must be non-empty and use the image's zero-based pixel coordinates.
func Recalculate(size image.Point, p Pivot, bbox image.Rectangle, border int) Pivot {
	if bbox == image.Rect(0, 0, size.X, size.Y) {
		return p
	}

	w, h := float64(size.X), float64(size.Y)
	b := float64(border)
	sw, sh := float64(bbox.Dx()), float64(bbox.Dy())

	dx := (p.X - 0.5) * (w + 2*b)
	dy := (p.Y - 0.5) * (h + 2*b)

	return Pivot{
		X: (w/2 - float64(bbox.Min.X) + dx + b) / (sw + 2*b),
		Y: (h/2 - float64(bbox.Min.Y) + dy + b) / (sh + 2*b),
	}
}
