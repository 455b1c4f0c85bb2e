// Package hand estimates fingertips and a rock-paper-scissors gesture from a
// depth frame and the wrist and hand joints of one tracked body.
package hand

import (
	"image"

	"github.com/golang/geo/r3"

	"github.com/ayusman/yubi/internal/sensor"
)

// ExtractRegion projects the square of the given half width around the hand
// joint into the color image. ok is false when the square does not fit in a
// width x height frame: the top-left corner must be strictly inside, the
// bottom-right corner may touch (width, height).
func ExtractRegion(m sensor.CoordinateMapper, hand r3.Vector, halfWidth float64, width, height int) (image.Rectangle, bool) {
	lt, ok := sensor.ProjectToColor(m, hand.Add(r3.Vector{X: -halfWidth, Y: halfWidth}))
	if !ok {
		return image.Rectangle{}, false
	}
	rb, ok := sensor.ProjectToColor(m, hand.Add(r3.Vector{X: halfWidth, Y: -halfWidth}))
	if !ok {
		return image.Rectangle{}, false
	}

	if lt.X <= 0 || lt.Y <= 0 || rb.X > width || rb.Y > height {
		return image.Rectangle{}, false
	}

	rect := image.Rectangle{Min: lt, Max: rb}.Canon()
	if rect.Empty() || !rect.In(image.Rect(0, 0, width, height)) {
		return image.Rectangle{}, false
	}
	return rect, true
}
