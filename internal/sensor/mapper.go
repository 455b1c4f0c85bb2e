package sensor

import (
	"image"

	"github.com/golang/geo/r3"
)

const (
	// SkeletonToDepthMultiplier is the nominal focal length in pixels of the
	// depth camera at 320x240.
	SkeletonToDepthMultiplier = 285.63

	// minSkeletonDepth is the closest skeleton-space Z, in meters, that can
	// be projected.
	minSkeletonDepth = 1e-6
)

// CoordinateMapper maps between skeleton space, depth-image pixels and
// color-image pixels.
type CoordinateMapper interface {
	// SkeletonToDepth projects a skeleton-space point in meters to
	// sub-pixel depth-image coordinates. ok is false for points that
	// cannot be projected.
	SkeletonToDepth(p r3.Vector) (x, y float64, ok bool)

	// DepthToColor maps a depth-image pixel to the color-image pixel that
	// sees the same point, accounting for the parallax between the optics.
	DepthToColor(x, y int) image.Point
}

// PinholeMapper is the sensor's nominal projection with a fixed parallax
// offset between depth and color optics.
type PinholeMapper struct {
	Width       int
	Height      int
	Multiplier  float64
	ColorOffset image.Point
}

// NewPinholeMapper creates a PinholeMapper for the given resolution with no
// parallax offset.
func NewPinholeMapper(width, height int) *PinholeMapper {
	return &PinholeMapper{
		Width:      width,
		Height:     height,
		Multiplier: SkeletonToDepthMultiplier,
	}
}

// SkeletonToDepth implements CoordinateMapper.
func (m *PinholeMapper) SkeletonToDepth(p r3.Vector) (float64, float64, bool) {
	if p.Z <= minSkeletonDepth {
		return 0, 0, false
	}

	fx := m.Multiplier * float64(m.Width) / 320
	fy := m.Multiplier * float64(m.Height) / 240

	x := float64(m.Width)/2 + p.X*fx/p.Z
	y := float64(m.Height)/2 - p.Y*fy/p.Z
	return x, y, true
}

// DepthToColor implements CoordinateMapper.
func (m *PinholeMapper) DepthToColor(x, y int) image.Point {
	return image.Pt(x+m.ColorOffset.X, y+m.ColorOffset.Y)
}

// ProjectToColor projects a skeleton-space point to a color-image pixel.
// Depth coordinates are truncated to whole pixels before the color lookup.
func ProjectToColor(m CoordinateMapper, p r3.Vector) (image.Point, bool) {
	x, y, ok := m.SkeletonToDepth(p)
	if !ok {
		return image.Point{}, false
	}
	return m.DepthToColor(int(x), int(y)), true
}

// RegisterDepth remaps a depth frame into color-image coordinates.
// Pixels that map outside the frame are dropped; unmapped pixels stay 0.
func RegisterDepth(raw *DepthFrame, m CoordinateMapper) *DepthFrame {
	out := NewDepthFrame(raw.Width, raw.Height)
	for y := 0; y < raw.Height; y++ {
		for x := 0; x < raw.Width; x++ {
			mm := raw.Data[y*raw.Width+x]
			if mm == 0 {
				continue
			}
			c := m.DepthToColor(x, y)
			out.Set(c.X, c.Y, mm)
		}
	}
	return out
}
