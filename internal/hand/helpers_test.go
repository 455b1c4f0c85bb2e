package hand

import (
	"image"
	"math"
	"runtime"
	"testing"

	"github.com/golang/geo/r3"
	"gocv.io/x/gocv"
)

// maskFromFunc builds a size x size binary mask.
func maskFromFunc(t *testing.T, size int, inside func(x, y int) bool) gocv.Mat {
	t.Helper()

	buf := make([]byte, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if inside(x, y) {
				buf[y*size+x] = 255
			}
		}
	}

	view, err := gocv.NewMatFromBytes(size, size, gocv.MatTypeCV8UC1, buf)
	if err != nil {
		t.Fatalf("NewMatFromBytes() error = %v", err)
	}
	defer view.Close()

	m := view.Clone()
	runtime.KeepAlive(buf)
	return m
}

func disk(cx, cy, r int) func(x, y int) bool {
	return func(x, y int) bool {
		dx, dy := x-cx, y-cy
		return dx*dx+dy*dy <= r*r
	}
}

// star returns a five-pointed star with one point straight up.
func star(cx, cy, outer, inner float64) func(x, y int) bool {
	var poly []image.Point
	for i := 0; i < 10; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + float64(i)*math.Pi/5
		poly = append(poly, image.Pt(
			int(math.Round(cx+r*math.Cos(a))),
			int(math.Round(cy+r*math.Sin(a))),
		))
	}
	return func(x, y int) bool {
		return insidePolygon(poly, float64(x), float64(y))
	}
}

func insidePolygon(poly []image.Point, x, y float64) bool {
	in := false
	j := len(poly) - 1
	for i := range poly {
		xi, yi := float64(poly[i].X), float64(poly[i].Y)
		xj, yj := float64(poly[j].X), float64(poly[j].Y)
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			in = !in
		}
		j = i
	}
	return in
}

// flatMapper maps skeleton meters straight to pixels with the y axis
// flipped, so test geometry can land on exact pixel boundaries.
type flatMapper struct{}

func (flatMapper) SkeletonToDepth(p r3.Vector) (float64, float64, bool) {
	return p.X, -p.Y, true
}

func (flatMapper) DepthToColor(x, y int) image.Point {
	return image.Pt(x, y)
}
