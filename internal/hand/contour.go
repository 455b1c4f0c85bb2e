package hand

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"gocv.io/x/gocv"
)

// FindHandContour returns the boundary of the largest region in mask.
// Ties keep the first contour found. ok is false when mask has no
// foreground.
func FindHandContour(mask gocv.Mat) ([]image.Point, bool) {
	contours := gocv.FindContours(mask, gocv.RetrievalList, gocv.ChainApproxNone)
	defer contours.Close()

	if contours.Size() == 0 {
		return nil, false
	}

	largest := 0
	largestArea := gocv.ContourArea(contours.At(0))
	for i := 1; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > largestArea {
			largest = i
			largestArea = area
		}
	}

	points := contours.At(largest).ToPoints()
	if len(points) == 0 {
		return nil, false
	}
	return points, true
}

// FingertipCandidates returns the contour points whose distance from center
// exceeds the distance cfg.CurvatureWindow indices before and after it, with
// circular wrap, by more than cfg.MinProminence, and lies within the
// configured fraction of side/2.
func FingertipCandidates(contour []image.Point, center image.Point, side int, cfg Config) []image.Point {
	n := len(contour)
	if n == 0 {
		return nil
	}

	dists := make([]float64, n)
	for i, p := range contour {
		dists[i] = math.Hypot(float64(p.X-center.X), float64(p.Y-center.Y))
	}

	half := float64(side) / 2
	lo := half * cfg.MinDistanceRatio
	hi := half * cfg.MaxDistanceRatio
	step := cfg.CurvatureWindow

	var candidates []image.Point
	for i, now := range dists {
		before := dists[((i-step)%n+n)%n]
		next := dists[(i+step)%n]
		if now-before <= cfg.MinProminence || now-next <= cfg.MinProminence {
			continue
		}
		if now < lo || now > hi {
			continue
		}
		candidates = append(candidates, contour[i])
	}
	return candidates
}

// ClusterFingertips merges neighboring candidates into fingertips. The
// candidates are drawn on a blank rows x cols mask, dilated, and each
// resulting blob's contour centroid becomes one fingertip.
func ClusterFingertips(candidates []image.Point, rows, cols int, cfg Config) []r2.Point {
	if len(candidates) == 0 {
		return nil
	}

	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC1)
	defer canvas.Close()

	for _, p := range candidates {
		if p.X < 0 || p.Y < 0 || p.X >= cols || p.Y >= rows {
			continue
		}
		canvas.SetUCharAt(p.Y, p.X, 255)
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()

	for i := 0; i < cfg.DilateIterations; i++ {
		gocv.Dilate(canvas, &canvas, kernel)
	}

	clusters := gocv.FindContours(canvas, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer clusters.Close()

	tips := make([]r2.Point, 0, clusters.Size())
	for i := 0; i < clusters.Size(); i++ {
		tips = append(tips, contourCentroid(clusters.At(i)))
	}
	return tips
}

// contourCentroid returns the centroid of the area enclosed by a contour,
// truncated to whole pixels. Degenerate contours fall back to the center of
// their bounding box.
func contourCentroid(contour gocv.PointVector) r2.Point {
	points := gocv.NewMatFromPointVector(contour, true)
	defer points.Close()

	m := gocv.Moments(points, false)
	if m00 := m["m00"]; m00 != 0 {
		return r2.Point{
			X: math.Trunc(m["m10"] / m00),
			Y: math.Trunc(m["m01"] / m00),
		}
	}

	box := gocv.BoundingRect(contour)
	return r2.Point{
		X: float64(box.Min.X + box.Dx()/2),
		Y: float64(box.Min.Y + box.Dy()/2),
	}
}
