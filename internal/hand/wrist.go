package hand

import "github.com/golang/geo/r2"

// FilterWristSide keeps the fingertips strictly on the far side of the
// perpendicular bisector of the segment from center to wrist. When wrist
// and center coincide there is no bisector and every fingertip is kept.
func FilterWristSide(tips []r2.Point, center, wrist r2.Point) []r2.Point {
	axis := wrist.Sub(center)
	if axis.Norm() == 0 {
		return append([]r2.Point(nil), tips...)
	}

	mid := center.Add(wrist).Mul(0.5)

	kept := make([]r2.Point, 0, len(tips))
	for _, tip := range tips {
		if tip.Sub(mid).Dot(axis) < 0 {
			kept = append(kept, tip)
		}
	}
	return kept
}
