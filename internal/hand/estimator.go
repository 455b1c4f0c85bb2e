package hand

import (
	"fmt"
	"image"

	"github.com/golang/geo/r2"

	"github.com/ayusman/yubi/internal/gesture"
	"github.com/ayusman/yubi/internal/sensor"
)

// Estimator turns one hand of one frame into fingertips and a gesture.
// It keeps no state between calls and is safe for concurrent use.
type Estimator struct {
	cfg    Config
	mapper sensor.CoordinateMapper
}

// NewEstimator creates an Estimator that projects joints with mapper.
func NewEstimator(cfg Config, mapper sensor.CoordinateMapper) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if mapper == nil {
		return nil, fmt.Errorf("%w: no coordinate mapper", ErrInvalidConfig)
	}
	return &Estimator{cfg: cfg, mapper: mapper}, nil
}

// Config returns the estimator thresholds.
func (e *Estimator) Config() Config {
	return e.cfg
}

// Estimate runs the full pipeline for one hand. Frames without a usable hand
// are reported through Result.Outcome; an error means an image operation
// failed.
func (e *Estimator) Estimate(in Input) (Result, error) {
	if in.Depth == nil {
		return Result{}, ErrNilDepth
	}
	if !in.Hand.Usable() || !in.Wrist.Usable() {
		return Result{Outcome: OutcomeNotTracked}, nil
	}

	wristPx, ok := sensor.ProjectToColor(e.mapper, in.Wrist.Position)
	if !ok {
		return Result{Outcome: OutcomeNotTracked}, nil
	}

	rect, ok := ExtractRegion(e.mapper, in.Hand.Position, e.cfg.RegionHalfWidth, in.Depth.Width, in.Depth.Height)
	if !ok {
		return Result{Outcome: OutcomeOutOfBounds}, nil
	}

	handPx, ok := sensor.ProjectToColor(e.mapper, in.Hand.Position)
	if !ok {
		return Result{Outcome: OutcomeOutOfBounds}, nil
	}
	centerDepth := in.Depth.At(handPx.X, handPx.Y)
	if centerDepth == 0 {
		return Result{Outcome: OutcomeNoHand, Region: rect}, nil
	}

	mask, err := Segment(in.Depth, rect, centerDepth, e.cfg)
	if err != nil {
		return Result{}, err
	}
	defer mask.Close()

	contour, ok := FindHandContour(mask)
	if !ok {
		return Result{Outcome: OutcomeNoHand, Region: rect}, nil
	}

	rows, cols := mask.Rows(), mask.Cols()
	center := image.Pt(cols/2, rows/2)
	candidates := FingertipCandidates(contour, center, max(rows, cols), e.cfg)
	tips := ClusterFingertips(candidates, rows, cols, e.cfg)

	scale := r2.Point{
		X: float64(cols) / float64(rect.Dx()),
		Y: float64(rows) / float64(rect.Dy()),
	}
	wristMask := r2.Point{
		X: float64(wristPx.X-rect.Min.X) * scale.X,
		Y: float64(wristPx.Y-rect.Min.Y) * scale.Y,
	}
	centerMask := r2.Point{X: float64(center.X), Y: float64(center.Y)}

	kept := FilterWristSide(tips, centerMask, wristMask)

	fingertips := make([]image.Point, len(kept))
	for i, tip := range kept {
		fingertips[i] = toColor(tip, rect, scale)
	}

	return Result{
		Outcome:    OutcomeDetected,
		Region:     rect,
		Center:     toColor(centerMask, rect, scale),
		Wrist:      wristPx,
		Fingertips: fingertips,
		Label:      gesture.Classify(len(fingertips)),
	}, nil
}

// toColor maps a canonical mask point back into the color image.
func toColor(p r2.Point, rect image.Rectangle, scale r2.Point) image.Point {
	return image.Pt(
		rect.Min.X+int(p.X/scale.X),
		rect.Min.Y+int(p.Y/scale.Y),
	)
}
