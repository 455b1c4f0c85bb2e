package detector

import (
	"fmt"
	"time"

	"github.com/ayusman/yubi/internal/hand"
	"github.com/ayusman/yubi/internal/sensor"
)

// DepthDetector implements Detector with the depth-silhouette estimator.
type DepthDetector struct {
	config    Config
	estimator *hand.Estimator
}

// NewDepthDetector creates a detector that projects joints with mapper.
func NewDepthDetector(config Config, mapper sensor.CoordinateMapper) (*DepthDetector, error) {
	for _, side := range config.Sides {
		if _, _, err := side.Joints(); err != nil {
			return nil, err
		}
	}

	est, err := hand.NewEstimator(config.Hand, mapper)
	if err != nil {
		return nil, fmt.Errorf("create estimator: %w", err)
	}

	return &DepthDetector{
		config:    config,
		estimator: est,
	}, nil
}

// Detect runs the estimator for each tracked body and configured side.
// An estimator error aborts the frame.
func (d *DepthDetector) Detect(frame *sensor.Frame) ([]Reading, error) {
	if frame == nil || frame.Depth == nil {
		return nil, hand.ErrNilDepth
	}

	var readings []Reading
	bodies := 0
	for i := range frame.Skeletons {
		sk := &frame.Skeletons[i]
		if !sk.Tracked() {
			continue
		}
		if d.config.MaxBodies > 0 && bodies >= d.config.MaxBodies {
			break
		}
		bodies++

		for _, side := range d.config.Sides {
			handJoint, wristJoint, _ := side.Joints()

			start := time.Now()
			res, err := d.estimator.Estimate(hand.Input{
				Depth: frame.Depth,
				Hand:  sk.Joint(handJoint),
				Wrist: sk.Joint(wristJoint),
			})
			if err != nil {
				return nil, fmt.Errorf("skeleton %d %s hand: %w", sk.ID, side, err)
			}

			readings = append(readings, Reading{
				SkeletonID: sk.ID,
				Side:       side,
				Result:     res,
				Elapsed:    time.Since(start),
			})
		}
	}

	return readings, nil
}

// Close is a no-op; the estimator holds no resources between frames.
func (d *DepthDetector) Close() error {
	return nil
}
