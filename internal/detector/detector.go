package detector

import (
	"fmt"
	"time"

	"github.com/ayusman/yubi/internal/hand"
	"github.com/ayusman/yubi/internal/sensor"
)

// Detector defines the interface for hand gesture detection implementations.
type Detector interface {
	// Detect estimates every configured hand of every tracked body in a
	// frame. Returns an empty slice if no body is tracked.
	Detect(frame *sensor.Frame) ([]Reading, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Side selects a hand.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Joints returns the hand and wrist joints for the side.
func (s Side) Joints() (handJoint, wristJoint sensor.JointType, err error) {
	switch s {
	case SideLeft:
		return sensor.HandLeft, sensor.WristLeft, nil
	case SideRight:
		return sensor.HandRight, sensor.WristRight, nil
	default:
		return 0, 0, fmt.Errorf("unknown hand side %q", s)
	}
}

// Reading is the estimate for one hand of one body in one frame.
type Reading struct {
	SkeletonID int           `json:"skeleton_id"`
	Side       Side          `json:"side"`
	Result     hand.Result   `json:"result"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Key identifies the hand across frames.
func (r Reading) Key() string {
	return fmt.Sprintf("%d/%s", r.SkeletonID, r.Side)
}

// Config holds configuration options for hand detection.
type Config struct {
	// Sides lists the hands to estimate for each body (default: both).
	Sides []Side

	// MaxBodies is the maximum number of tracked bodies to process per frame
	// (default: 2).
	MaxBodies int

	// Hand holds the estimator thresholds.
	Hand hand.Config
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Sides:     []Side{SideLeft, SideRight},
		MaxBodies: 2,
		Hand:      hand.DefaultConfig(),
	}
}
