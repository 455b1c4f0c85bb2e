package hand

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid estimator config")

	// ErrNilDepth is returned when Estimate is called without a depth frame.
	ErrNilDepth = errors.New("no depth frame")
)

// Config holds the estimator thresholds.
type Config struct {
	// RegionHalfWidth is half the side of the real-world square around the
	// hand joint, in meters.
	RegionHalfWidth float64

	// NearBand is how far in front of the hand center a pixel may be and
	// still count as hand, in millimeters.
	NearBand int

	// FarBand is how far behind the hand center a pixel may be, in
	// millimeters.
	FarBand int

	// InvalidDepthSentinel replaces zero (no return) samples so they fall
	// outside any band.
	InvalidDepthSentinel uint16

	// MaskSize is the side of the canonical square mask in pixels.
	MaskSize int

	// CurvatureWindow is the contour index offset compared on each side of a
	// point when looking for local distance maxima.
	CurvatureWindow int

	// MinProminence is how far, in mask pixels, a point must stand out from
	// both window neighbors to count as a local maximum. It absorbs the
	// rounding of a pixelated boundary, so a plain disk yields no maxima.
	MinProminence float64

	// MinDistanceRatio and MaxDistanceRatio bound the distance of a
	// fingertip from the mask center, as fractions of half the mask side.
	MinDistanceRatio float64
	MaxDistanceRatio float64

	// DilateIterations is the number of 3x3 dilations that merge neighboring
	// fingertip candidates into clusters.
	DilateIterations int
}

// DefaultConfig returns the thresholds tuned for the sensor at 640x480.
func DefaultConfig() Config {
	return Config{
		RegionHalfWidth:      0.18,
		NearBand:             300,
		FarBand:              50,
		InvalidDepthSentinel: 8192,
		MaskSize:             300,
		CurvatureWindow:      50,
		MinProminence:        2,
		MinDistanceRatio:     0.4,
		MaxDistanceRatio:     0.8,
		DilateIterations:     3,
	}
}

// Validate checks that the thresholds are usable.
func (c Config) Validate() error {
	switch {
	case c.RegionHalfWidth <= 0:
		return fmt.Errorf("%w: region half width must be positive", ErrInvalidConfig)
	case c.NearBand < 0 || c.FarBand < 0:
		return fmt.Errorf("%w: depth bands must not be negative", ErrInvalidConfig)
	case c.MaskSize <= 0:
		return fmt.Errorf("%w: mask size must be positive", ErrInvalidConfig)
	case c.CurvatureWindow <= 0:
		return fmt.Errorf("%w: curvature window must be positive", ErrInvalidConfig)
	case c.MinProminence < 0:
		return fmt.Errorf("%w: minimum prominence must not be negative", ErrInvalidConfig)
	case c.MinDistanceRatio < 0 || c.MaxDistanceRatio < c.MinDistanceRatio:
		return fmt.Errorf("%w: distance ratios must satisfy 0 <= min <= max", ErrInvalidConfig)
	case c.DilateIterations < 0:
		return fmt.Errorf("%w: dilate iterations must not be negative", ErrInvalidConfig)
	case c.InvalidDepthSentinel <= maxSensorDepth:
		return fmt.Errorf("%w: invalid depth sentinel %d is within sensor range", ErrInvalidConfig, c.InvalidDepthSentinel)
	}
	return nil
}
