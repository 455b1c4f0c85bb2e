// Package sensor models the depth sensor: frame-ready signalling, depth and
// skeleton frames, and the mapping between skeleton, depth and color space.
package sensor

import (
	"context"
	"errors"
)

// Default sensor settings
const (
	DefaultFPS    = 30
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrSensorNotOpen is returned when reading from a sensor that is not open.
	ErrSensorNotOpen = errors.New("sensor is not open")

	// ErrNoMoreFrames is returned by playback sensors once a non-looping
	// sequence is exhausted.
	ErrNoMoreFrames = errors.New("no more frames")
)

// Sensor defines the interface for depth sensor implementations.
type Sensor interface {
	Open() error
	Close() error

	// NextFrame blocks until the next synchronized color, depth and skeleton
	// frame is ready, or ctx is done. The caller owns the returned frame and
	// must Close it.
	NextFrame(ctx context.Context) (*Frame, error)

	// Mapper returns the coordinate mapping for this sensor's optics.
	Mapper() CoordinateMapper

	// Resolution returns the frame size in pixels.
	Resolution() (width, height int)
}
