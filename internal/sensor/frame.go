package sensor

import (
	"time"

	"github.com/golang/geo/r3"
	"gocv.io/x/gocv"
)

// JointState is the tracking confidence the sensor reports for a joint.
type JointState int

const (
	JointNotTracked JointState = iota
	JointInferred
	JointTracked
)

func (s JointState) String() string {
	switch s {
	case JointTracked:
		return "tracked"
	case JointInferred:
		return "inferred"
	default:
		return "not tracked"
	}
}

// JointType indexes the sensor's 20-joint skeleton.
type JointType int

const (
	HipCenter JointType = iota
	Spine
	ShoulderCenter
	Head
	ShoulderLeft
	ElbowLeft
	WristLeft
	HandLeft
	ShoulderRight
	ElbowRight
	WristRight
	HandRight
	HipLeft
	KneeLeft
	AnkleLeft
	FootLeft
	HipRight
	KneeRight
	AnkleRight
	FootRight
	JointCount
)

// Joint is a skeleton-space position in meters with its tracking state.
type Joint struct {
	Position r3.Vector  `json:"position"`
	State    JointState `json:"state"`
}

// Usable reports whether the sensor produced a position for the joint,
// either tracked or inferred.
func (j Joint) Usable() bool {
	return j.State != JointNotTracked
}

// SkeletonState is the tracking state of a whole body.
type SkeletonState int

const (
	SkeletonNotTracked SkeletonState = iota
	SkeletonPositionOnly
	SkeletonTracked
)

// Skeleton is one body reported by the sensor.
type Skeleton struct {
	ID       int               `json:"id"`
	State    SkeletonState     `json:"state"`
	Position r3.Vector         `json:"position"`
	Joints   [JointCount]Joint `json:"joints"`
}

// Tracked reports whether per-joint data is available for the body.
func (s *Skeleton) Tracked() bool {
	return s.State == SkeletonTracked
}

// Joint returns the joint of the given type, or a not-tracked joint for an
// out-of-range type.
func (s *Skeleton) Joint(t JointType) Joint {
	if t < 0 || t >= JointCount {
		return Joint{}
	}
	return s.Joints[t]
}

// Frame is one synchronized capture tick.
type Frame struct {
	Number    int64
	Timestamp time.Time

	// Color is the BGR color image. It is always an allocated Mat,
	// possibly empty.
	Color gocv.Mat

	// Depth is registered to color-image coordinates.
	Depth *DepthFrame

	Skeletons []Skeleton
}

// NewFrame creates a frame with a black color image and zeroed depth.
func NewFrame(number int64, width, height int) *Frame {
	return &Frame{
		Number:    number,
		Timestamp: time.Now(),
		Color:     gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3),
		Depth:     NewDepthFrame(width, height),
	}
}

// Close releases the color image.
func (f *Frame) Close() error {
	if f == nil {
		return nil
	}
	return f.Color.Close()
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{
		Number:    f.Number,
		Timestamp: f.Timestamp,
		Color:     f.Color.Clone(),
		Skeletons: append([]Skeleton(nil), f.Skeletons...),
	}
	if f.Depth != nil {
		c.Depth = f.Depth.Clone()
	}
	return c
}
