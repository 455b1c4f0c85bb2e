// Package synth renders synthetic hands into depth frames and skeletons so
// the pipeline can run without a sensor.
package synth

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/golang/geo/r3"
	"gocv.io/x/gocv"

	"github.com/ayusman/yubi/internal/gesture"
	"github.com/ayusman/yubi/internal/sensor"
)

// Hand dimensions in meters.
const (
	PalmRadius   = 0.05
	FingerLength = 0.12
	FingerWidth  = 0.018
	WristOffset  = 0.08

	// fingerSpacing is the angle between neighboring fingers in degrees.
	fingerSpacing = 30.0
)

// Hand is a hand pose at a skeleton-space position. Fingers holds the
// direction of each extended finger in degrees from straight up, positive
// to the right. The wrist sits WristOffset below the hand.
type Hand struct {
	Position r3.Vector
	Fingers  []float64
}

// NewHand creates a hand with n evenly spread fingers.
func NewHand(pos r3.Vector, n int) Hand {
	fingers := make([]float64, n)
	for i := range fingers {
		fingers[i] = (float64(i) - float64(n-1)/2) * fingerSpacing
	}
	return Hand{Position: pos, Fingers: fingers}
}

// ForLabel creates a hand showing the given gesture.
func ForLabel(pos r3.Vector, label gesture.Label) (Hand, error) {
	switch label {
	case gesture.LabelRock:
		return NewHand(pos, 0), nil
	case gesture.LabelScissors:
		return NewHand(pos, 2), nil
	case gesture.LabelPaper:
		return NewHand(pos, 5), nil
	default:
		return Hand{}, fmt.Errorf("no synthetic pose for %q", label)
	}
}

// Wrist returns the wrist joint position.
func (h Hand) Wrist() r3.Vector {
	return h.Position.Sub(r3.Vector{Y: WristOffset})
}

// contains reports whether the hand-plane offset (x right, y up, meters)
// from the hand center is inside the silhouette.
func (h Hand) contains(x, y float64) bool {
	if x*x+y*y <= PalmRadius*PalmRadius {
		return true
	}
	for _, deg := range h.Fingers {
		rad := deg * math.Pi / 180
		along := x*math.Sin(rad) + y*math.Cos(rad)
		across := x*math.Cos(rad) - y*math.Sin(rad)
		if along >= 0 && along <= FingerLength && math.Abs(across) <= FingerWidth/2 {
			return true
		}
	}
	return false
}

// Body is one tracked person. A nil hand is reported as not tracked.
type Body struct {
	ID    int
	Left  *Hand
	Right *Hand
}

// Scene renders bodies in front of a flat background.
type Scene struct {
	Mapper *sensor.PinholeMapper

	// Background is the depth of every pixel not covered by a hand, in
	// millimeters. Zero renders no return.
	Background uint16
}

// NewScene creates a scene at the given resolution with a wall at 2 m.
func NewScene(width, height int) *Scene {
	return &Scene{
		Mapper:     sensor.NewPinholeMapper(width, height),
		Background: 2000,
	}
}

// Render produces a frame with the bodies' hands drawn into the depth and
// color images. The caller must close the frame.
func (s *Scene) Render(number int64, bodies ...Body) (*sensor.Frame, error) {
	w, h := s.Mapper.Width, s.Mapper.Height

	depth := sensor.NewDepthFrame(w, h)
	depth.Fill(s.Background)

	frame := &sensor.Frame{
		Number:    number,
		Timestamp: time.Now(),
		Depth:     depth,
	}

	for _, b := range bodies {
		sk := sensor.Skeleton{ID: b.ID, State: sensor.SkeletonTracked}
		if b.Left != nil {
			s.drawHand(depth, *b.Left)
			setHand(&sk, sensor.HandLeft, sensor.WristLeft, *b.Left)
			sk.Position = b.Left.Position
		}
		if b.Right != nil {
			s.drawHand(depth, *b.Right)
			setHand(&sk, sensor.HandRight, sensor.WristRight, *b.Right)
			sk.Position = b.Right.Position
		}
		frame.Skeletons = append(frame.Skeletons, sk)
	}

	color, err := shade(depth)
	if err != nil {
		return nil, err
	}
	frame.Color = color

	return frame, nil
}

func setHand(sk *sensor.Skeleton, hand, wrist sensor.JointType, h Hand) {
	sk.Joints[hand] = sensor.Joint{Position: h.Position, State: sensor.JointTracked}
	sk.Joints[wrist] = sensor.Joint{Position: h.Wrist(), State: sensor.JointTracked}
}

// drawHand writes the hand silhouette at the hand's distance. Depth is
// registered to color coordinates, so each color pixel is traced back
// through the parallax offset onto the hand plane.
func (s *Scene) drawHand(depth *sensor.DepthFrame, hand Hand) {
	m := s.Mapper
	z := hand.Position.Z
	if z <= 0 {
		return
	}
	mm := uint16(math.Round(z * 1000))

	fx := m.Multiplier * float64(m.Width) / 320
	fy := m.Multiplier * float64(m.Height) / 240

	reach := PalmRadius + FingerLength
	x0, y0, ok0 := m.SkeletonToDepth(hand.Position.Add(r3.Vector{X: -reach, Y: reach}))
	x1, y1, ok1 := m.SkeletonToDepth(hand.Position.Add(r3.Vector{X: reach, Y: -reach}))
	if !ok0 || !ok1 {
		return
	}

	for dy := int(y0) - 1; dy <= int(y1)+1; dy++ {
		for dx := int(x0) - 1; dx <= int(x1)+1; dx++ {
			x := (float64(dx)-float64(m.Width)/2)*z/fx - hand.Position.X
			y := (float64(m.Height)/2-float64(dy))*z/fy - hand.Position.Y
			if !hand.contains(x, y) {
				continue
			}
			c := m.DepthToColor(dx, dy)
			depth.Set(c.X, c.Y, mm)
		}
	}
}

// shade renders depth as a BGR gray image, nearer is brighter.
func shade(depth *sensor.DepthFrame) (gocv.Mat, error) {
	buf := make([]byte, len(depth.Data)*3)
	for i, mm := range depth.Data {
		var v byte
		if mm > 0 && mm < 4096 {
			v = byte(255 - mm/16)
		}
		buf[i*3], buf[i*3+1], buf[i*3+2] = v, v, v
	}

	view, err := gocv.NewMatFromBytes(depth.Height, depth.Width, gocv.MatTypeCV8UC3, buf)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("shade depth: %w", err)
	}
	defer view.Close()

	m := view.Clone()
	runtime.KeepAlive(buf)
	return m, nil
}
