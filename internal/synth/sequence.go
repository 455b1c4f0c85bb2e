package synth

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/ayusman/yubi/internal/gesture"
	"github.com/ayusman/yubi/internal/sensor"
)

// DefaultCycle is the gesture order used by Sequence.
var DefaultCycle = []gesture.Label{gesture.LabelRock, gesture.LabelScissors, gesture.LabelPaper}

// Default hand positions for one body facing the sensor at 1 m.
var (
	LeftHandPosition  = r3.Vector{X: -0.25, Y: 0, Z: 1}
	RightHandPosition = r3.Vector{X: 0.25, Y: 0, Z: 1}
)

// Sequence renders n frames of one body cycling through cycle, holding each
// pose for hold frames. The right hand shows the current pose and the left
// hand the next one. The caller must close every frame.
func (s *Scene) Sequence(n, hold int, cycle []gesture.Label) ([]*sensor.Frame, error) {
	frames := make([]*sensor.Frame, 0, n)
	for i := 0; i < n; i++ {
		f, err := s.frameAt(i, hold, cycle)
		if err != nil {
			closeAll(frames)
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// WriteRecording renders a sequence straight into a recording directory.
func (s *Scene) WriteRecording(dir string, n, hold, fps int) error {
	rec, err := sensor.NewRecorder(dir, sensor.RecordingMeta{
		Width:       s.Mapper.Width,
		Height:      s.Mapper.Height,
		FPS:         fps,
		Multiplier:  s.Mapper.Multiplier,
		ColorOffset: s.Mapper.ColorOffset,
	})
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		f, err := s.frameAt(i, hold, nil)
		if err != nil {
			return err
		}
		err = rec.Write(f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) frameAt(i, hold int, cycle []gesture.Label) (*sensor.Frame, error) {
	if len(cycle) == 0 {
		cycle = DefaultCycle
	}
	if hold <= 0 {
		hold = 1
	}

	step := i / hold
	right, err := ForLabel(RightHandPosition, cycle[step%len(cycle)])
	if err != nil {
		return nil, err
	}
	left, err := ForLabel(LeftHandPosition, cycle[(step+1)%len(cycle)])
	if err != nil {
		return nil, err
	}

	f, err := s.Render(int64(i), Body{ID: 1, Left: &left, Right: &right})
	if err != nil {
		return nil, fmt.Errorf("render frame %d: %w", i, err)
	}
	return f, nil
}

func closeAll(frames []*sensor.Frame) {
	for _, f := range frames {
		f.Close()
	}
}
