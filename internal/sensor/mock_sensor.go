package sensor

import (
	"context"
	"fmt"
	"sync"
)

// MockSensor plays back in-memory frames for testing.
type MockSensor struct {
	frames  []*Frame
	index   int
	loop    bool
	mapper  CoordinateMapper
	width   int
	height  int
	mu      sync.Mutex
	running bool
}

// NewMockSensor creates a MockSensor at the default resolution.
func NewMockSensor(frames []*Frame, loop bool) *MockSensor {
	return &MockSensor{
		frames: frames,
		loop:   loop,
		mapper: NewPinholeMapper(DefaultWidth, DefaultHeight),
		width:  DefaultWidth,
		height: DefaultHeight,
	}
}

func (s *MockSensor) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.index = 0
	return nil
}

func (s *MockSensor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

// NextFrame returns a copy of the next frame without waiting.
func (s *MockSensor) NextFrame(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil, ErrSensorNotOpen
	}

	if len(s.frames) == 0 {
		return nil, fmt.Errorf("mock sensor: %w", ErrNoMoreFrames)
	}

	if s.index >= len(s.frames) {
		if !s.loop {
			return nil, ErrNoMoreFrames
		}
		s.index = 0
	}

	// Clone the frame so the original isn't modified
	frame := s.frames[s.index].Clone()
	s.index++

	return frame, nil
}

func (s *MockSensor) Mapper() CoordinateMapper { return s.mapper }
func (s *MockSensor) Resolution() (int, int)   { return s.width, s.height }

// SetMapper replaces the coordinate mapper.
func (s *MockSensor) SetMapper(m CoordinateMapper) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapper = m
}

// SetFrames replaces the frame sequence
func (s *MockSensor) SetFrames(frames []*Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = frames
	s.index = 0
}

// IsOpen reports whether the sensor is open.
func (s *MockSensor) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
