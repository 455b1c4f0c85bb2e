package sensor

import (
	"context"
	"errors"
	"testing"
)

func testFrames(n int) []*Frame {
	frames := make([]*Frame, n)
	for i := range frames {
		frames[i] = NewFrame(int64(i), 64, 48)
	}
	return frames
}

func closeFrames(frames []*Frame) {
	for _, f := range frames {
		f.Close()
	}
}

func TestMockSensor_Playback(t *testing.T) {
	frames := testFrames(2)
	defer closeFrames(frames)

	s := NewMockSensor(frames, false)
	ctx := context.Background()

	if _, err := s.NextFrame(ctx); !errors.Is(err, ErrSensorNotOpen) {
		t.Errorf("NextFrame() before Open error = %v, want ErrSensorNotOpen", err)
	}

	if err := s.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	for i := 0; i < 2; i++ {
		f, err := s.NextFrame(ctx)
		if err != nil {
			t.Fatalf("NextFrame() %d error = %v", i, err)
		}
		if f.Number != int64(i) {
			t.Errorf("frame number = %d, want %d", f.Number, i)
		}
		f.Close()
	}

	if _, err := s.NextFrame(ctx); !errors.Is(err, ErrNoMoreFrames) {
		t.Errorf("NextFrame() after last frame error = %v, want ErrNoMoreFrames", err)
	}
}

func TestMockSensor_Loop(t *testing.T) {
	frames := testFrames(1)
	defer closeFrames(frames)

	s := NewMockSensor(frames, true)
	s.Open()
	defer s.Close()

	for i := 0; i < 5; i++ {
		f, err := s.NextFrame(context.Background())
		if err != nil {
			t.Fatalf("NextFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockSensor_ClonesFrames(t *testing.T) {
	frames := testFrames(1)
	defer closeFrames(frames)
	frames[0].Depth.Set(0, 0, 700)

	s := NewMockSensor(frames, true)
	s.Open()
	defer s.Close()

	f, err := s.NextFrame(context.Background())
	if err != nil {
		t.Fatalf("NextFrame() error = %v", err)
	}
	defer f.Close()

	f.Depth.Set(0, 0, 1)
	if frames[0].Depth.At(0, 0) != 700 {
		t.Error("modifying a returned frame changed the source frame")
	}
}

func TestMockSensor_CanceledContext(t *testing.T) {
	frames := testFrames(1)
	defer closeFrames(frames)

	s := NewMockSensor(frames, true)
	s.Open()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.NextFrame(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("NextFrame() error = %v, want context.Canceled", err)
	}
}
