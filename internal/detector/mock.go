package detector

import (
	"image"
	"sync"

	"github.com/ayusman/yubi/internal/gesture"
	"github.com/ayusman/yubi/internal/hand"
	"github.com/ayusman/yubi/internal/sensor"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	readings []Reading
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetReadings sets the readings that will be returned by Detect.
func (m *MockDetector) SetReadings(readings []Reading) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readings = readings
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured readings or error.
func (m *MockDetector) Detect(frame *sensor.Frame) ([]Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]Reading(nil), m.readings...), nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// GestureReading returns a preset detected reading with n fingertips spread
// across the top of a hand region centered at (320, 240).
func GestureReading(skeletonID int, side Side, n int) Reading {
	center := image.Pt(320, 240)
	tips := make([]image.Point, n)
	for i := range tips {
		tips[i] = image.Pt(center.X-60+30*i, center.Y-70)
	}

	return Reading{
		SkeletonID: skeletonID,
		Side:       side,
		Result: hand.Result{
			Outcome:    hand.OutcomeDetected,
			Region:     image.Rect(217, 137, 422, 342),
			Center:     center,
			Wrist:      image.Pt(center.X, center.Y+45),
			Fingertips: tips,
			Label:      gesture.Classify(n),
		},
	}
}

// MissingReading returns a preset reading with the given no-data outcome.
func MissingReading(skeletonID int, side Side, outcome hand.Outcome) Reading {
	return Reading{
		SkeletonID: skeletonID,
		Side:       side,
		Result:     hand.Result{Outcome: outcome},
	}
}
