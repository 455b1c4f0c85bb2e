package hand

import (
	"image"

	"github.com/ayusman/yubi/internal/gesture"
	"github.com/ayusman/yubi/internal/sensor"
)

// Outcome is how far estimation got for one hand in one frame.
type Outcome string

const (
	// OutcomeDetected means a hand silhouette was found and classified.
	OutcomeDetected Outcome = "detected"
	// OutcomeNotTracked means the hand or wrist joint had no position.
	OutcomeNotTracked Outcome = "not_tracked"
	// OutcomeOutOfBounds means the hand region left the frame.
	OutcomeOutOfBounds Outcome = "out_of_bounds"
	// OutcomeNoHand means no silhouette was found in the region.
	OutcomeNoHand Outcome = "no_hand"
)

// Outcomes lists every outcome.
var Outcomes = []Outcome{OutcomeDetected, OutcomeNotTracked, OutcomeOutOfBounds, OutcomeNoHand}

// Input is everything estimation needs for one hand.
type Input struct {
	Depth *sensor.DepthFrame
	Hand  sensor.Joint
	Wrist sensor.Joint
}

// Result is the estimate for one hand. Points are in color-image pixels.
// Only Outcome is set unless the hand was detected.
type Result struct {
	Outcome    Outcome         `json:"outcome"`
	Region     image.Rectangle `json:"region"`
	Center     image.Point     `json:"center"`
	Wrist      image.Point     `json:"wrist"`
	Fingertips []image.Point   `json:"fingertips"`
	Label      gesture.Label   `json:"label"`
}

// Detected reports whether a hand was found.
func (r Result) Detected() bool {
	return r.Outcome == OutcomeDetected
}

// Fingers returns the number of fingertips.
func (r Result) Fingers() int {
	return len(r.Fingertips)
}
