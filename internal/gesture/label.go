// Package gesture maps fingertip counts to rock-paper-scissors labels.
package gesture

import "fmt"

// Label is the gesture recognized for one hand.
type Label string

const (
	// LabelNone means no hand was found, so nothing was classified.
	LabelNone Label = ""
	// LabelRock is a closed fist: no fingertips.
	LabelRock Label = "rock"
	// LabelScissors is two extended fingers.
	LabelScissors Label = "scissors"
	// LabelPaper is an open hand with five extended fingers.
	LabelPaper Label = "paper"
	// LabelUnknown is any other fingertip count.
	LabelUnknown Label = "unknown"
)

// Labels lists every label a classified hand can carry.
var Labels = []Label{LabelRock, LabelScissors, LabelPaper, LabelUnknown}

// Bindable lists the labels an action can be bound to. Ambiguous counts
// are recorded but never trigger an action.
var Bindable = []Label{LabelRock, LabelScissors, LabelPaper}

// Classify returns the label for a count of fingertips on the far side of
// the palm.
func Classify(fingers int) Label {
	switch fingers {
	case 0:
		return LabelRock
	case 2:
		return LabelScissors
	case 5:
		return LabelPaper
	default:
		return LabelUnknown
	}
}

// Valid reports whether l is one of Labels.
func (l Label) Valid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// Bindable reports whether an action may be bound to l.
func (l Label) Bindable() bool {
	for _, b := range Bindable {
		if l == b {
			return true
		}
	}
	return false
}

// ParseLabel converts a string to a Label.
func ParseLabel(s string) (Label, error) {
	l := Label(s)
	if !l.Valid() {
		return LabelNone, fmt.Errorf("unknown gesture label %q", s)
	}
	return l, nil
}

// ParseBindableLabel converts a string to a Label that actions can be bound
// to.
func ParseBindableLabel(s string) (Label, error) {
	l := Label(s)
	if !l.Bindable() {
		return LabelNone, fmt.Errorf("gesture label %q cannot be bound to an action", s)
	}
	return l, nil
}

func (l Label) String() string {
	if l == LabelNone {
		return "none"
	}
	return string(l)
}
