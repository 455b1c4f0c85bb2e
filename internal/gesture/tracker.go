package gesture

import (
	"sync"
	"time"
)

// Change is a label transition for one hand.
type Change struct {
	Key      string
	Previous Label
	Current  Label
	Fingers  int
	At       time.Time
}

// Tracker remembers the last label seen for each hand and reports
// transitions. A hand that stays on the same label for consecutive updates
// fires once.
type Tracker struct {
	mu       sync.Mutex
	last     map[string]Label
	OnChange func(c Change)
}

// NewTracker creates a Tracker with no history.
func NewTracker() *Tracker {
	return &Tracker{
		last: make(map[string]Label),
	}
}

// Update records the label for key and reports whether it differs from the
// previous one. LabelNone clears the history for key without firing, so the
// same gesture fires again when the hand reappears.
func (t *Tracker) Update(key string, label Label, fingers int) bool {
	t.mu.Lock()
	prev, seen := t.last[key]
	if label == LabelNone {
		delete(t.last, key)
		t.mu.Unlock()
		return false
	}
	if seen && prev == label {
		t.mu.Unlock()
		return false
	}
	t.last[key] = label
	onChange := t.OnChange
	t.mu.Unlock()

	if onChange != nil {
		onChange(Change{
			Key:      key,
			Previous: prev,
			Current:  label,
			Fingers:  fingers,
			At:       time.Now(),
		})
	}
	return true
}

// Last returns the current label for key.
func (t *Tracker) Last(key string) Label {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last[key]
}

// Reset forgets all hands.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = make(map[string]Label)
}
