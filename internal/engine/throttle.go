package engine

import (
	"time"

	"github.com/kbdkit/remapd/internal/remap"
)

// Minimum spacing enforced between consecutive modifier presses and
// between consecutive ordinary-key presses (releases and repeats are
// never delayed), matching the constants
// original_source's throttle_emit.rs uses to work around compositors
// that drop key events delivered too close together.
const (
	modifierThrottle = 20 * time.Millisecond
	keyThrottle      = 10 * time.Millisecond
)

// throttleEmit tracks the last time a modifier and a non-modifier key
// press were emitted. Unlike the original's blocking thread::sleep,
// the engine never suspends: observe returns a millisecond delay to
// splice into the action stream as a remap.ActionDelay instead of
// blocking the caller.
type throttleEmit struct {
	lastModifier time.Time
	lastKey      time.Time
}

func newThrottleEmit() *throttleEmit { return &throttleEmit{} }

// observe inspects the about-to-be-emitted action and returns the delay
// (if any) that must precede it to satisfy the minimum spacing,
// updating its bookkeeping to now as the new "last emitted" timestamp.
func (t *throttleEmit) observe(a remap.Action, now time.Time) (delayMillis int64, needed bool) {
	if a.Kind != remap.ActionKeyEvent || a.Key.Value != remap.Press {
		return 0, false
	}

	var last *time.Time
	var min time.Duration
	if remap.IsModifierKey(a.Key.Key) {
		last, min = &t.lastModifier, modifierThrottle
	} else {
		last, min = &t.lastKey, keyThrottle
	}

	defer func() { *last = now }()

	if last.IsZero() {
		return 0, false
	}
	elapsed := now.Sub(*last)
	if elapsed >= min {
		return 0, false
	}
	return (min - elapsed).Milliseconds(), true
}
