package engine

import (
	"sort"
	"time"

	"github.com/kbdkit/remapd/internal/remap"
)

// multiPurposeState is the per-source-key state machine resolving tap
// vs hold outcomes under a configurable window.
type multiPurposeState struct {
	hold          []remap.Key
	tap           []remap.Key
	holdThreshold time.Duration
	tapTimeoutAt  *time.Time
	heldDown      bool
	freeHold      bool
}

func newMultiPurposeState(action remap.MultiPurposeKeyAction, now time.Time) *multiPurposeState {
	st := &multiPurposeState{
		hold:          action.Hold,
		tap:           action.Tap,
		holdThreshold: action.HoldThreshold,
		heldDown:      false,
		freeHold:      action.FreeHold,
	}
	if !action.FreeHold {
		t := now.Add(action.TapTimeout)
		st.tapTimeoutAt = &t
	}
	return st
}

func sortModifiersFirst(keys []remap.Key) []remap.Key {
	out := make([]remap.Key, len(keys))
	copy(out, keys)
	sort.SliceStable(out, func(i, j int) bool {
		return remap.IsModifierKey(out[i]) && !remap.IsModifierKey(out[j])
	})
	return out
}

func sortModifiersLast(keys []remap.Key) []remap.Key {
	out := make([]remap.Key, len(keys))
	copy(out, keys)
	sort.SliceStable(out, func(i, j int) bool {
		return !remap.IsModifierKey(out[i]) && remap.IsModifierKey(out[j])
	})
	return out
}

func pressEvents(keys []remap.Key) []keyValue {
	sorted := sortModifiersFirst(keys)
	out := make([]keyValue, len(sorted))
	for i, k := range sorted {
		out[i] = keyValue{k, remap.Press}
	}
	return out
}

func releaseEvents(keys []remap.Key) []keyValue {
	sorted := sortModifiersLast(keys)
	out := make([]keyValue, len(sorted))
	for i, k := range sorted {
		out[i] = keyValue{k, remap.Release}
	}
	return out
}

func repeatEvents(keys []remap.Key) []keyValue {
	sorted := sortModifiersFirst(keys)
	out := make([]keyValue, len(sorted))
	for i, k := range sorted {
		out[i] = keyValue{k, remap.Repeat}
	}
	return out
}

// pressAndRelease emits press of keys (modifiers first) followed by
// release of keys (modifiers last) — used for the "tap" outcome.
func pressAndRelease(keys []remap.Key) []keyValue {
	out := pressEvents(keys)
	out = append(out, releaseEvents(keys)...)
	return out
}

// repeat handles a Repeat event arriving while this state is tracked.
func (st *multiPurposeState) repeat(now time.Time) []keyValue {
	if st.tapTimeoutAt != nil {
		if now.Before(*st.tapTimeoutAt) {
			return nil
		}
		st.tapTimeoutAt = nil
		st.heldDown = true
		return pressEvents(st.hold)
	}
	return repeatEvents(st.hold)
}

// release handles a Release event arriving while this state is tracked.
// The caller removes the state from the engine's map after calling this.
func (st *multiPurposeState) release(now time.Time) []keyValue {
	if st.tapTimeoutAt != nil {
		if now.Before(*st.tapTimeoutAt) {
			return pressAndRelease(st.tap)
		}
		return pressAndRelease(st.hold)
	}
	if st.heldDown {
		return releaseEvents(st.hold)
	}
	return pressAndRelease(st.tap)
}

// forceHeld is called when another key's press intervenes while this
// state is still waiting or free-holding; it forces the hold outcome
// and returns the press events to emit (or nil if already held).
func (st *multiPurposeState) forceHeld() []keyValue {
	press := false
	if st.tapTimeoutAt != nil {
		st.tapTimeoutAt = nil
		st.heldDown = true
		press = true
	} else if !st.heldDown {
		st.heldDown = true
		press = true
	}
	if !press {
		return nil
	}
	return pressEvents(st.hold)
}

// keyValue pairs a key with the value to emit for it; used internally
// by the modmap/multi-purpose resolution before keymap dispatch.
type keyValue struct {
	Key   remap.Key
	Value remap.Value
}
