// Package remap holds the event/action vocabulary shared by the engine
// and every collaborator package (device, uinputsink, config, wm).
package remap

import "fmt"

// Key is a 16-bit scancode. Codes below DisguisedEventBase are real
// kernel key codes (as reported by evdev); codes in
// [DisguisedEventBase, DisguisedEventBase+26] are synthetic aliases used
// internally to carry relative-axis disguises and the match-any
// sentinel through the matching pipeline.
type Key uint16

// DisguisedEventBase is the first scancode reserved for synthetic keys.
// Real kernel key codes must never intrude on [DisguisedEventBase, 60000].
const DisguisedEventBase Key = 59974

// KeyMatchAny is the sentinel key that a keymap entry can bind to match
// any key press that didn't otherwise resolve, e.g. a catch-all mode
// switch. Disguised relative events are not matched against it.
const KeyMatchAny Key = 59999

// Value is the press/release/repeat state of a KeyEvent, matching the
// kernel's EV_KEY value field.
type Value int32

const (
	Release Value = 0
	Press   Value = 1
	Repeat  Value = 2
)

func (v Value) String() string {
	switch v {
	case Release:
		return "release"
	case Press:
		return "press"
	case Repeat:
		return "repeat"
	default:
		return fmt.Sprintf("value(%d)", int32(v))
	}
}

// IsPressed reports whether v represents a key that is currently down
// (Press or Repeat).
func (v Value) IsPressed() bool {
	return v == Press || v == Repeat
}

// KeyEvent is a single key transition originating from a physical or
// synthetic key.
type KeyEvent struct {
	Key   Key
	Value Value
}

// RelativeEvent is a single relative-axis sample, e.g. a mouse-wheel
// tick or pointer-motion delta. Code 0/1 are REL_X/REL_Y (pointer
// motion); higher codes are wheels and other axes.
type RelativeEvent struct {
	Code  uint16
	Value int32
}

// InputDeviceInfo identifies the physical device an event originated
// from. It is opaque to the engine beyond string/identifier matching.
type InputDeviceInfo struct {
	Name    string
	Path    string
	Vendor  uint16
	Product uint16
}

// ModifierKeys is the canonical set of real modifier scancodes the
// engine treats specially: they update the modifier set and, unlike
// ordinary keys, are never matched against the keymap themselves
// (modmap entries still apply to them, and they can be declared
// virtual modifiers).
var ModifierKeys = []Key{
	KeyLeftShift, KeyRightShift,
	KeyLeftCtrl, KeyRightCtrl,
	KeyLeftAlt, KeyRightAlt,
	KeyLeftMeta, KeyRightMeta,
}

// IsModifierKey reports whether k is one of the eight canonical
// modifier scancodes.
func IsModifierKey(k Key) bool {
	for _, m := range ModifierKeys {
		if m == k {
			return true
		}
	}
	return false
}

// Canonical modifier-key scancodes (Linux input-event-codes.h values).
const (
	KeyLeftShift  Key = 42
	KeyRightShift Key = 54
	KeyLeftCtrl   Key = 29
	KeyRightCtrl  Key = 97
	KeyLeftAlt    Key = 56
	KeyRightAlt   Key = 100
	KeyLeftMeta   Key = 125
	KeyRightMeta  Key = 126
)
