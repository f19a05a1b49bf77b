package remap

import "time"

// ModmapAction is the action a modmap entry resolves a physical key to.
// Exactly one of the three concrete kinds below implements it.
type ModmapAction interface {
	isModmapAction()
}

// KeysAction emits a literal sequence of keys in lockstep with the
// source key's press/release. Most modmaps bind a single key; Keys may
// hold several when a physical key should fan out to a chord, e.g.
// CapsLock -> [Ctrl, A].
type KeysAction struct {
	Keys []Key
}

func (KeysAction) isModmapAction() {}

// MultiPurposeKeyAction resolves to a tap action if the source key is
// released before TapTimeout elapses (and no other key press interrupts
// it), or a hold action otherwise. With FreeHold set there is no
// timeout. HoldThreshold is carried but not consulted when resolving
// tap vs hold.
type MultiPurposeKeyAction struct {
	Hold         []Key
	Tap          []Key
	HoldThreshold time.Duration
	TapTimeout    time.Duration
	FreeHold      bool
}

func (MultiPurposeKeyAction) isModmapAction() {}

// PressReleaseKeyAction hooks arbitrary keymap actions onto a physical
// key's press/repeat/release transitions, optionally swallowing the
// original key event.
type PressReleaseKeyAction struct {
	Press        []KeymapAction
	Repeat       []KeymapAction
	Release      []KeymapAction
	SkipKeyEvent bool
}

func (PressReleaseKeyAction) isModmapAction() {}

// ModmapEntry is one rewrite rule: FromKey maps to Action, subject to
// Filter.
type ModmapEntry struct {
	Name    string
	FromKey Key
	Action  ModmapAction
	Filter  Filter
}

// KeymapAction is one step of a chorded remap's action list. Exactly
// one of the concrete kinds below implements it.
type KeymapAction interface {
	isKeymapAction()
}

// KeyPressAndRelease emits a full modifier-aware press+release of
// KeyPress, with the dispatcher's modifier envelope.
type KeyPressAndRelease struct{ KeyPress KeyPress }

func (KeyPressAndRelease) isKeymapAction() {}

// KeyPressOnly emits a bare Press of Key with no modifier envelope.
type KeyPressOnly struct{ Key Key }

func (KeyPressOnly) isKeymapAction() {}

// KeyRepeatOnly emits a bare Repeat of Key.
type KeyRepeatOnly struct{ Key Key }

func (KeyRepeatOnly) isKeymapAction() {}

// KeyReleaseOnly emits a bare Release of Key.
type KeyReleaseOnly struct{ Key Key }

func (KeyReleaseOnly) isKeymapAction() {}

// RemapAction pushes a nested, ephemeral keymap table onto the
// override stack.
type RemapAction struct {
	Table      map[KeyPress][]KeymapAction
	Timeout    *time.Duration
	TimeoutKey []Key
}

func (RemapAction) isKeymapAction() {}

// LaunchAction runs an external command (argv form).
type LaunchAction struct{ Command []string }

func (LaunchAction) isKeymapAction() {}

// SetModeAction switches the engine's named mode.
type SetModeAction struct{ Mode string }

func (SetModeAction) isKeymapAction() {}

// SetMarkAction toggles the mark-set flag consumed by WithMarkAction.
type SetMarkAction struct{ Set bool }

func (SetMarkAction) isKeymapAction() {}

// WithMarkAction emits KeyPress, adding Shift to it iff mark-set is
// active and Shift is not already present.
type WithMarkAction struct{ KeyPress KeyPress }

func (WithMarkAction) isKeymapAction() {}

// EscapeNextKeyAction toggles the escape-next-key flag, which causes
// the following key press to bypass the matcher entirely.
type EscapeNextKeyAction struct{ Set bool }

func (EscapeNextKeyAction) isKeymapAction() {}

// SleepAction requests a Delay action of Millis milliseconds.
type SleepAction struct{ Millis int64 }

func (SleepAction) isKeymapAction() {}

// SetExtraModifiersAction is an internal-only action synthesized by the
// matcher to bracket a dispatch with the modifiers it virtually
// released; config files cannot author it directly.
type SetExtraModifiersAction struct{ Keys []Key }

func (SetExtraModifiersAction) isKeymapAction() {}

// IsRemapOnly reports whether every action in actions is a RemapAction,
// i.e. a set of sibling override installs rather than a terminal
// dispatch — the test the matcher uses to decide whether to keep
// scanning for more eligible remaps at the same precedence level.
func IsRemapOnly(actions []KeymapAction) bool {
	if len(actions) == 0 {
		return false
	}
	for _, a := range actions {
		if _, ok := a.(RemapAction); !ok {
			return false
		}
	}
	return true
}

// KeymapEntry is one chorded-remap rule.
type KeymapEntry struct {
	Name       string
	Trigger    KeyPress
	Actions    []KeymapAction
	Filter     Filter
	ExactMatch bool
}

// Config is the engine's input configuration. The engine reads it by
// reference and never mutates it.
type Config struct {
	Modmaps          []ModmapEntry
	KeymapTable      map[Key][]KeymapEntry
	DefaultMode      string
	VirtualModifiers map[Key]bool
	KeypressDelayMs  int64
	EnableWheel      bool

	// GenerationID distinguishes one loaded/reloaded Config from the
	// next in logs, without relying on wall-clock correlation.
	GenerationID string
}

// IsVirtualModifier reports whether k was declared a virtual modifier.
func (c *Config) IsVirtualModifier(k Key) bool {
	return c.VirtualModifiers != nil && c.VirtualModifiers[k]
}
