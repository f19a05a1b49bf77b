package remap

import "github.com/holoplot/go-evdev"

// Event is the input to the engine. Exactly one of the embedded kinds
// applies; Kind says which.
type Event struct {
	Kind EventKind

	// Device is set for KeyEvent and RelativeEvent.
	Device InputDeviceInfo
	Key    KeyEvent
	Rel    RelativeEvent

	// Other carries a passthrough raw kernel event (e.g. EV_SYN, EV_MSC)
	// that the engine forwards unchanged.
	Other evdev.InputEvent
}

// EventKind discriminates the Event union.
type EventKind int

const (
	EventKey EventKind = iota
	EventRelative
	EventOther
	EventOverrideTimeout
)

// Action is a single instruction produced by the engine for the output
// sink (uinput emitter) to execute.
type Action struct {
	Kind ActionKind

	Key     KeyEvent
	Rel     RelativeEvent
	Mouse   []RelativeEvent
	Other   evdev.InputEvent
	Command []string
	Delay   int64 // milliseconds
}

// ActionKind discriminates the Action union.
type ActionKind int

const (
	ActionKeyEvent ActionKind = iota
	ActionRelativeEvent
	ActionMouseMovementEventCollection
	ActionInputEvent
	ActionCommand
	ActionDelay
)
