// Package engine implements the matching and dispatch core: it
// consumes batches of remap.Event and produces remap.Action, holding
// no knowledge of evdev, uinput, D-Bus, or TOML.
package engine

import (
	"fmt"
	"time"

	"github.com/kbdkit/remapd/internal/remap"
)

// Engine is the single-threaded, non-suspending transformation core.
// It is not safe for concurrent use; a caller feeds it one event batch
// at a time and drains the returned actions before the next call.
type Engine struct {
	log Logger

	modifiers          map[remap.Key]bool
	extraModifiersHeld []remap.Key
	pressedKeys        map[remap.Key][]remap.Key
	multiPurpose       map[remap.Key]*multiPurposeState

	overrideRemaps     []overrideTable
	overrideTimeoutKey []remap.Key
	overrideTimer      Timer
	currentTriggerKey  remap.Key
	cfg                *remap.Config

	mode          string
	markSet       bool
	escapeNextKey bool
	keypressDelay time.Duration

	applicationCache *string
	titleCache       *string

	relative   *relativeCodec
	throttle   *throttleEmit
	wm         WMClient
	now        func() time.Time
	mouseBatch []remap.RelativeEvent

	actions []remap.Action
}

// Logger is the minimal structured-logging surface the engine needs;
// satisfied directly by *log.Logger, and by any richer
// logger the caller wires in.
type Logger interface {
	Printf(format string, args ...any)
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the engine's logger (default: a discarding stub).
func WithLogger(l Logger) Option { return func(e *Engine) { e.log = l } }

// WithClock overrides the engine's time source, for deterministic tests.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

type discardLogger struct{}

func (discardLogger) Printf(string, ...any) {}

// New builds an Engine. timer is the caller's monotonic one-shot used
// for override-stack timeouts; wm is the window-manager collaborator
// (use a NullClient when none is configured).
func New(defaultMode string, timer Timer, wm WMClient, opts ...Option) *Engine {
	e := &Engine{
		log:            discardLogger{},
		modifiers:      make(map[remap.Key]bool),
		pressedKeys:    make(map[remap.Key][]remap.Key),
		multiPurpose:   make(map[remap.Key]*multiPurposeState),
		overrideTimer:  timer,
		mode:           defaultMode,
		relative:       newRelativeCodec(),
		throttle:       newThrottleEmit(),
		wm:             wm,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnEvents runs one batch of raw events through the modmap/keymap
// pipeline and returns the actions to dispatch, in emission order. The
// per-batch application/window caches are reset at the start of every
// call.
func (e *Engine) OnEvents(cfg *remap.Config, device remap.InputDeviceInfo, events []remap.Event) ([]remap.Action, error) {
	e.applicationCache = nil
	e.titleCache = nil
	e.actions = nil
	e.mouseBatch = nil
	e.cfg = cfg

	for _, ev := range events {
		if err := e.onEvent(cfg, device, ev); err != nil {
			return e.actions, err
		}
	}
	if len(e.mouseBatch) > 0 {
		e.actions = append(e.actions, remap.Action{Kind: remap.ActionMouseMovementEventCollection, Mouse: e.mouseBatch})
	}
	return e.actions, nil
}

// OnOverrideTimeout must be called by the caller's event loop when the
// Timer armed by installOverride fires, returning the flush actions to
// dispatch.
func (e *Engine) OnOverrideTimeout() ([]remap.Action, error) {
	e.applicationCache = nil
	e.titleCache = nil
	e.actions = nil
	if err := e.timeoutOverride(); err != nil {
		return e.actions, err
	}
	return e.actions, nil
}

func (e *Engine) onEvent(cfg *remap.Config, device remap.InputDeviceInfo, ev remap.Event) error {
	switch ev.Kind {
	case remap.EventKey:
		return e.onKeyEvent(cfg, device, ev.Key)
	case remap.EventRelative:
		return e.onRelativeEvent(cfg, ev.Rel)
	case remap.EventOther:
		e.emit(remap.Action{Kind: remap.ActionInputEvent, Other: ev.Other})
		return nil
	case remap.EventOverrideTimeout:
		return e.timeoutOverride()
	default:
		return fmt.Errorf("engine: unknown event kind %v", ev.Kind)
	}
}

// emit appends an action to the current batch's output, applying the
// throttle's minimum-delay bookkeeping as it goes.
func (e *Engine) emit(a remap.Action) {
	if d, ok := e.throttle.observe(a, e.now()); ok {
		e.actions = append(e.actions, remap.Action{Kind: remap.ActionDelay, Delay: d})
	}
	e.actions = append(e.actions, a)
}

// sendKey emits a bare key transition with no modifier envelope,
// updating the engine's held-modifier bookkeeping when k is one of the
// eight canonical modifiers or a declared virtual modifier.
func (e *Engine) sendKey(k remap.Key, v remap.Value) {
	e.updateModifierState(k, v)
	e.emit(remap.Action{Kind: remap.ActionKeyEvent, Key: remap.KeyEvent{Key: k, Value: v}})
}

// sendKeyValue emits a (key, value) pair produced by multi-purpose
// resolution or modmap key-chord bracketing.
func (e *Engine) sendKeyValue(kv keyValue) {
	e.sendKey(kv.Key, kv.Value)
}

// Status is a read-only snapshot of engine state for display purposes;
// it is never consulted by matching logic.
type Status struct {
	Mode          string
	MarkSet       bool
	EscapeNextKey bool
	OverrideDepth int
}

// Status reports the engine's current mode/mark/escape/override state.
func (e *Engine) Status() Status {
	return Status{
		Mode:          e.mode,
		MarkSet:       e.markSet,
		EscapeNextKey: e.escapeNextKey,
		OverrideDepth: len(e.overrideRemaps),
	}
}

func (e *Engine) updateModifierState(k remap.Key, v remap.Value) {
	isVirtual := e.cfg != nil && e.cfg.IsVirtualModifier(k)
	if !remap.IsModifierKey(k) && !isVirtual {
		return
	}
	switch v {
	case remap.Press:
		e.modifiers[k] = true
	case remap.Release:
		delete(e.modifiers, k)
	}
}
