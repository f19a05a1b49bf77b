package engine

import "github.com/kbdkit/remapd/internal/remap"

// dispatchActions runs a resolved keymap action list in order,
// translating matching.rs/dispatch.rs's dispatch loop: each action
// carries the exact-match requirement of the entry that produced it,
// needed by RemapAction installs.
func (e *Engine) dispatchActions(cfg *remap.Config, device remap.InputDeviceInfo, actions []taggedAction) error {
	for _, ta := range actions {
		if err := e.dispatchAction(cfg, device, ta); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) dispatchAction(cfg *remap.Config, device remap.InputDeviceInfo, ta taggedAction) error {
	switch a := ta.Action.(type) {
	case remap.KeyPressAndRelease:
		e.sendKeyPressAndRelease(a.KeyPress)

	case remap.KeyPressOnly:
		e.sendKey(a.Key, remap.Press)

	case remap.KeyRepeatOnly:
		e.sendKey(a.Key, remap.Repeat)

	case remap.KeyReleaseOnly:
		e.sendKey(a.Key, remap.Release)

	case remap.RemapAction:
		table := buildOverrideTable(a.Table, ta.ExactMatch)
		return e.installOverride(table, a.Timeout, a.TimeoutKey, e.currentTriggerKey)

	case remap.LaunchAction:
		e.runCommand(a.Command)

	case remap.SetModeAction:
		e.mode = a.Mode

	case remap.SetMarkAction:
		e.markSet = a.Set

	case remap.WithMarkAction:
		kp := a.KeyPress
		if e.markSet {
			kp = kp.WithShift()
		}
		e.sendKeyPressAndRelease(kp)

	case remap.EscapeNextKeyAction:
		e.escapeNextKey = a.Set

	case remap.SleepAction:
		e.actions = append(e.actions, remap.Action{Kind: remap.ActionDelay, Delay: a.Millis})

	case remap.SetExtraModifiersAction:
		e.applySetExtraModifiers(a.Keys)

	default:
		return nil
	}
	return nil
}

// applySetExtraModifiers virtually toggles the modifiers the matcher
// found physically held but not required by the matched pattern: on
// entry (Keys != nil) it releases whichever of them are currently held
// and remembers which; on exit (Keys == nil) it re-presses those same
// keys, restoring the user's physical modifier state.
func (e *Engine) applySetExtraModifiers(keys []remap.Key) {
	if keys != nil {
		e.extraModifiersHeld = e.extraModifiersHeld[:0]
		for _, k := range keys {
			if e.modifiers[k] {
				e.sendKey(k, remap.Release)
				e.extraModifiersHeld = append(e.extraModifiersHeld, k)
			}
		}
		return
	}
	for _, k := range e.extraModifiersHeld {
		e.sendKey(k, remap.Press)
	}
	e.extraModifiersHeld = nil
}

// runCommand hands a LaunchAction to the window-manager collaborator
// first (e.g. a compositor "spawn" IPC call); if it declines, the
// action is forwarded to the output sink to fork/exec directly.
func (e *Engine) runCommand(cmd []string) {
	if ok, err := e.wm.Run(cmd); err == nil && ok {
		return
	}
	e.actions = append(e.actions, remap.Action{Kind: remap.ActionCommand, Command: cmd})
}

// sendKeyPressAndRelease emits the full modifier-aware envelope: press
// any modifiers the pattern needs but aren't held, release any
// modifiers physically held but not named by the pattern, press+release
// the key itself, then restore the original modifier state — resurrect
// the extras, drop the ones we pressed — with a delay bracketing the
// resurrection.
func (e *Engine) sendKeyPressAndRelease(kp remap.KeyPress) {
	extra, missing := e.diffModifiers(kp.Modifiers)

	for _, k := range missing {
		e.sendKey(k, remap.Press)
	}
	for _, k := range extra {
		e.sendKey(k, remap.Release)
	}

	e.sendKey(kp.Key, remap.Press)
	e.sendKey(kp.Key, remap.Release)

	e.actions = append(e.actions, remap.Action{Kind: remap.ActionDelay, Delay: e.keypressDelay.Milliseconds()})

	for _, k := range extra {
		e.sendKey(k, remap.Press)
	}
	e.actions = append(e.actions, remap.Action{Kind: remap.ActionDelay, Delay: e.keypressDelay.Milliseconds()})
	for i := len(missing) - 1; i >= 0; i-- {
		e.sendKey(missing[i], remap.Release)
	}
}
