package engine

import (
	"time"

	"github.com/kbdkit/remapd/internal/remap"
)

// overrideEntry is one row of an installed override table: the
// trigger's modifier pattern plus the actions it resolves to, tagged
// with the exact-match requirement of the *outer* keymap entry that
// installed this remap.
type overrideEntry struct {
	Modifiers  []remap.Modifier
	Actions    []remap.KeymapAction
	ExactMatch bool
}

// overrideTable is an ephemeral keymap: one frame of the override
// stack.
type overrideTable map[remap.Key][]overrideEntry

// buildOverrideTable converts a RemapAction's declarative table into an
// overrideTable, tagging every entry with exactMatch — the exact-match
// requirement of the keymap/override entry whose action triggered this
// remap.
func buildOverrideTable(table map[remap.KeyPress][]remap.KeymapAction, exactMatch bool) overrideTable {
	out := make(overrideTable, len(table))
	for trigger, actions := range table {
		out[trigger.Key] = append(out[trigger.Key], overrideEntry{
			Modifiers:  trigger.Modifiers,
			Actions:    actions,
			ExactMatch: exactMatch,
		})
	}
	return out
}

// installOverride pushes table onto the stack. If the stack was empty
// before this push and timeout is set, it arms the timer; if the stack
// was already non-empty, the existing timer (if any) keeps running
// uninterrupted — first-come-first-served timeout behavior.
func (e *Engine) installOverride(table overrideTable, timeout *time.Duration, timeoutKey []remap.Key, triggerKey remap.Key) error {
	wasEmpty := len(e.overrideRemaps) == 0
	e.overrideRemaps = append(e.overrideRemaps, table)

	if wasEmpty && timeout != nil {
		if err := e.overrideTimer.Arm(*timeout); err != nil {
			return err
		}
		if timeoutKey != nil {
			e.overrideTimeoutKey = timeoutKey
		} else {
			e.overrideTimeoutKey = []remap.Key{triggerKey}
		}
	}
	return nil
}

// removeOverride disarms the timer and clears the entire override
// stack, used both when an override entry is consumed and when the
// stack's timeout fires.
func (e *Engine) removeOverride() error {
	err := e.overrideTimer.Disarm()
	e.overrideRemaps = e.overrideRemaps[:0]
	e.overrideTimeoutKey = nil
	return err
}

// timeoutOverride flushes the pending override: emit press+release of
// every key in overrideTimeoutKey, then clear the stack.
func (e *Engine) timeoutOverride() error {
	if e.overrideTimeoutKey != nil {
		for _, k := range e.overrideTimeoutKey {
			e.sendKey(k, remap.Press)
			e.sendKey(k, remap.Release)
		}
	}
	return e.removeOverride()
}
