package engine

import "github.com/kbdkit/remapd/internal/remap"

// taggedAction carries a keymap action alongside the exact-match
// requirement of the entry it came from, so a RemapAction can tag the
// override table it installs with that requirement.
type taggedAction struct {
	Action     remap.KeymapAction
	ExactMatch bool
}

// diffModifiers returns (extra, missing): extra is every physically
// held modifier not named by modifiers; missing is every modifier named
// by modifiers that isn't currently held.
func (e *Engine) diffModifiers(modifiers []remap.Modifier) (extra, missing []remap.Key) {
	for k := range e.modifiers {
		if !remap.ContainsModifier(modifiers, k) {
			extra = append(extra, k)
		}
	}
	var missingMods []remap.Modifier
	for _, m := range modifiers {
		if !e.matchModifier(m) {
			missingMods = append(missingMods, m)
		}
	}
	return extra, remap.CanonicalKeys(missingMods)
}

// matchModifier reports whether modifier m is currently satisfied by
// any physically held key (or a virtual-modifier promotion — virtual
// modifiers live in e.modifiers too).
func (e *Engine) matchModifier(m remap.Modifier) bool {
	for k, held := range e.modifiers {
		if held && m.Matches(k) {
			return true
		}
	}
	return false
}

// matchWindow lazily fills titleCache and evaluates the filter.
func (e *Engine) matchWindow(f *remap.OnlyNot) bool {
	if e.titleCache == nil {
		title, ok := e.wm.CurrentWindow()
		if !ok {
			title = ""
		}
		e.titleCache = &title
	}
	return f.Matches(*e.titleCache)
}

// matchApplication lazily fills applicationCache and evaluates the filter.
func (e *Engine) matchApplication(f *remap.OnlyNot) bool {
	if e.applicationCache == nil {
		app, ok := e.wm.CurrentApplication()
		if !ok {
			app = ""
		}
		e.applicationCache = &app
	}
	return f.Matches(*e.applicationCache)
}

func (e *Engine) matchFilter(f remap.Filter, device remap.InputDeviceInfo) bool {
	if f.Window != nil && !e.matchWindow(f.Window) {
		return false
	}
	if f.Application != nil && !e.matchApplication(f.Application) {
		return false
	}
	if f.Device != nil && !f.Device.Matches(device) {
		return false
	}
	if !f.AllowsMode(e.mode) {
		return false
	}
	return true
}

// findModmap resolves the first modmap entry matching key and device.
func (e *Engine) findModmap(cfg *remap.Config, key remap.Key, device remap.InputDeviceInfo) (remap.ModmapAction, bool) {
	for _, m := range cfg.Modmaps {
		if m.FromKey != key {
			continue
		}
		if !e.matchFilter(m.Filter, device) {
			continue
		}
		return m.Action, true
	}
	return nil, false
}

// withExtraModifiers brackets actions with SetExtraModifiersAction
// pseudo-actions so the dispatcher virtually releases extra
// (physically-held-but-unwanted) modifiers for the duration of the
// dispatch, then restores bookkeeping afterward.
func withExtraModifiers(actions []remap.KeymapAction, extra []remap.Key, exactMatch bool) []taggedAction {
	var out []taggedAction
	if len(extra) > 0 {
		out = append(out, taggedAction{Action: remap.SetExtraModifiersAction{Keys: extra}, ExactMatch: exactMatch})
	}
	for _, a := range actions {
		out = append(out, taggedAction{Action: a, ExactMatch: exactMatch})
	}
	if len(extra) > 0 {
		out = append(out, taggedAction{Action: remap.SetExtraModifiersAction{Keys: nil}, ExactMatch: exactMatch})
	}
	return out
}

// findKeymap implements the full two-level matcher: override stack
// first (consuming it on any match), then the main keymap table, each
// with the two-pass exact-match-preferred scan.
func (e *Engine) findKeymap(cfg *remap.Config, key remap.Key, device remap.InputDeviceInfo) ([]taggedAction, error) {
	if len(e.overrideRemaps) > 0 {
		var entries []overrideEntry
		for i := len(e.overrideRemaps) - 1; i >= 0; i-- {
			entries = append(entries, e.overrideRemaps[i][key]...)
		}

		if len(entries) > 0 {
			if err := e.removeOverride(); err != nil {
				return nil, err
			}

			for _, exactPass := range []bool{true, false} {
				var remaps []taggedAction
				for _, entry := range entries {
					if entry.ExactMatch && !exactPass {
						continue
					}
					extra, missing := e.diffModifiers(entry.Modifiers)
					if (exactPass && len(extra) > 0) || len(missing) > 0 {
						continue
					}
					actions := withExtraModifiers(entry.Actions, extra, entry.ExactMatch)
					isRemap := remap.IsRemapOnly(entry.Actions)

					if len(remaps) == 0 && !isRemap {
						return actions, nil
					} else if isRemap {
						remaps = append(remaps, actions...)
					}
				}
				if len(remaps) > 0 {
					return remaps, nil
				}
			}
		}
		// An override remap is set but not used for this key. Flush it.
		if err := e.timeoutOverride(); err != nil {
			return nil, err
		}
	}

	entries, ok := cfg.KeymapTable[key]
	if !ok {
		return nil, nil
	}
	for _, exactPass := range []bool{true, false} {
		var remaps []taggedAction
		for _, entry := range entries {
			if entry.ExactMatch && !exactPass {
				continue
			}
			extra, missing := e.diffModifiers(entry.Trigger.Modifiers)
			if (exactPass && len(extra) > 0) || len(missing) > 0 {
				continue
			}
			if !e.matchFilter(entry.Filter, device) {
				continue
			}

			actions := withExtraModifiers(entry.Actions, extra, entry.ExactMatch)
			isRemap := remap.IsRemapOnly(entry.Actions)

			if len(remaps) == 0 && !isRemap {
				return actions, nil
			} else if isRemap {
				remaps = append(remaps, actions...)
			}
		}
		if len(remaps) > 0 {
			return remaps, nil
		}
	}
	return nil, nil
}
