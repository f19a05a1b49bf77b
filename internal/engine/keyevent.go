package engine

import "github.com/kbdkit/remapd/internal/remap"

// onKeyEvent is the entry point for a real (non-disguised) key
// transition: escape-next-key bypass, multi-purpose interruption/
// resolution, then modmap lookup feeding into the keymap matcher.
func (e *Engine) onKeyEvent(cfg *remap.Config, device remap.InputDeviceInfo, kv remap.KeyEvent) error {
	key, value := kv.Key, kv.Value

	if e.escapeNextKey {
		if value == remap.Press {
			e.escapeNextKey = false
		}
		e.sendKey(key, value)
		return nil
	}

	if value == remap.Press {
		for k, st := range e.multiPurpose {
			if k == key {
				continue
			}
			for _, out := range st.forceHeld() {
				e.sendKeyValue(out)
			}
		}
	}

	if st, ok := e.multiPurpose[key]; ok {
		switch value {
		case remap.Repeat:
			for _, out := range st.repeat(e.now()) {
				e.sendKeyValue(out)
			}
		case remap.Release:
			for _, out := range st.release(e.now()) {
				e.sendKeyValue(out)
			}
			delete(e.multiPurpose, key)
		case remap.Press:
			// A held multi-purpose key auto-repeating as a raw Press from
			// the kernel; nothing to do until Repeat/Release arrives.
		}
		return nil
	}

	return e.dispatchKeyThroughModmapAndKeymap(cfg, device, key, value)
}

// dispatchKeyThroughModmapAndKeymap resolves key through the modmap,
// then runs whatever keys result through the keymap matcher, or passes
// them straight through when no modmap entry and no keymap match apply.
func (e *Engine) dispatchKeyThroughModmapAndKeymap(cfg *remap.Config, device remap.InputDeviceInfo, key remap.Key, value remap.Value) error {
	if value != remap.Press {
		if keys, ok := e.pressedKeys[key]; ok {
			return e.applyKeysAction(cfg, device, key, value, keys)
		}
	}
	action, hasModmap := e.findModmap(cfg, key, device)
	if !hasModmap {
		_, err := e.dispatchThroughKeymap(cfg, device, key, value)
		return err
	}
	return e.applyModmapAction(cfg, device, key, value, action)
}

// applyModmapAction runs the modmap action a resolved key to.
func (e *Engine) applyModmapAction(cfg *remap.Config, device remap.InputDeviceInfo, key remap.Key, value remap.Value, action remap.ModmapAction) error {
	switch a := action.(type) {
	case remap.KeysAction:
		return e.applyKeysAction(cfg, device, key, value, a.Keys)

	case remap.MultiPurposeKeyAction:
		if value != remap.Press {
			// Release/Repeat without a tracked state: the press predates
			// this config becoming active, or was already resolved; drop.
			return nil
		}
		e.multiPurpose[key] = newMultiPurposeState(a, e.now())
		return nil

	case remap.PressReleaseKeyAction:
		var acts []remap.KeymapAction
		switch value {
		case remap.Press:
			acts = a.Press
		case remap.Repeat:
			acts = a.Repeat
		case remap.Release:
			acts = a.Release
		}
		if !a.SkipKeyEvent {
			if _, err := e.dispatchThroughKeymap(cfg, device, key, value); err != nil {
				return err
			}
		}
		return e.dispatchActions(cfg, device, taggedFromConfig(acts))

	default:
		return nil
	}
}

// applyKeysAction presses/releases the modmap's substitute chord in
// lockstep with the source key, remembering the chord so the matching
// Release reproduces the same keys regardless of config changes
// mid-chord.
func (e *Engine) applyKeysAction(cfg *remap.Config, device remap.InputDeviceInfo, key remap.Key, value remap.Value, keys []remap.Key) error {
	switch value {
	case remap.Press:
		e.pressedKeys[key] = keys
		for _, kv := range pressEvents(keys) {
			if _, err := e.dispatchThroughKeymap(cfg, device, kv.Key, kv.Value); err != nil {
				return err
			}
		}
	case remap.Repeat:
		out := e.pressedKeys[key]
		if out == nil {
			out = keys
		}
		for _, kv := range repeatEvents(out) {
			if _, err := e.dispatchThroughKeymap(cfg, device, kv.Key, kv.Value); err != nil {
				return err
			}
		}
	case remap.Release:
		out := e.pressedKeys[key]
		if out == nil {
			out = keys
		}
		delete(e.pressedKeys, key)
		for _, kv := range releaseEvents(out) {
			if _, err := e.dispatchThroughKeymap(cfg, device, kv.Key, kv.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// dispatchThroughKeymap runs key through the chorded-remap matcher,
// falling back to entries bound to KeyMatchAny; on no match it passes
// the bare transition straight through. Modifier keys are never matched
// and always pass straight through. matched reports whether a keymap
// entry actually fired.
func (e *Engine) dispatchThroughKeymap(cfg *remap.Config, device remap.InputDeviceInfo, key remap.Key, value remap.Value) (matched bool, err error) {
	if value != remap.Press || remap.IsModifierKey(key) {
		e.sendKey(key, value)
		return false, nil
	}

	actions, err := e.findKeymap(cfg, key, device)
	if err != nil {
		return false, err
	}
	if actions == nil {
		if actions, err = e.findKeymap(cfg, remap.KeyMatchAny, device); err != nil {
			return false, err
		}
	}
	if actions == nil {
		e.sendKey(key, value)
		return false, nil
	}
	e.currentTriggerKey = key
	if err := e.dispatchActions(cfg, device, actions); err != nil {
		return false, err
	}
	return true, nil
}

func taggedFromConfig(actions []remap.KeymapAction) []taggedAction {
	out := make([]taggedAction, len(actions))
	for i, a := range actions {
		out[i] = taggedAction{Action: a, ExactMatch: false}
	}
	return out
}
