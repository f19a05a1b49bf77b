package engine

import "github.com/kbdkit/remapd/internal/remap"

// relativeCodec implements the wheel/motion disguise: a relative-axis
// sample (axis code, sign) is encoded as a synthetic key press+release
// pair so wheel/motion events can flow through the same modmap/keymap
// matching pipeline ordinary keys use. The original sample is emitted
// (or batched, for mouse-axis motion) only when that dispatch reports
// no match; a matched disguised key is never also reported as a
// relative event.
type relativeCodec struct{}

func newRelativeCodec() *relativeCodec { return &relativeCodec{} }

// encode maps (axis code, sign) to its reserved pseudo scancode:
// code*2+DisguisedEventBase, +1 for the negative direction.
func (relativeCodec) encode(code uint16, negative bool) remap.Key {
	k := remap.DisguisedEventBase + remap.Key(code)*2
	if negative {
		k++
	}
	return k
}

// onRelativeEvent disguises a relative sample as a key press+release
// and runs it through the modmap/keymap matcher. Only when the Press
// dispatch reports no match does the original relative sample get
// emitted (mouse-axis samples are batched into mouseBatch instead of
// emitted immediately, so OnEvents can coalesce them into one
// MouseMovementEventCollection); the disguised key transitions
// themselves are never emitted bare, whether matched or not.
func (e *Engine) onRelativeEvent(cfg *remap.Config, rel remap.RelativeEvent) error {
	if !cfg.EnableWheel {
		e.emit(remap.Action{Kind: remap.ActionRelativeEvent, Rel: rel})
		return nil
	}

	disguised := e.relative.encode(rel.Code, rel.Value < 0)

	matched, err := e.dispatchDisguisedKeyThroughModmapAndKeymap(cfg, disguised, remap.Press)
	if err != nil {
		return err
	}
	if !matched {
		if rel.Code == 0 || rel.Code == 1 {
			e.mouseBatch = append(e.mouseBatch, rel)
		} else {
			e.emit(remap.Action{Kind: remap.ActionRelativeEvent, Rel: rel})
		}
	}

	if _, err := e.dispatchDisguisedKeyThroughModmapAndKeymap(cfg, disguised, remap.Release); err != nil {
		return err
	}
	return nil
}

// dispatchDisguisedKeyThroughModmapAndKeymap mirrors
// dispatchKeyThroughModmapAndKeymap but never emits the bare disguised
// key itself on a miss — the caller decides what a miss means (here,
// "emit the real relative event instead"). matched is true whenever a
// modmap or keymap entry actually fired for the disguised key.
func (e *Engine) dispatchDisguisedKeyThroughModmapAndKeymap(cfg *remap.Config, key remap.Key, value remap.Value) (matched bool, err error) {
	if action, hasModmap := e.findModmap(cfg, key, remap.InputDeviceInfo{}); hasModmap {
		if err := e.applyModmapAction(cfg, remap.InputDeviceInfo{}, key, value, action); err != nil {
			return false, err
		}
		return true, nil
	}

	if value != remap.Press {
		return false, nil
	}

	actions, err := e.findKeymap(cfg, key, remap.InputDeviceInfo{})
	if err != nil {
		return false, err
	}
	if actions == nil {
		return false, nil
	}
	e.currentTriggerKey = key
	if err := e.dispatchActions(cfg, remap.InputDeviceInfo{}, actions); err != nil {
		return false, err
	}
	return true, nil
}
