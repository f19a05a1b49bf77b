package engine

import (
	"testing"
	"time"

	"github.com/kbdkit/remapd/internal/remap"
)

type fakeTimer struct {
	armed bool
	dur   time.Duration
}

func (t *fakeTimer) Arm(d time.Duration) error { t.armed, t.dur = true, d; return nil }
func (t *fakeTimer) Disarm() error             { t.armed = false; return nil }

type fakeWM struct{}

func (fakeWM) CurrentApplication() (string, bool) { return "", false }
func (fakeWM) CurrentWindow() (string, bool)      { return "", false }
func (fakeWM) Run([]string) (bool, error)         { return false, nil }

func newTestEngine() *Engine {
	now := time.Unix(0, 0)
	return New("default", &fakeTimer{}, fakeWM{}, WithClock(func() time.Time { return now }))
}

func keyEvents(pairs ...any) []remap.Event {
	var out []remap.Event
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, remap.Event{
			Kind: remap.EventKey,
			Key:  remap.KeyEvent{Key: pairs[i].(remap.Key), Value: pairs[i+1].(remap.Value)},
		})
	}
	return out
}

func onlyKeyActions(t *testing.T, actions []remap.Action) []remap.KeyEvent {
	t.Helper()
	var out []remap.KeyEvent
	for _, a := range actions {
		if a.Kind == remap.ActionKeyEvent {
			out = append(out, a.Key)
		}
	}
	return out
}

// A plain key with no modmap/keymap entry passes through unchanged.
func TestPassthrough(t *testing.T) {
	e := newTestEngine()
	cfg := &remap.Config{KeymapTable: map[remap.Key][]remap.KeymapEntry{}}

	events := keyEvents(remap.Key(30), remap.Press, remap.Key(30), remap.Release)
	actions, err := e.OnEvents(cfg, remap.InputDeviceInfo{}, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := onlyKeyActions(t, actions)
	want := []remap.KeyEvent{{Key: 30, Value: remap.Press}, {Key: 30, Value: remap.Release}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("passthrough: got %+v, want %+v", got, want)
	}
}

// Ctrl-A remapped to a plain key: holding Ctrl and pressing A must
// release Ctrl around the remapped key's press/release and re-press it
// afterward, or the receiving app sees Ctrl+key instead of a bare key.
func TestKeymapExactMatch(t *testing.T) {
	e := newTestEngine()
	ctrlA := remap.KeyPress{Key: 30, Modifiers: []remap.Modifier{{Kind: remap.ModControl}}}
	cfg := &remap.Config{
		KeymapTable: map[remap.Key][]remap.KeymapEntry{
			30: {{
				Trigger:    ctrlA,
				Actions:    []remap.KeymapAction{remap.KeyPressAndRelease{KeyPress: remap.KeyPress{Key: 46}}},
				ExactMatch: true,
			}},
		},
	}

	events := keyEvents(
		remap.KeyLeftCtrl, remap.Press,
		remap.Key(30), remap.Press,
	)
	actions, err := e.OnEvents(cfg, remap.InputDeviceInfo{}, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := onlyKeyActions(t, actions)
	want := []remap.KeyEvent{
		{Key: remap.KeyLeftCtrl, Value: remap.Press},
		{Key: remap.KeyLeftCtrl, Value: remap.Release},
		{Key: 46, Value: remap.Press},
		{Key: 46, Value: remap.Release},
		{Key: remap.KeyLeftCtrl, Value: remap.Press},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d key actions, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("action %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

// A modmap MultiPurposeKeyAction resolves to the tap outcome when
// released before the threshold elapses.
func TestMultiPurposeTap(t *testing.T) {
	e := newTestEngine()
	cfg := &remap.Config{
		Modmaps: []remap.ModmapEntry{{
			FromKey: 58, // CapsLock
			Action: remap.MultiPurposeKeyAction{
				Hold:       []remap.Key{remap.KeyLeftCtrl},
				Tap:        []remap.Key{1}, // Esc
				TapTimeout: 1 * time.Second,
			},
		}},
		KeymapTable: map[remap.Key][]remap.KeymapEntry{},
	}

	events := keyEvents(remap.Key(58), remap.Press, remap.Key(58), remap.Release)
	actions, err := e.OnEvents(cfg, remap.InputDeviceInfo{}, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := onlyKeyActions(t, actions)
	want := []remap.KeyEvent{{Key: 1, Value: remap.Press}, {Key: 1, Value: remap.Release}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("tap outcome: got %+v, want %+v", got, want)
	}
}

// Installing a remap pushes an override frame consumed by the very
// next matching key, then restores normal matching.
func TestOverrideConsumedOnMatch(t *testing.T) {
	e := newTestEngine()
	timeout := 500 * time.Millisecond
	cfg := &remap.Config{
		KeymapTable: map[remap.Key][]remap.KeymapEntry{
			35: {{ // H
				Trigger: remap.KeyPress{Key: 35},
				Actions: []remap.KeymapAction{remap.RemapAction{
					Table: map[remap.KeyPress][]remap.KeymapAction{
						{Key: 36}: {remap.KeyPressOnly{Key: remap.Key(105)}}, // J -> Left
					},
					Timeout: &timeout,
				}},
			}},
		},
	}

	events := keyEvents(remap.Key(35), remap.Press, remap.Key(36), remap.Press)
	actions, err := e.OnEvents(cfg, remap.InputDeviceInfo{}, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := onlyKeyActions(t, actions)
	if len(got) != 1 || got[0].Key != 105 || got[0].Value != remap.Press {
		t.Errorf("expected override to fire Left press, got %+v", got)
	}
	if len(e.overrideRemaps) != 0 {
		t.Errorf("override stack should be empty after consumption, got %d frames", len(e.overrideRemaps))
	}
}

func TestRelativeEventPassthroughWhenWheelDisabled(t *testing.T) {
	e := newTestEngine()
	cfg := &remap.Config{EnableWheel: false}
	events := []remap.Event{{Kind: remap.EventRelative, Rel: remap.RelativeEvent{Code: 8, Value: 1}}}
	actions, err := e.OnEvents(cfg, remap.InputDeviceInfo{}, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 1 || actions[0].Kind != remap.ActionRelativeEvent {
		t.Errorf("expected a single relative passthrough action, got %+v", actions)
	}
}

// An unmapped wheel tick (no keymap rule for its disguised key) must
// pass through exactly once, not once per disguised Press/Release leg.
func TestRelativeEventUnmatchedEmittedOnce(t *testing.T) {
	e := newTestEngine()
	cfg := &remap.Config{EnableWheel: true, KeymapTable: map[remap.Key][]remap.KeymapEntry{}}
	events := []remap.Event{{Kind: remap.EventRelative, Rel: remap.RelativeEvent{Code: 8, Value: 1}}}
	actions, err := e.OnEvents(cfg, remap.InputDeviceInfo{}, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var rels []remap.Action
	for _, a := range actions {
		if a.Kind == remap.ActionRelativeEvent {
			rels = append(rels, a)
		}
	}
	if len(rels) != 1 || rels[0].Rel != (remap.RelativeEvent{Code: 8, Value: 1}) {
		t.Errorf("expected exactly one relative passthrough, got %+v", rels)
	}
}

// REL_X/REL_Y samples with no matching keymap entry are coalesced into
// one MouseMovementEventCollection instead of separate relative events.
func TestRelativeEventMouseAxisCoalesced(t *testing.T) {
	e := newTestEngine()
	cfg := &remap.Config{EnableWheel: true, KeymapTable: map[remap.Key][]remap.KeymapEntry{}}
	events := []remap.Event{
		{Kind: remap.EventRelative, Rel: remap.RelativeEvent{Code: 0, Value: 5}},
		{Kind: remap.EventRelative, Rel: remap.RelativeEvent{Code: 1, Value: -3}},
	}
	actions, err := e.OnEvents(cfg, remap.InputDeviceInfo{}, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var collections []remap.Action
	for _, a := range actions {
		if a.Kind == remap.ActionMouseMovementEventCollection {
			collections = append(collections, a)
		} else if a.Kind == remap.ActionRelativeEvent {
			t.Errorf("mouse-axis samples should not emit bare relative actions, got %+v", a)
		}
	}
	if len(collections) != 1 || len(collections[0].Mouse) != 2 {
		t.Fatalf("expected one MouseMovementEventCollection with 2 samples, got %+v", collections)
	}
	if collections[0].Mouse[0] != (remap.RelativeEvent{Code: 0, Value: 5}) || collections[0].Mouse[1] != (remap.RelativeEvent{Code: 1, Value: -3}) {
		t.Errorf("unexpected coalesced samples: %+v", collections[0].Mouse)
	}
}

// When two override frames are nested, the newer (top) frame's entry
// for a key wins over the older (bottom) frame's entry.
func TestOverrideTopFrameWins(t *testing.T) {
	e := newTestEngine()
	bottom := buildOverrideTable(map[remap.KeyPress][]remap.KeymapAction{
		{Key: 37}: {remap.KeyPressOnly{Key: remap.Key(50)}},
	}, false)
	top := buildOverrideTable(map[remap.KeyPress][]remap.KeymapAction{
		{Key: 37}: {remap.KeyPressOnly{Key: remap.Key(60)}},
	}, false)
	if err := e.installOverride(bottom, nil, nil, 0); err != nil {
		t.Fatalf("install bottom: %v", err)
	}
	if err := e.installOverride(top, nil, nil, 0); err != nil {
		t.Fatalf("install top: %v", err)
	}

	actions, err := e.findKeymap(&remap.Config{}, 37, remap.InputDeviceInfo{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("expected exactly one resolved action, got %d: %+v", len(actions), actions)
	}
	keyAction, ok := actions[0].Action.(remap.KeyPressOnly)
	if !ok || keyAction.Key != 60 {
		t.Errorf("expected top frame's entry (key 60) to win, got %+v", actions[0].Action)
	}
}
