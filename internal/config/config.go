// Package config loads and saves remapd's TOML configuration,
// translating it into the remap.Config the engine consumes. The
// Default/Load/Save pattern follows the atomic temp-file-and-rename
// shape used elsewhere in this codebase; the struct fields and parsing
// are new, grounded on original_source's config/{mod,modmap,keymap,key_press,remap}.rs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/kbdkit/remapd/internal/remap"
)

// File is the top-level TOML document shape.
type File struct {
	ID              string          `toml:"id"`
	DefaultMode     string          `toml:"default_mode"`
	KeypressDelayMs int64           `toml:"keypress_delay_ms"`
	EnableWheel     bool            `toml:"enable_wheel"`
	VirtualMods     []string        `toml:"virtual_modifiers"`
	Modmap          []rawModmap     `toml:"modmap"`
	Keymap          []rawKeymap     `toml:"keymap"`
}

type rawOnlyNot struct {
	Only []string `toml:"only"`
	Not  []string `toml:"not"`
}

type rawDevice struct {
	Only []string `toml:"only"`
	Not  []string `toml:"not"`
}

type rawModmap struct {
	Name  string                    `toml:"name"`
	Remap map[string]toml.Primitive `toml:"remap"`
	rawFilterFields
}

// rawFilterFields is embedded (rather than nested under a "filter"
// key) so modmap/keymap entries can write application/window/device/
// mode directly at the entry's top level, matching the original's flat
// entry shape.
type rawFilterFields struct {
	Application *rawOnlyNot `toml:"application"`
	Window      *rawOnlyNot `toml:"window"`
	Device      *rawDevice  `toml:"device"`
	Mode        []string    `toml:"mode"`
}

type rawKeymap struct {
	Name       string                    `toml:"name"`
	Remap      map[string]toml.Primitive `toml:"remap"`
	ExactMatch bool                      `toml:"exact_match"`
	rawFilterFields
}

// Load reads path and translates it into a remap.Config. A missing
// file yields an empty-but-valid configuration rather than an error,
// so a fresh install runs with sane defaults before the user writes one.
func Load(path string) (*remap.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	} else if err != nil {
		return nil, err
	}

	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return translate(&f, meta)
}

// DefaultPath returns the default config file path (~/.config/remapd/config.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "remapd", "config.toml")
}

// Default returns an empty configuration: no modmaps, no keymaps,
// default mode "default", wheel disguising enabled.
func Default() *remap.Config {
	return &remap.Config{
		DefaultMode:  "default",
		KeymapTable:  map[remap.Key][]remap.KeymapEntry{},
		EnableWheel:  true,
		GenerationID: uuid.NewString(),
	}
}

// Save writes cfg back out as a skeleton TOML document (id, mode, and
// top-level knobs only — modmap/keymap bodies round-trip through the
// engine's in-memory form, not back through TOML, since remap.Config
// has already lost the original entry ordering and primitives by the
// time it's loaded). The write is atomic: write to a temp file in the
// same directory, then rename into place.
func Save(path string, cfg *remap.Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".remapd-config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	f := File{
		ID:              uuid.NewString(),
		DefaultMode:     cfg.DefaultMode,
		KeypressDelayMs: cfg.KeypressDelayMs,
		EnableWheel:     cfg.EnableWheel,
	}
	if err := toml.NewEncoder(tmp).Encode(f); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

func translate(f *File, meta toml.MetaData) (*remap.Config, error) {
	cfg := Default()
	if f.DefaultMode != "" {
		cfg.DefaultMode = f.DefaultMode
	}
	cfg.KeypressDelayMs = f.KeypressDelayMs
	cfg.EnableWheel = f.EnableWheel

	if len(f.VirtualMods) > 0 {
		cfg.VirtualModifiers = make(map[remap.Key]bool, len(f.VirtualMods))
		for _, name := range f.VirtualMods {
			k, err := nameToKey(name)
			if err != nil {
				return nil, fmt.Errorf("virtual_modifiers: %w", err)
			}
			cfg.VirtualModifiers[k] = true
		}
	}

	for _, m := range f.Modmap {
		entry, err := translateModmap(m, meta)
		if err != nil {
			return nil, fmt.Errorf("modmap %q: %w", m.Name, err)
		}
		cfg.Modmaps = append(cfg.Modmaps, entry...)
	}

	for _, k := range f.Keymap {
		entries, err := translateKeymap(k, meta)
		if err != nil {
			return nil, fmt.Errorf("keymap %q: %w", k.Name, err)
		}
		for _, e := range entries {
			cfg.KeymapTable[e.Trigger.Key] = append(cfg.KeymapTable[e.Trigger.Key], e)
		}
	}

	return cfg, nil
}

func translateFilter(f rawFilterFields) (remap.Filter, error) {
	var out remap.Filter
	if f.Application != nil {
		on, err := translateOnlyNot(f.Application)
		if err != nil {
			return out, err
		}
		out.Application = on
	}
	if f.Window != nil {
		on, err := translateOnlyNot(f.Window)
		if err != nil {
			return out, err
		}
		out.Window = on
	}
	if f.Device != nil {
		out.Device = &remap.DeviceMatch{Only: f.Device.Only, Not: f.Device.Not}
	}
	out.Modes = f.Mode
	return out, nil
}

func translateOnlyNot(r *rawOnlyNot) (*remap.OnlyNot, error) {
	out := &remap.OnlyNot{}
	for _, p := range r.Only {
		m, err := remap.ParseStringMatcher(p)
		if err != nil {
			return nil, err
		}
		out.Only = append(out.Only, m)
	}
	for _, p := range r.Not {
		m, err := remap.ParseStringMatcher(p)
		if err != nil {
			return nil, err
		}
		out.Not = append(out.Not, m)
	}
	return out, nil
}

func translateModmap(m rawModmap, meta toml.MetaData) ([]remap.ModmapEntry, error) {
	filter, err := translateFilter(m.rawFilterFields)
	if err != nil {
		return nil, err
	}

	var out []remap.ModmapEntry
	for from, prim := range m.Remap {
		fromKey, err := nameToKey(from)
		if err != nil {
			return nil, err
		}
		action, err := decodeModmapAction(prim, meta)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", from, err)
		}
		out = append(out, remap.ModmapEntry{Name: m.Name, FromKey: fromKey, Action: action, Filter: filter})
	}
	return out, nil
}

func translateKeymap(k rawKeymap, meta toml.MetaData) ([]remap.KeymapEntry, error) {
	filter, err := translateFilter(k.rawFilterFields)
	if err != nil {
		return nil, err
	}

	var out []remap.KeymapEntry
	for trigger, prim := range k.Remap {
		kp, err := parseKeyPress(trigger)
		if err != nil {
			return nil, err
		}
		actions, err := decodeKeymapActionList(prim, meta)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", trigger, err)
		}
		out = append(out, remap.KeymapEntry{
			Name:       k.Name,
			Trigger:    kp,
			Actions:    actions,
			Filter:     filter,
			ExactMatch: k.ExactMatch,
		})
	}
	return out, nil
}

// decodeModmapAction accepts a bare key name (KeysAction of one key),
// a list of key names (KeysAction chord), or a table describing a
// multi-purpose or press/repeat/release hook.
func decodeModmapAction(prim toml.Primitive, meta toml.MetaData) (remap.ModmapAction, error) {
	var asString string
	if err := meta.PrimitiveDecode(prim, &asString); err == nil {
		k, err := nameToKey(asString)
		if err != nil {
			return nil, err
		}
		return remap.KeysAction{Keys: []remap.Key{k}}, nil
	}

	var asList []string
	if err := meta.PrimitiveDecode(prim, &asList); err == nil {
		keys := make([]remap.Key, len(asList))
		for i, name := range asList {
			k, err := nameToKey(name)
			if err != nil {
				return nil, err
			}
			keys[i] = k
		}
		return remap.KeysAction{Keys: keys}, nil
	}

	var asMulti struct {
		Hold          []string `toml:"hold"`
		Tap           []string `toml:"tap"`
		HoldThreshold int64    `toml:"hold_threshold_millis"`
		TapTimeout    int64    `toml:"tap_timeout_millis"`
		FreeHold      bool     `toml:"free_hold"`
	}
	if err := meta.PrimitiveDecode(prim, &asMulti); err == nil && (len(asMulti.Hold) > 0 || len(asMulti.Tap) > 0) {
		hold, err := namesToKeys(asMulti.Hold)
		if err != nil {
			return nil, err
		}
		tap, err := namesToKeys(asMulti.Tap)
		if err != nil {
			return nil, err
		}
		timeout := asMulti.TapTimeout
		if timeout == 0 {
			timeout = 1000
		}
		return remap.MultiPurposeKeyAction{
			Hold:          hold,
			Tap:           tap,
			HoldThreshold: time.Duration(asMulti.HoldThreshold) * time.Millisecond,
			TapTimeout:    time.Duration(timeout) * time.Millisecond,
			FreeHold:      asMulti.FreeHold,
		}, nil
	}

	var asPressRelease struct {
		Press        []toml.Primitive `toml:"press"`
		Repeat       []toml.Primitive `toml:"repeat"`
		Release      []toml.Primitive `toml:"release"`
		SkipKeyEvent bool             `toml:"skip_key_event"`
	}
	if err := meta.PrimitiveDecode(prim, &asPressRelease); err == nil {
		press, err := decodeKeymapActions(asPressRelease.Press, meta)
		if err != nil {
			return nil, err
		}
		repeat, err := decodeKeymapActions(asPressRelease.Repeat, meta)
		if err != nil {
			return nil, err
		}
		release, err := decodeKeymapActions(asPressRelease.Release, meta)
		if err != nil {
			return nil, err
		}
		return remap.PressReleaseKeyAction{Press: press, Repeat: repeat, Release: release, SkipKeyEvent: asPressRelease.SkipKeyEvent}, nil
	}

	return nil, fmt.Errorf("unrecognized modmap action")
}

func namesToKeys(names []string) ([]remap.Key, error) {
	out := make([]remap.Key, len(names))
	for i, n := range names {
		k, err := nameToKey(n)
		if err != nil {
			return nil, err
		}
		out[i] = k
	}
	return out, nil
}

func decodeKeymapActionList(prim toml.Primitive, meta toml.MetaData) ([]remap.KeymapAction, error) {
	var list []toml.Primitive
	if err := meta.PrimitiveDecode(prim, &list); err != nil {
		// A bare single action (not wrapped in a list).
		a, err := decodeKeymapAction(prim, meta)
		if err != nil {
			return nil, err
		}
		return []remap.KeymapAction{a}, nil
	}
	return decodeKeymapActions(list, meta)
}

func decodeKeymapActions(prims []toml.Primitive, meta toml.MetaData) ([]remap.KeymapAction, error) {
	out := make([]remap.KeymapAction, 0, len(prims))
	for _, p := range prims {
		a, err := decodeKeymapAction(p, meta)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// decodeKeymapAction mirrors keymap_action.rs's untagged enum: a bare
// string is a full KeyPressAndRelease; a single-key table selects
// press/repeat/release/with_mark; otherwise remap/launch/set_mode/
// set_mark/escape_next_key/sleep.
func decodeKeymapAction(prim toml.Primitive, meta toml.MetaData) (remap.KeymapAction, error) {
	var asString string
	if err := meta.PrimitiveDecode(prim, &asString); err == nil {
		kp, err := parseKeyPress(asString)
		if err != nil {
			return nil, err
		}
		return remap.KeyPressAndRelease{KeyPress: kp}, nil
	}

	var table map[string]toml.Primitive
	if err := meta.PrimitiveDecode(prim, &table); err != nil {
		return nil, fmt.Errorf("action must be a string or a table: %w", err)
	}

	if len(table) == 1 {
		for key, val := range table {
			switch key {
			case "press", "repeat", "release", "with_mark":
				var name string
				if err := meta.PrimitiveDecode(val, &name); err != nil {
					return nil, err
				}
				if key == "with_mark" {
					kp, err := parseKeyPress(name)
					if err != nil {
						return nil, err
					}
					return remap.WithMarkAction{KeyPress: kp}, nil
				}
				k, err := nameToKey(name)
				if err != nil {
					return nil, err
				}
				switch key {
				case "press":
					return remap.KeyPressOnly{Key: k}, nil
				case "repeat":
					return remap.KeyRepeatOnly{Key: k}, nil
				default:
					return remap.KeyReleaseOnly{Key: k}, nil
				}
			case "launch":
				var cmd []string
				if err := meta.PrimitiveDecode(val, &cmd); err != nil {
					return nil, err
				}
				return remap.LaunchAction{Command: cmd}, nil
			case "set_mode":
				var mode string
				if err := meta.PrimitiveDecode(val, &mode); err != nil {
					return nil, err
				}
				return remap.SetModeAction{Mode: mode}, nil
			case "set_mark":
				var set bool
				if err := meta.PrimitiveDecode(val, &set); err != nil {
					return nil, err
				}
				return remap.SetMarkAction{Set: set}, nil
			case "escape_next_key":
				var set bool
				if err := meta.PrimitiveDecode(val, &set); err != nil {
					return nil, err
				}
				return remap.EscapeNextKeyAction{Set: set}, nil
			case "sleep":
				var millis int64
				if err := meta.PrimitiveDecode(val, &millis); err != nil {
					return nil, err
				}
				return remap.SleepAction{Millis: millis}, nil
			}
		}
	}

	var remapTable struct {
		Remap       map[string][]toml.Primitive `toml:"remap"`
		TimeoutMs   *int64                       `toml:"timeout_millis"`
		TimeoutKey  string                       `toml:"timeout_key"`
	}
	if err := meta.PrimitiveDecode(prim, &remapTable); err == nil && remapTable.Remap != nil {
		out := make(map[remap.KeyPress][]remap.KeymapAction, len(remapTable.Remap))
		for trigger, prims := range remapTable.Remap {
			kp, err := parseKeyPress(trigger)
			if err != nil {
				return nil, err
			}
			actions, err := decodeKeymapActions(prims, meta)
			if err != nil {
				return nil, err
			}
			out[kp] = actions
		}
		var timeout *time.Duration
		if remapTable.TimeoutMs != nil {
			d := time.Duration(*remapTable.TimeoutMs) * time.Millisecond
			timeout = &d
		}
		var timeoutKey []remap.Key
		if remapTable.TimeoutKey != "" {
			k, err := nameToKey(remapTable.TimeoutKey)
			if err != nil {
				return nil, err
			}
			timeoutKey = []remap.Key{k}
		}
		return remap.RemapAction{Table: out, Timeout: timeout, TimeoutKey: timeoutKey}, nil
	}

	return nil, fmt.Errorf("unrecognized keymap action table")
}
