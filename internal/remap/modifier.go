package remap

// ModifierKind names a modifier class in a KeyPress matching pattern.
type ModifierKind int

const (
	// ModShift matches either KeyLeftShift or KeyRightShift.
	ModShift ModifierKind = iota
	ModControl
	ModAlt
	ModWindows
	// ModKey matches exactly the scancode carried in Modifier.Key.
	ModKey
)

// Modifier is one element of a KeyPress's modifier set.
type Modifier struct {
	Kind ModifierKind
	Key  Key // only meaningful when Kind == ModKey
}

// Resolves a modifier kind to its canonical left-hand scancode, used
// when the dispatcher must emit a concrete press/release for a
// modifier class rather than a specific side.
func (m Modifier) canonicalKey() Key {
	switch m.Kind {
	case ModShift:
		return KeyLeftShift
	case ModControl:
		return KeyLeftCtrl
	case ModAlt:
		return KeyLeftAlt
	case ModWindows:
		return KeyLeftMeta
	default:
		return m.Key
	}
}

// Matches reports whether k satisfies this modifier pattern.
func (m Modifier) Matches(k Key) bool {
	switch m.Kind {
	case ModShift:
		return k == KeyLeftShift || k == KeyRightShift
	case ModControl:
		return k == KeyLeftCtrl || k == KeyRightCtrl
	case ModAlt:
		return k == KeyLeftAlt || k == KeyRightAlt
	case ModWindows:
		return k == KeyLeftMeta || k == KeyRightMeta
	case ModKey:
		return k == m.Key
	default:
		return false
	}
}

// KeyPress is a matching pattern: a key plus the set of modifiers that
// must be held for it to fire.
type KeyPress struct {
	Key       Key
	Modifiers []Modifier
}

// ContainsModifier reports whether any modifier in the pattern matches k.
func ContainsModifier(modifiers []Modifier, k Key) bool {
	for _, m := range modifiers {
		if m.Matches(k) {
			return true
		}
	}
	return false
}

// CanonicalKeys returns the concrete scancode each modifier pattern
// resolves to when the dispatcher needs to emit it directly.
func CanonicalKeys(modifiers []Modifier) []Key {
	out := make([]Key, len(modifiers))
	for i, m := range modifiers {
		out[i] = m.canonicalKey()
	}
	return out
}

// WithShift returns a copy of kp with a Shift modifier appended, unless
// one is already present.
func (kp KeyPress) WithShift() KeyPress {
	for _, m := range kp.Modifiers {
		if m.Kind == ModShift {
			return kp
		}
	}
	mods := make([]Modifier, len(kp.Modifiers), len(kp.Modifiers)+1)
	copy(mods, kp.Modifiers)
	mods = append(mods, Modifier{Kind: ModShift})
	return KeyPress{Key: kp.Key, Modifiers: mods}
}
