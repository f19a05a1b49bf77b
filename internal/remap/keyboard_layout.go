package remap

import "strings"

// KeyboardLayoutBase is the first pseudo scancode used for
// layout-dependent punctuation aliases (supplemental feature grounded
// on original_source's config/keyboard_layout.rs). These sit above the
// disguised relative-event range so the two synthetic spaces never
// collide.
const KeyboardLayoutBase Key = 60001

// layoutDefinition maps a real scancode to the label the running
// keyboard layout produces for it. Only keys whose glyph differs from
// the QWERTY/US default need an entry; everything else is looked up
// directly by its KEY_* name.
var layoutDefinition = map[Key]string{
	12: "+", // KEY_MINUS on a Danish layout
	13: "´", // KEY_EQUAL
	26: "Å", // KEY_LEFTBRACE
	27: "¨", // KEY_RIGHTBRACE
	39: "Æ", // KEY_SEMICOLON
	40: "Ø", // KEY_APOSTROPHE
	43: "'", // KEY_BACKSLASH
}

// KeyboardLayout resolves layout-dependent punctuation names (as
// configured by layoutDefinition) to pseudo scancodes, and back.
type KeyboardLayout struct {
	keyToPseudo map[Key]Key
	nameToPseudo map[string]Key
	pseudoToKey map[Key]Key
}

// NewKeyboardLayout builds the alias table from layoutDefinition.
func NewKeyboardLayout() *KeyboardLayout {
	l := &KeyboardLayout{
		keyToPseudo:  make(map[Key]Key, len(layoutDefinition)),
		nameToPseudo: make(map[string]Key, len(layoutDefinition)),
		pseudoToKey:  make(map[Key]Key, len(layoutDefinition)),
	}
	for real, label := range layoutDefinition {
		pseudo := KeyboardLayoutBase + real
		l.keyToPseudo[real] = pseudo
		l.nameToPseudo[strings.ToUpper(label)] = pseudo
		l.pseudoToKey[pseudo] = real
	}
	return l
}

// Resolve looks up a config-file key name against the layout table,
// returning the pseudo scancode and true if name names a
// layout-dependent glyph.
func (l *KeyboardLayout) Resolve(name string) (Key, bool) {
	k, ok := l.nameToPseudo[strings.ToUpper(name)]
	return k, ok
}

// Underlying returns the real scancode a pseudo key stands in for, and
// true if pseudo is a key this layout table produced.
func (l *KeyboardLayout) Underlying(pseudo Key) (Key, bool) {
	k, ok := l.pseudoToKey[pseudo]
	return k, ok
}
