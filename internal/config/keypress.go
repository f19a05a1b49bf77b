package config

import (
	"fmt"
	"strings"

	"github.com/kbdkit/remapd/internal/remap"
)

// parseKeyPress parses a hyphen-delimited key-press pattern such as
// "C-Shift-a" (Ctrl+Shift+A) or "SUPER-Enter", mirroring
// original_source's config/key_press.rs grammar: every segment but the
// last is a modifier, the last segment is the key.
func parseKeyPress(input string) (remap.KeyPress, error) {
	segments := strings.Split(input, "-")
	if len(segments) == 0 || segments[len(segments)-1] == "" {
		return remap.KeyPress{}, fmt.Errorf("empty key_press: %q", input)
	}

	keyName, modifierNames := segments[len(segments)-1], segments[:len(segments)-1]
	key, err := nameToKey(keyName)
	if err != nil {
		return remap.KeyPress{}, err
	}

	modifiers := make([]remap.Modifier, 0, len(modifierNames))
	for _, name := range modifierNames {
		m, err := parseModifier(name)
		if err != nil {
			return remap.KeyPress{}, err
		}
		modifiers = append(modifiers, m)
	}
	return remap.KeyPress{Key: key, Modifiers: modifiers}, nil
}

func parseModifier(name string) (remap.Modifier, error) {
	switch strings.ToUpper(name) {
	case "SHIFT":
		return remap.Modifier{Kind: remap.ModShift}, nil
	case "C", "CTRL", "CONTROL":
		return remap.Modifier{Kind: remap.ModControl}, nil
	case "M", "ALT":
		return remap.Modifier{Kind: remap.ModAlt}, nil
	case "SUPER", "WIN", "WINDOWS":
		return remap.Modifier{Kind: remap.ModWindows}, nil
	default:
		k, err := nameToKey(name)
		if err != nil {
			return remap.Modifier{}, err
		}
		return remap.Modifier{Kind: remap.ModKey, Key: k}, nil
	}
}
