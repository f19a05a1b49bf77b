package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kbdkit/remapd/internal/remap"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.DefaultMode != "default" {
		t.Errorf("expected default mode, got %s", cfg.DefaultMode)
	}
	if !cfg.EnableWheel {
		t.Error("expected wheel disguising enabled by default")
	}
}

func TestLoadModmapAndKeymap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
default_mode = "default"
enable_wheel = true

[[modmap]]
name = "caps to esc/ctrl"
[modmap.remap]
CAPSLOCK = { hold = ["LEFTCTRL"], tap = ["ESC"], tap_timeout_millis = 200 }

[[keymap]]
name = "emacs-ish"
exact_match = true
[keymap.remap]
"C-a" = "HOME"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Modmaps) != 1 {
		t.Fatalf("expected 1 modmap entry, got %d", len(cfg.Modmaps))
	}
	mp, ok := cfg.Modmaps[0].Action.(remap.MultiPurposeKeyAction)
	if !ok {
		t.Fatalf("expected MultiPurposeKeyAction, got %T", cfg.Modmaps[0].Action)
	}
	if len(mp.Hold) != 1 || mp.Hold[0] != 29 { // KEY_LEFTCTRL
		t.Errorf("expected hold=[LEFTCTRL], got %+v", mp.Hold)
	}

	entries := cfg.KeymapTable[30] // KEY_A
	if len(entries) != 1 {
		t.Fatalf("expected 1 keymap entry for A, got %d", len(entries))
	}
	if !entries[0].ExactMatch {
		t.Error("expected exact_match true")
	}
	if len(entries[0].Trigger.Modifiers) != 1 || entries[0].Trigger.Modifiers[0].Kind != remap.ModControl {
		t.Errorf("expected Ctrl modifier on trigger, got %+v", entries[0].Trigger.Modifiers)
	}
}

func TestSaveRoundTripsTopLevelSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.DefaultMode = "navigation"
	cfg.KeypressDelayMs = 5

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.DefaultMode != "navigation" {
		t.Errorf("expected mode navigation, got %s", loaded.DefaultMode)
	}
	if loaded.KeypressDelayMs != 5 {
		t.Errorf("expected keypress_delay_ms 5, got %d", loaded.KeypressDelayMs)
	}
}
