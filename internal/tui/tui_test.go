package tui

import (
	"io"
	"log"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel() Model {
	return NewModel("default", log.New(io.Discard, "", 0), false)
}

func TestInitialMode(t *testing.T) {
	m := newTestModel()
	if m.Mode != "default" {
		t.Errorf("expected mode default, got %s", m.Mode)
	}
}

func TestStatusMsgUpdatesFields(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(StatusMsg{Mode: "navigation", MarkSet: true, EscapeNextKey: true, OverrideDepth: 2})
	model := updated.(Model)
	if model.Mode != "navigation" {
		t.Errorf("expected mode navigation, got %s", model.Mode)
	}
	if !model.MarkSet || !model.EscapeNextKey {
		t.Error("expected mark set and escape next key true")
	}
	if model.OverrideDepth != 2 {
		t.Errorf("expected override depth 2, got %d", model.OverrideDepth)
	}
}

func TestLastActionMsg(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(LastActionMsg{Description: "KEY_A press"})
	model := updated.(Model)
	if model.LastAction != "KEY_A press" {
		t.Errorf("expected last action recorded, got %q", model.LastAction)
	}
}

func TestDevicesMsg(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(DevicesMsg{Devices: []DeviceEntry{{Name: "Keyboard", Path: "/dev/input/event0"}}})
	model := updated.(Model)
	if len(model.Devices) != 1 || model.Devices[0].Name != "Keyboard" {
		t.Errorf("expected one device recorded, got %+v", model.Devices)
	}
}

func TestDebugLogMsgAddsEntry(t *testing.T) {
	m := newTestModel()
	entry := DebugEntry{Time: "11:00:00", Category: "device", Message: "grab ok"}
	updated, _ := m.Update(DebugLogMsg{Entry: entry})
	model := updated.(Model)
	if len(model.DebugEntries) != 1 || model.DebugEntries[0].Message != "grab ok" {
		t.Fatalf("expected 1 debug entry, got %+v", model.DebugEntries)
	}
}

func TestDebugLogTruncatesToMax(t *testing.T) {
	m := newTestModel()
	for i := 0; i < maxDebugLines+10; i++ {
		updated, _ := m.Update(DebugLogMsg{Entry: DebugEntry{Message: "line"}})
		m = updated.(Model)
	}
	if len(m.DebugEntries) != maxDebugLines {
		t.Errorf("expected %d debug entries, got %d", maxDebugLines, len(m.DebugEntries))
	}
}

func TestViewContainsTitleAndMode(t *testing.T) {
	m := newTestModel()
	view := m.View()
	if !contains(view, "REMAPD") {
		t.Error("expected view to contain title REMAPD")
	}
	if !contains(view, "default") {
		t.Error("expected view to contain current mode")
	}
}

func TestViewShowsNoDevicesByDefault(t *testing.T) {
	m := newTestModel()
	view := m.View()
	if !contains(view, "none grabbed") {
		t.Error("expected view to report no devices grabbed")
	}
}

func TestViewHidesDebugPanelWhenEmpty(t *testing.T) {
	m := newTestModel()
	view := m.View()
	if contains(view, "Debug") {
		t.Error("expected view to NOT contain 'Debug' panel when no debug lines")
	}
}

func TestViewShowsDebugPanel(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(DebugLogMsg{Entry: DebugEntry{Time: "11:00:00", Category: "device", Message: "test message"}})
	model := updated.(Model)
	view := model.View()
	if !contains(view, "Debug") || !contains(view, "test message") {
		t.Error("expected view to contain debug panel and message")
	}
}

func TestParseLineStructured(t *testing.T) {
	entry := parseLine("[DEBUG] 11:27:53.777842 device grabbed /dev/input/event3")
	if entry.Time != "11:27:53.777842" {
		t.Errorf("expected parsed time, got %q", entry.Time)
	}
	if entry.Category != "device" {
		t.Errorf("expected category device, got %q", entry.Category)
	}
}

func TestQuitOnCtrlC(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("expected quit command on ctrl+c")
	}
}

func TestThemeCycleKeyT(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	model := updated.(Model)
	if model.themeName == "synthwave" {
		t.Error("expected theme to change after pressing t")
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
