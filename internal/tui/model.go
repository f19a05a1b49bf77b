// Package tui is remapd's optional status view: a single Bubble Tea
// Model driven by messages the caller Sends in from its own event loop,
// rather than owning any input/output IO itself.
package tui

import (
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDebugLines bounds the scrollback kept for the debug sub-panel.
const maxDebugLines = 50

// StatusMsg carries an engine.Status snapshot into the TUI. It's a
// plain struct (not an import of internal/engine) so the TUI never
// depends on the engine package.
type StatusMsg struct {
	Mode          string
	MarkSet       bool
	EscapeNextKey bool
	OverrideDepth int
}

// LastActionMsg reports the most recent dispatched action kind, for the
// "last action" line of the status view.
type LastActionMsg struct {
	Description string
}

// DeviceEntry names one grabbed input device.
type DeviceEntry struct {
	Name string
	Path string
}

// DevicesMsg reports the set of devices the daemon currently holds.
type DevicesMsg struct {
	Devices []DeviceEntry
}

// DebugEntry is a structured debug log line.
type DebugEntry struct {
	Time     string
	Category string
	Message  string
}

// DebugLogMsg carries one debug log entry into the TUI.
type DebugLogMsg struct {
	Entry DebugEntry
}

// Model is the Bubble Tea model for remapd's status view.
type Model struct {
	Mode          string
	MarkSet       bool
	EscapeNextKey bool
	OverrideDepth int
	LastAction    string
	Devices       []DeviceEntry

	Logger       *log.Logger
	DebugMode    bool
	DebugEntries []DebugEntry

	themeName string
}

// NewModel creates a new status-view model.
func NewModel(defaultMode string, logger *log.Logger, debug bool) Model {
	applyTheme(LoadTheme("synthwave"))
	return Model{
		Mode:      defaultMode,
		Logger:    logger,
		DebugMode: debug,
		themeName: "synthwave",
	}
}

// Init returns the initial command (none; the model is purely reactive
// to messages the caller sends in).
func (m Model) Init() tea.Cmd { return nil }

// Update handles messages and transitions state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "t":
			next := NextTheme(m.themeName)
			applyTheme(next)
			m.themeName = strings.ToLower(next.Name)
		}

	case StatusMsg:
		m.Mode = msg.Mode
		m.MarkSet = msg.MarkSet
		m.EscapeNextKey = msg.EscapeNextKey
		m.OverrideDepth = msg.OverrideDepth

	case LastActionMsg:
		m.LastAction = msg.Description

	case DevicesMsg:
		m.Devices = msg.Devices

	case DebugLogMsg:
		m.DebugEntries = append(m.DebugEntries, msg.Entry)
		if len(m.DebugEntries) > maxDebugLines {
			m.DebugEntries = m.DebugEntries[len(m.DebugEntries)-maxDebugLines:]
		}
	}

	return m, nil
}
