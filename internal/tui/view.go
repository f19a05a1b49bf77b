package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles, reassigned by applyTheme.
var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)
	labelStyle         lipgloss.Style
	bodyStyle          lipgloss.Style
	quitStyle          lipgloss.Style
	markSetStyle       lipgloss.Style
	markUnsetStyle     lipgloss.Style
	debugTitleStyle    lipgloss.Style
	debugRuleStyle     lipgloss.Style
	debugHeaderStyle   lipgloss.Style
	debugTimeStyle     lipgloss.Style
	debugCategoryStyle lipgloss.Style
	debugMsgStyle      lipgloss.Style
	debugSepStyle      lipgloss.Style
)

const panelWidth = 70
const panelWidthForStyle = panelWidth - 2
const panelContentWidth = panelWidth - 6

// View renders the status view: mode, mark/escape flags, override-stack
// depth, grabbed devices, and the last dispatched action.
func (m Model) View() string {
	var b strings.Builder

	titleText := "  REMAPD  "
	barTotal := panelContentWidth - len(titleText)
	barLeft := barTotal / 2
	barRight := barTotal - barLeft
	title := strings.Repeat("▓", barLeft) + titleText + strings.Repeat("▓", barRight)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Mode:           "))
	b.WriteString(bodyStyle.Render(m.Mode))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Mark set:       "))
	b.WriteString(m.renderFlag(m.MarkSet))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Escape next key:"))
	b.WriteString(" ")
	b.WriteString(m.renderFlag(m.EscapeNextKey))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Override depth: "))
	b.WriteString(bodyStyle.Render(fmt.Sprintf("%d", m.OverrideDepth)))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Devices:"))
	b.WriteString("\n")
	if len(m.Devices) == 0 {
		b.WriteString(bodyStyle.Render("  (none grabbed)"))
	} else {
		for _, d := range m.Devices {
			b.WriteString(bodyStyle.Render(fmt.Sprintf("  %s (%s)", d.Name, d.Path)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Last action: "))
	if m.LastAction != "" {
		b.WriteString(bodyStyle.Render(m.LastAction))
	} else {
		b.WriteString(bodyStyle.Render("(none yet)"))
	}
	b.WriteString("\n")
	b.WriteString(quitStyle.Render("Press q to quit, t to cycle theme"))

	if m.DebugMode || len(m.DebugEntries) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderDebugPanel())
	}

	return borderStyle.Width(panelWidthForStyle).Render(b.String())
}

func (m Model) renderFlag(set bool) string {
	if set {
		return markSetStyle.Render("on")
	}
	return markUnsetStyle.Render("off")
}

const debugPanelMaxLines = 5

const (
	colTimeWidth     = 15
	colCategoryWidth = 10
	colSepWidth      = 3
	colMsgWidth      = panelContentWidth - colTimeWidth - colCategoryWidth - colSepWidth*2
)

func (m Model) renderDebugPanel() string {
	sep := debugSepStyle.Render(" │ ")
	rule := debugRuleStyle.Render(strings.Repeat("─", panelContentWidth))

	var db strings.Builder
	db.WriteString(debugTitleStyle.Render("Debug"))
	db.WriteString("\n")
	db.WriteString(rule)
	db.WriteString("\n")
	db.WriteString(
		debugHeaderStyle.Width(colTimeWidth).Render("TIME") +
			sep +
			debugHeaderStyle.Width(colCategoryWidth).Render("TYPE") +
			sep +
			debugHeaderStyle.Width(colMsgWidth).Render("MESSAGE"))
	db.WriteString("\n")
	db.WriteString(rule)

	entries := m.DebugEntries
	if len(entries) > debugPanelMaxLines {
		entries = entries[len(entries)-debugPanelMaxLines:]
	}
	for _, entry := range entries {
		timeStr := entry.Time
		if len(timeStr) > colTimeWidth {
			timeStr = timeStr[:colTimeWidth]
		}
		cat := entry.Category
		if len(cat) > colCategoryWidth {
			cat = cat[:colCategoryWidth]
		}
		msg := entry.Message
		if len(msg) > colMsgWidth {
			msg = msg[:colMsgWidth-3] + "..."
		}
		db.WriteString("\n")
		db.WriteString(
			debugTimeStyle.Width(colTimeWidth).Render(timeStr) +
				sep +
				debugCategoryStyle.Width(colCategoryWidth).Render(cat) +
				sep +
				debugMsgStyle.Width(colMsgWidth).Render(msg))
	}

	return db.String()
}
