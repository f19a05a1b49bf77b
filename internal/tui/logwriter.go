package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// LogWriter is an io.Writer that forwards each written log line to a
// Bubble Tea program as a DebugLogMsg. Use it as a *log.Logger's output.
type LogWriter struct {
	program *tea.Program
}

// NewLogWriter creates a LogWriter that sends debug lines to program.
func NewLogWriter(p *tea.Program) *LogWriter {
	return &LogWriter{program: p}
}

// Write implements io.Writer. The send runs in a goroutine so a debug
// log call from inside a Bubble Tea command never deadlocks on itself.
func (w *LogWriter) Write(b []byte) (int, error) {
	line := strings.TrimRight(string(b), "\n")
	entry := parseLine(line)
	go w.program.Send(DebugLogMsg{Entry: entry})
	return len(b), nil
}

// parseLine extracts time, category, and message from a log line of the
// form "[DEBUG] HH:MM:SS.micros message text". Category is inferred
// from the first word of the message (e.g. "device", "engine", "wm").
func parseLine(line string) DebugEntry {
	entry := DebugEntry{Category: "debug", Message: line}

	msg := strings.TrimPrefix(line, "[DEBUG] ")
	if len(msg) >= 8 && msg[2] == ':' && msg[5] == ':' {
		if spaceIdx := strings.IndexByte(msg, ' '); spaceIdx > 0 {
			entry.Time = msg[:spaceIdx]
			msg = msg[spaceIdx+1:]
		}
	}

	entry.Category, entry.Message = inferCategory(msg)
	return entry
}

func inferCategory(msg string) (category, message string) {
	lower := strings.ToLower(msg)
	switch {
	case strings.HasPrefix(lower, "device"), strings.HasPrefix(lower, "grab"):
		return "device", msg
	case strings.HasPrefix(lower, "engine"), strings.HasPrefix(lower, "dispatch"):
		return "engine", msg
	case strings.HasPrefix(lower, "wm"), strings.HasPrefix(lower, "window"):
		return "wm", msg
	case strings.HasPrefix(lower, "config"), strings.HasPrefix(lower, "reload"):
		return "config", msg
	case strings.HasPrefix(lower, "uinput"), strings.HasPrefix(lower, "sink"):
		return "uinput", msg
	default:
		return "debug", msg
	}
}
