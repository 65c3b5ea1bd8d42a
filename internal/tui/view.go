// pattern: Imperative Shell

package tui

import (
	"fmt"
	"strings"
)

// View renders the TUI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.TitleStyle().Render("VM App Scaffolder"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(m.styles.ErrorStyle().Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	for _, e := range m.entries {
		var marker string
		switch e.state {
		case stateCreated:
			marker = m.styles.CreatedStyle().Render("created")
		case stateFailed:
			marker = m.styles.ErrorStyle().Render("failed ")
		default:
			marker = m.styles.MissingStyle().Render("missing")
		}

		line := fmt.Sprintf("%s  %-24s %s", marker, e.appName, m.styles.InfoStyle().Render(e.title))
		if e.state == stateFailed && e.reason != "" {
			line += "  " + m.styles.ErrorStyle().Render(e.reason)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.syncing {
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.InfoStyle().Render(" syncing..."))
		b.WriteString("\n")
	} else if m.summary != "" {
		b.WriteString(m.styles.InfoStyle().Render(m.summary))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.HelpStyle().Render("s sync • r refresh • q quit"))
	b.WriteString("\n")

	return b.String()
}
