// pattern: Imperative Shell

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"vmapps/internal/scaffold"
)

// entriesLoadedMsg delivers the manifest entries and their on-disk state.
type entriesLoadedMsg struct {
	entries []entry
	err     error
}

// syncDoneMsg is sent when a sync pass completes.
type syncDoneMsg struct {
	report *scaffold.Report
	err    error
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.syncing {
				return m, nil
			}
			return m, m.refreshEntries()
		case "s":
			if m.syncing {
				return m, nil
			}
			m.syncing = true
			m.summary = ""
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.runSync())
		}
		return m, nil

	case entriesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.entries = msg.entries
		return m, nil

	case syncDoneMsg:
		m.syncing = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.summary = fmt.Sprintf("%d created, %d skipped, %d failed",
			len(msg.report.Created()), len(msg.report.Skipped()), len(msg.report.Failed()))
		m.applyReport(msg.report)
		return m, m.refreshEntries()

	case spinner.TickMsg:
		if !m.syncing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// applyReport marks failed entries so their reason shows in the list.
func (m *Model) applyReport(rep *scaffold.Report) {
	failed := make(map[string]string)
	for _, res := range rep.Failed() {
		failed[res.AppName] = res.Err.Error()
	}
	for i := range m.entries {
		if reason, ok := failed[m.entries[i].appName]; ok {
			m.entries[i].state = stateFailed
			m.entries[i].reason = reason
		}
	}
}
