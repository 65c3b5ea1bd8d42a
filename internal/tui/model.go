package tui

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vmapps/internal/logging"
	"vmapps/internal/manifest"
	"vmapps/internal/runlock"
	"vmapps/internal/scaffold"
	"vmapps/internal/template"
)

// entryState is the on-disk status of one manifest entry.
type entryState int

const (
	stateMissing entryState = iota
	stateCreated
	stateFailed
)

// entry is one manifest app as shown in the list.
type entry struct {
	appName string
	title   string
	state   entryState
	reason  string // failure reason, when state is stateFailed
}

// Config wires the model to the manifest and apps directory it operates on.
type Config struct {
	ManifestPath string
	AppsDir      string
	TemplateRoot string
	Theme        string
}

// Model represents the TUI application state.
type Model struct {
	width  int
	height int
	styles *Styles

	cfg     Config
	logs    logging.LoggerProvider
	entries []entry
	spinner spinner.Model
	syncing bool
	summary string
	err     error
}

// NewModel creates a new TUI model with the given configuration.
func NewModel(cfg Config, logs logging.LoggerProvider) Model {
	if logs == nil {
		logs = logging.NopProvider{}
	}

	styles := NewStyles(cfg.Theme)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(styles.flavor.Teal().Hex))

	return Model{
		styles:  styles,
		cfg:     cfg,
		logs:    logs,
		spinner: sp,
	}
}

// Init returns the initial command to run.
func (m Model) Init() tea.Cmd {
	return m.refreshEntries()
}

// refreshEntries returns a command that re-reads the manifest and checks
// which app folders exist.
func (m Model) refreshEntries() tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		mf, err := manifest.LoadFrom(cfg.ManifestPath)
		if err != nil {
			return entriesLoadedMsg{err: err}
		}

		entries := make([]entry, 0, len(mf.Apps))
		for _, app := range mf.Apps {
			e := entry{appName: app.AppName, title: app.Title, state: stateMissing}
			if _, err := os.Stat(filepath.Join(cfg.AppsDir, app.AppName)); err == nil {
				e.state = stateCreated
			}
			entries = append(entries, e)
		}
		return entriesLoadedMsg{entries: entries}
	}
}

// runSync returns a command that runs one synchronize pass. It takes the
// same run lock as the sync command, so a TUI sync cannot race a
// concurrent command-line run on the apps directory.
func (m Model) runSync() tea.Cmd {
	cfg := m.cfg
	logs := m.logs
	return func() tea.Msg {
		mf, err := manifest.LoadFrom(cfg.ManifestPath)
		if err != nil {
			return syncDoneMsg{err: err}
		}

		fl, err := runlock.Acquire(cfg.AppsDir)
		if err != nil {
			return syncDoneMsg{err: err}
		}
		defer runlock.Release(cfg.AppsDir, fl)

		src := template.NewSource(mf.Base.GitURL, mf.Base.GitBranch, mf.Base.GitDir,
			cfg.TemplateRoot, logs.For("template"))
		rep := scaffold.Sync(context.Background(), mf, src, cfg.AppsDir, scaffold.Options{
			Logger: logs.For("scaffold"),
		})
		return syncDoneMsg{report: rep}
	}
}
