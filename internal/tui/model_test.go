package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"vmapps/internal/runlock"
	"vmapps/internal/scaffold"
)

const testManifestContent = `
base:
  git_url: https://example.edu/base.git
  git_branch: main
  git_dir: base
apps:
  - app_name: cs101-winvm
    title: CS 101 Windows Desktop
    name: cs101
    cpu: {value: 4}
    memory: {value: 8}
  - app_name: stat200-winvm
    title: STAT 200 Windows Desktop
    name: stat200
    cpu: {value: 8}
    memory: {value: 16}
`

func testModel(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "apps.yaml")
	if err := os.WriteFile(manifestPath, []byte(testManifestContent), 0644); err != nil {
		t.Fatal(err)
	}
	// cs101 exists on disk, stat200 does not
	if err := os.MkdirAll(filepath.Join(dir, "apps", "cs101-winvm"), 0755); err != nil {
		t.Fatal(err)
	}

	return NewModel(Config{
		ManifestPath: manifestPath,
		AppsDir:      filepath.Join(dir, "apps"),
		TemplateRoot: dir,
		Theme:        "mocha",
	}, nil)
}

func TestRefreshEntries(t *testing.T) {
	m := testModel(t)

	msg := m.refreshEntries()()
	loaded, ok := msg.(entriesLoadedMsg)
	if !ok {
		t.Fatalf("got %T, want entriesLoadedMsg", msg)
	}
	if loaded.err != nil {
		t.Fatalf("refresh error: %v", loaded.err)
	}
	if len(loaded.entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(loaded.entries))
	}
	if loaded.entries[0].appName != "cs101-winvm" || loaded.entries[0].state != stateCreated {
		t.Errorf("cs101: got %+v", loaded.entries[0])
	}
	if loaded.entries[1].appName != "stat200-winvm" || loaded.entries[1].state != stateMissing {
		t.Errorf("stat200: got %+v", loaded.entries[1])
	}
}

func TestUpdateQuitKeys(t *testing.T) {
	m := testModel(t)

	for _, key := range []string{"q", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			var msg tea.Msg
			if key == "ctrl+c" {
				msg = tea.KeyMsg{Type: tea.KeyCtrlC}
			} else {
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
			}
			_, cmd := m.Update(msg)
			if cmd == nil {
				t.Fatal("expected quit command")
			}
		})
	}
}

func TestUpdateSyncKeyStartsSync(t *testing.T) {
	m := testModel(t)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	model := updated.(Model)
	if !model.syncing {
		t.Error("expected syncing state after s")
	}
	if cmd == nil {
		t.Error("expected sync command")
	}

	// A second s while syncing is ignored
	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd != nil {
		t.Error("s while syncing should be a no-op")
	}
}

func TestRunSyncHeldLockFailsFast(t *testing.T) {
	m := testModel(t)

	fl, err := runlock.Acquire(m.cfg.AppsDir)
	if err != nil {
		t.Fatalf("acquiring lock: %v", err)
	}
	defer runlock.Release(m.cfg.AppsDir, fl)

	msg := m.runSync()()
	done, ok := msg.(syncDoneMsg)
	if !ok {
		t.Fatalf("got %T, want syncDoneMsg", msg)
	}
	if done.err == nil {
		t.Fatal("expected error while another run holds the lock")
	}
}

func TestUpdateSyncDone(t *testing.T) {
	m := testModel(t)
	loaded := m.refreshEntries()().(entriesLoadedMsg)
	updated, _ := m.Update(loaded)
	m = updated.(Model)
	m.syncing = true

	rep := &scaffold.Report{Results: []scaffold.Result{
		{AppName: "cs101-winvm", Outcome: scaffold.OutcomeSkipped},
		{AppName: "stat200-winvm", Outcome: scaffold.OutcomeFailed, Err: fmt.Errorf("template unavailable")},
	}}

	updated, _ = m.Update(syncDoneMsg{report: rep})
	model := updated.(Model)

	if model.syncing {
		t.Error("syncing should be cleared")
	}
	if model.summary != "0 created, 1 skipped, 1 failed" {
		t.Errorf("summary: got %q", model.summary)
	}
	if model.entries[1].state != stateFailed || model.entries[1].reason == "" {
		t.Errorf("failed entry not marked: %+v", model.entries[1])
	}
}

func TestViewShowsEntriesAndHelp(t *testing.T) {
	m := testModel(t)
	loaded := m.refreshEntries()().(entriesLoadedMsg)
	updated, _ := m.Update(loaded)
	m = updated.(Model)

	view := m.View()
	for _, want := range []string{"cs101-winvm", "stat200-winvm", "CS 101 Windows Desktop", "s sync"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestViewShowsManifestError(t *testing.T) {
	m := NewModel(Config{ManifestPath: filepath.Join(t.TempDir(), "nope.yaml"), Theme: "mocha"}, nil)

	loaded := m.refreshEntries()().(entriesLoadedMsg)
	if loaded.err == nil {
		t.Fatal("expected load error")
	}
	updated, _ := m.Update(loaded)

	view := updated.(Model).View()
	if !strings.Contains(view, "Error:") {
		t.Errorf("view missing error:\n%s", view)
	}
}
