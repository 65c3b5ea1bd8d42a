package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vmapps/internal/logging"
	"vmapps/internal/runlock"
)

// writeSyncFixture lays out a manifest and a base checkout under a temp
// root and returns the resolved paths for a sync pass.
func writeSyncFixture(t *testing.T) syncPaths {
	t.Helper()
	root := t.TempDir()

	base := filepath.Join(root, "base")
	if err := os.MkdirAll(base, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"form.yml":     "title: PLACEHOLDER\n",
		"manifest.yml": "name: PLACEHOLDER\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(base, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	// The URL points at the existing checkout so no clone is ever attempted
	manifestPath := filepath.Join(root, "apps.yaml")
	content := `
base:
  git_url: file://` + base + `
  git_branch: main
  git_dir: base
apps:
  - app_name: cs101-winvm
    title: CS 101 Windows Desktop
    name: cs101
    cpu: {value: 4}
    memory: {value: 8}
`
	if err := os.WriteFile(manifestPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	return syncPaths{
		manifestPath: manifestPath,
		appsDir:      filepath.Join(root, "apps"),
		templateRoot: root,
		theme:        "mocha",
	}
}

func TestExecuteSyncCreatesApps(t *testing.T) {
	paths := writeSyncFixture(t)
	var out bytes.Buffer

	err := executeSync(context.Background(), paths, syncOptions{plain: true}, logging.NopProvider{}, &out)
	if err != nil {
		t.Fatalf("executeSync failed: %v", err)
	}
	if !strings.Contains(out.String(), "created cs101-winvm") {
		t.Errorf("report output: got %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(paths.appsDir, "cs101-winvm", "form.yml")); err != nil {
		t.Errorf("app folder not seeded: %v", err)
	}
}

func TestExecuteSyncDryRunWritesNothing(t *testing.T) {
	paths := writeSyncFixture(t)
	var out bytes.Buffer

	err := executeSync(context.Background(), paths, syncOptions{dryRun: true, plain: true}, logging.NopProvider{}, &out)
	if err != nil {
		t.Fatalf("executeSync failed: %v", err)
	}
	if !strings.Contains(out.String(), "created cs101-winvm") {
		t.Errorf("report output: got %q", out.String())
	}

	// A dry run must not create the apps directory, not even for the lock
	if _, err := os.Stat(paths.appsDir); !os.IsNotExist(err) {
		t.Errorf("dry run created the apps directory, stat err = %v", err)
	}
}

func TestExecuteSyncHeldLockFails(t *testing.T) {
	paths := writeSyncFixture(t)

	fl, err := runlock.Acquire(paths.appsDir)
	if err != nil {
		t.Fatalf("acquiring lock: %v", err)
	}
	defer runlock.Release(paths.appsDir, fl)

	var out bytes.Buffer
	err = executeSync(context.Background(), paths, syncOptions{plain: true}, logging.NopProvider{}, &out)
	if err == nil {
		t.Fatal("expected error while lock is held")
	}
}

func TestExecuteSyncBadManifest(t *testing.T) {
	paths := writeSyncFixture(t)
	if err := os.WriteFile(paths.manifestPath, []byte("apps: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := executeSync(context.Background(), paths, syncOptions{plain: true}, logging.NopProvider{}, &out)
	if err == nil {
		t.Fatal("expected error for bad manifest")
	}
	// Fatal errors must not leave a lock file behind
	if _, err := os.Stat(filepath.Join(paths.appsDir, ".vmapps.lock")); !os.IsNotExist(err) {
		t.Errorf("lock file left behind, stat err = %v", err)
	}
}
