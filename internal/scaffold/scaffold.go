// pattern: Imperative Shell

package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"vmapps/internal/logging"
	"vmapps/internal/manifest"
	"vmapps/internal/template"
)

// Outcome is the per-entry result of a sync run.
type Outcome int

const (
	// OutcomeCreated means the app folder was seeded from the template.
	OutcomeCreated Outcome = iota
	// OutcomeSkipped means the folder already existed and was left untouched.
	OutcomeSkipped
	// OutcomeFailed means this entry could not be materialized. Other
	// entries are unaffected.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result records the outcome for one manifest entry.
type Result struct {
	AppName string
	Outcome Outcome
	Err     error
}

// Report collects per-entry results in manifest order.
type Report struct {
	Results []Result
}

// Created returns the app names that were created, in manifest order.
func (r *Report) Created() []string { return r.names(OutcomeCreated) }

// Skipped returns the app names that already existed, in manifest order.
func (r *Report) Skipped() []string { return r.names(OutcomeSkipped) }

// Failed returns the results that failed, in manifest order.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

func (r *Report) names(o Outcome) []string {
	var names []string
	for _, res := range r.Results {
		if res.Outcome == o {
			names = append(names, res.AppName)
		}
	}
	return names
}

// Options control a sync run.
type Options struct {
	// DryRun reports what would happen without writing anything.
	DryRun bool
	Logger *logging.ScopedLogger
}

// Sync materializes one app folder per manifest entry under appsDir.
//
// Existing folders are skipped without reading their contents, so manual
// edits to generated apps survive every later run. A failure on one entry
// is recorded and processing continues; nothing is rolled back. The
// template is fetched lazily, only once the first missing entry needs it.
func Sync(ctx context.Context, m *manifest.Manifest, src *template.Source, appsDir string, opts Options) *Report {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	report := &Report{Results: make([]Result, 0, len(m.Apps))}

	// Lazy template fetch, memoized across entries. Dry runs only verify
	// availability so the preview matches a real run without writing.
	templateReady := false
	var templateErr error
	ensureTemplate := func() error {
		if templateReady || templateErr != nil {
			return templateErr
		}
		if opts.DryRun {
			if err := src.Check(ctx); err != nil {
				templateErr = err
				return err
			}
			templateReady = true
			return nil
		}
		if err := src.Ensure(ctx); err != nil {
			templateErr = err
			return err
		}
		if _, err := src.PayloadEntries(); err != nil {
			templateErr = err
			return err
		}
		templateReady = true
		return nil
	}

	for _, app := range m.Apps {
		res := Result{AppName: app.AppName}

		switch err := syncEntry(ctx, m, app, src, appsDir, opts, ensureTemplate); {
		case err == nil:
			res.Outcome = OutcomeCreated
			logger.Info("app created", "app", app.AppName)
		case err == errExists:
			res.Outcome = OutcomeSkipped
			logger.Debug("app exists, skipped", "app", app.AppName)
		default:
			res.Outcome = OutcomeFailed
			res.Err = err
			logger.Error("app failed", "app", app.AppName, "error", err)
		}

		report.Results = append(report.Results, res)
	}

	return report
}

// errExists signals the existence short-circuit, not a failure.
var errExists = fmt.Errorf("app folder already exists")

// syncEntry creates a single app folder. The existence check guards the
// whole copy step: an existing folder is never read, compared, or patched.
func syncEntry(ctx context.Context, m *manifest.Manifest, app manifest.App, src *template.Source, appsDir string, opts Options, ensureTemplate func() error) error {
	if err := manifest.ValidateAppName(app.AppName); err != nil {
		return err
	}

	dest := filepath.Join(appsDir, app.AppName)
	if _, err := os.Stat(dest); err == nil {
		return errExists
	}

	if err := ensureTemplate(); err != nil {
		return err
	}

	if opts.DryRun {
		return nil
	}

	entries, err := src.PayloadEntries()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(appsDir, 0755); err != nil {
		return fmt.Errorf("creating apps directory: %w", err)
	}

	if err := copyPayload(src.Path(), dest, entries); err != nil {
		// Remove the partial folder so a rerun can retry this entry
		_ = os.RemoveAll(dest)
		return err
	}

	if err := applyOverrides(dest, m, app); err != nil {
		_ = os.RemoveAll(dest)
		return err
	}

	return nil
}

// copyPayload copies the named template entries into a fresh dest folder.
func copyPayload(srcDir, dest string, entries []string) error {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("creating app folder: %w", err)
	}
	for _, name := range entries {
		srcPath := filepath.Join(srcDir, name)
		destPath := filepath.Join(dest, name)

		info, err := os.Stat(srcPath)
		if err != nil {
			return fmt.Errorf("reading template entry %s: %w", name, err)
		}
		if info.IsDir() {
			if err := copyTree(srcPath, destPath); err != nil {
				return fmt.Errorf("copying template entry %s: %w", name, err)
			}
			continue
		}
		if err := copyFile(srcPath, destPath, info.Mode()); err != nil {
			return fmt.Errorf("copying template entry %s: %w", name, err)
		}
	}
	return nil
}

// copyTree recursively copies a directory.
func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dest string, mode os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, mode.Perm())
}
