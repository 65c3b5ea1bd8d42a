// pattern: Imperative Shell

package template

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"vmapps/internal/logging"
)

// payloadEntries are the template files seeded into every new app folder.
// Anything else in the base repository (.git, README, CI config) stays out
// of the generated apps.
var payloadEntries = []string{
	"form.yml",
	"manifest.yml",
	"submit.yml.erb",
	"template",
}

// Source is the base app repository new app folders are seeded from.
// It is resolved once per run and treated as immutable afterwards.
type Source struct {
	GitURL string
	Branch string
	Dir    string // checkout location, relative paths resolved against Root
	Root   string // directory relative Dirs are resolved against

	maxRetries uint64
	logger     *logging.ScopedLogger
}

// UnavailableError means the template could not be fetched or read.
// At sync level this fails individual entries, never the whole run.
type UnavailableError struct {
	Source string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("template %s unavailable: %v", e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// NewSource builds a Source for the given base repository settings.
func NewSource(gitURL, branch, dir, root string, logger *logging.ScopedLogger) *Source {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Source{
		GitURL:     gitURL,
		Branch:     branch,
		Dir:        dir,
		Root:       root,
		maxRetries: 3,
		logger:     logger,
	}
}

// Path returns the local checkout path of the template.
func (s *Source) Path() string {
	if filepath.IsAbs(s.Dir) {
		return s.Dir
	}
	return filepath.Join(s.Root, s.Dir)
}

// PayloadEntries returns the template entries copied into each new app
// folder, limited to those that exist in the checkout.
func (s *Source) PayloadEntries() ([]string, error) {
	dir := s.Path()
	var entries []string
	for _, name := range payloadEntries {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			entries = append(entries, name)
		}
	}
	if len(entries) == 0 {
		return nil, &UnavailableError{
			Source: dir,
			Err:    fmt.Errorf("no template payload found (expected one of %s)", strings.Join(payloadEntries, ", ")),
		}
	}
	return entries, nil
}

// Check verifies the template is usable without writing anything: an
// existing checkout must carry a payload, a missing one must at least be
// reachable remotely (git ls-remote, no clone). Dry runs use this so their
// preview matches what a real run would report.
func (s *Source) Check(ctx context.Context) error {
	dir := s.Path()
	if _, err := os.Stat(dir); err == nil {
		_, err := s.PayloadEntries()
		return err
	}

	if s.GitURL == "" {
		return &UnavailableError{Source: dir, Err: fmt.Errorf("no git_url configured and checkout missing")}
	}

	cmd := exec.CommandContext(ctx, "git", "ls-remote", "--heads", s.GitURL, s.Branch)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &UnavailableError{Source: s.GitURL, Err: fmt.Errorf("git ls-remote: %s: %w", strings.TrimSpace(string(output)), err)}
	}
	if strings.TrimSpace(string(output)) == "" {
		return &UnavailableError{Source: s.GitURL, Err: fmt.Errorf("branch %q not found", s.Branch)}
	}
	return nil
}

// Ensure makes the template available locally. An existing checkout is
// reused as-is; a missing one is cloned. Transient clone failures are
// retried with exponential backoff.
func (s *Source) Ensure(ctx context.Context) error {
	dir := s.Path()
	if _, err := os.Stat(dir); err == nil {
		s.logger.Debug("template checkout exists", "dir", dir)
		return nil
	}

	return s.clone(ctx, dir)
}

// Refresh discards the local checkout and clones again.
func (s *Source) Refresh(ctx context.Context) error {
	dir := s.Path()
	if _, err := os.Stat(dir); err == nil {
		if err := os.RemoveAll(dir); err != nil {
			return &UnavailableError{Source: dir, Err: fmt.Errorf("removing stale checkout: %w", err)}
		}
	}
	return s.clone(ctx, dir)
}

func (s *Source) clone(ctx context.Context, dir string) error {
	if s.GitURL == "" {
		return &UnavailableError{Source: dir, Err: fmt.Errorf("no git_url configured and checkout missing")}
	}

	op := func() error {
		cmd := exec.CommandContext(ctx, "git", "clone", "--single-branch", "--branch", s.Branch, s.GitURL, dir)
		if output, err := cmd.CombinedOutput(); err != nil {
			// A half-written checkout must not be mistaken for a good one
			_ = os.RemoveAll(dir)
			return fmt.Errorf("git clone: %s: %w", strings.TrimSpace(string(output)), err)
		}
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(500*time.Millisecond),
			backoff.WithMaxInterval(5*time.Second),
		), s.maxRetries),
		ctx,
	)

	if err := backoff.RetryNotify(op, bo, func(err error, next time.Duration) {
		s.logger.Warn("template clone failed, retrying", "error", err, "next_attempt_in", next)
	}); err != nil {
		return &UnavailableError{Source: s.GitURL, Err: err}
	}

	s.logger.Info("template cloned", "url", s.GitURL, "branch", s.Branch, "dir", dir)
	return nil
}
