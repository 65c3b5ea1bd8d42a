// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"vmapps/internal/logging"
	"vmapps/internal/manifest"
	"vmapps/internal/report"
	"vmapps/internal/runlock"
	"vmapps/internal/scaffold"
	"vmapps/internal/template"
	"vmapps/internal/watch"
)

// syncPaths are the resolved locations a sync-family command operates on.
type syncPaths struct {
	manifestPath string
	appsDir      string
	templateRoot string
	theme        string
	logLevel     string
}

// resolvePaths merges config file settings with command-line flag overrides.
// Remaining flags in args that resolvePaths does not know are an error.
func resolvePaths(configDir string, args []string, extra ...func(*flag.FlagSet)) (syncPaths, error) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return syncPaths{}, fmt.Errorf("loading config: %w", err)
	}

	fs := flag.NewFlagSet("vmapps", flag.ContinueOnError)
	manifestPath := fs.String("manifest", cfg.ManifestPath, "manifest file path")
	appsDir := fs.String("apps-dir", cfg.AppsDir, "apps directory")
	templateRoot := fs.String("template-root", cfg.ResolveTemplateRoot(), "directory template checkouts live under")
	for _, fn := range extra {
		fn(fs)
	}
	if err := fs.Parse(args); err != nil {
		return syncPaths{}, err
	}

	return syncPaths{
		manifestPath: *manifestPath,
		appsDir:      *appsDir,
		templateRoot: *templateRoot,
		theme:        cfg.Theme,
		logLevel:     cfg.LogLevel,
	}, nil
}

// syncOptions are the flag-controlled knobs of a sync pass.
type syncOptions struct {
	dryRun bool
	plain  bool
}

// executeSync runs one synchronize pass over the manifest and writes the
// report to out. A dry run never takes the run lock: acquiring it would
// create the apps directory and the lock file, and a dry run writes
// nothing.
func executeSync(ctx context.Context, paths syncPaths, opts syncOptions, logs logging.LoggerProvider, out io.Writer) error {
	// Bad manifest aborts before any folder is touched
	m, err := manifest.LoadFrom(paths.manifestPath)
	if err != nil {
		return err
	}

	if !opts.dryRun {
		fl, err := runlock.Acquire(paths.appsDir)
		if err != nil {
			return err
		}
		defer runlock.Release(paths.appsDir, fl)
	}

	src := template.NewSource(m.Base.GitURL, m.Base.GitBranch, m.Base.GitDir,
		paths.templateRoot, logs.For("template"))
	rep := scaffold.Sync(ctx, m, src, paths.appsDir, scaffold.Options{
		DryRun: opts.dryRun,
		Logger: logs.For("scaffold"),
	})
	fmt.Fprint(out, report.Render(rep, paths.theme, opts.plain))
	return nil
}

// runSyncCommand runs one synchronize pass (or a watch loop) over the
// manifest. Per-entry failures are reported but exit 0; only a bad
// manifest or an unacquirable lock is fatal.
func runSyncCommand(configDir string, args []string) error {
	var dryRun, watchMode, plain *bool
	paths, err := resolvePaths(configDir, args, func(fs *flag.FlagSet) {
		dryRun = fs.Bool("dry-run", false, "report without writing")
		watchMode = fs.Bool("watch", false, "keep running and re-sync on manifest changes")
		plain = fs.Bool("plain", false, "unstyled output")
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logManager, err := logging.NewManager(logging.Config{
		FilePath: filepath.Join(ResolveDataDir(configDir), "vmapps.log"),
		Level:    paths.logLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logManager.Close() }()

	opts := syncOptions{dryRun: *dryRun, plain: *plain}

	if err := executeSync(context.Background(), paths, opts, logManager, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if !*watchMode {
		return nil
	}

	// Watch mode: re-sync on manifest edits. A manifest that goes bad
	// mid-watch is logged and skipped, not fatal.
	watchLogger := logManager.For("watch")
	w := watch.New(paths.manifestPath, time.Second, watchLogger)
	err = w.Run(context.Background(), func() {
		if err := executeSync(context.Background(), paths, opts, logManager, os.Stdout); err != nil {
			watchLogger.Error("sync pass failed", "error", err)
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	})
	if err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return nil
}
