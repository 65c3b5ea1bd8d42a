// pattern: Imperative Shell
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"vmapps/internal/cli"
	"vmapps/internal/config"
	"vmapps/internal/logging"
	"vmapps/internal/tui"
)

var version = "dev"

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config directory (default: ~/.config/vmapps)")

	// Override flag.Usage before Parse so --help uses the CLI app's help
	flag.Usage = func() {
		app := cli.BuildApp(version, *configDir)
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	app := cli.BuildApp(version, *configDir)

	if app.Execute(flag.Args()) {
		runTUI(*configDir)
	}
}

// loadConfig loads the configuration from the specified directory or default location.
func loadConfig(configDir string) (config.Config, error) {
	if configDir != "" {
		return config.LoadFrom(filepath.Join(configDir, "config.yaml"))
	}
	return config.Load()
}

// runTUI launches the interactive TUI.
func runTUI(configDir string) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}

	dataDir := cli.ResolveDataDir(configDir)

	logManager, err := logging.NewManager(logging.Config{
		FilePath:   filepath.Join(dataDir, "vmapps.log"),
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Level:      cfg.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logManager.Close() }()

	appLogger := logManager.For("app")
	appLogger.Info("application starting", "manifest", cfg.ManifestPath, "apps_dir", cfg.AppsDir)

	model := tui.NewModel(tui.Config{
		ManifestPath: cfg.ManifestPath,
		AppsDir:      cfg.AppsDir,
		TemplateRoot: cfg.ResolveTemplateRoot(),
		Theme:        cfg.Theme,
	}, logManager)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		appLogger.Error("application exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	appLogger.Info("application stopped")
}
