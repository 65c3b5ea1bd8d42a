// pattern: Imperative Shell
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"vmapps/internal/config"
	"vmapps/internal/manifest"
)

// ResolveDataDir returns the directory for log files.
// If configDir is specified, uses that; otherwise uses ~/.config/vmapps.
func ResolveDataDir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "vmapps")
	}
	return filepath.Join(home, ".config", "vmapps")
}

// loadConfig loads the tool configuration from the given directory or the
// default location.
func loadConfig(configDir string) (config.Config, error) {
	if configDir != "" {
		return config.LoadFrom(filepath.Join(configDir, "config.yaml"))
	}
	return config.Load()
}

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(version string, configDir string) *App {
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:    "sync",
		Summary: "Create missing app folders from the manifest",
		Usage:   "Usage: vmapps sync [--manifest <path>] [--apps-dir <dir>] [--dry-run] [--watch] [--plain]",
		Run: func(args []string) error {
			return runSyncCommand(configDir, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "validate",
		Summary: "Check the manifest without touching the filesystem",
		Usage:   "Usage: vmapps validate [--manifest <path>]",
		Run: func(args []string) error {
			return runValidateCommand(configDir, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "status",
		Summary: "Show which manifest apps exist on disk",
		Usage:   "Usage: vmapps status [--manifest <path>] [--apps-dir <dir>]",
		Run: func(args []string) error {
			return runStatusCommand(configDir, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: vmapps version",
		Run: func(args []string) error {
			fmt.Println(version)
			return nil
		},
	})

	templateGroup := app.AddGroup("template", "Manage the base template checkout")
	RegisterTemplateCommands(templateGroup, configDir)

	return app
}

// runValidateCommand parses the manifest and reports whether it is usable.
func runValidateCommand(configDir string, args []string) error {
	paths, err := resolvePaths(configDir, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	m, err := manifest.LoadFrom(paths.manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: ok (%d apps)\n", paths.manifestPath, len(m.Apps))
	return nil
}

// runStatusCommand lists manifest entries and whether their folder exists.
func runStatusCommand(configDir string, args []string) error {
	paths, err := resolvePaths(configDir, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	m, err := manifest.LoadFrom(paths.manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for _, app := range m.Apps {
		state := "missing"
		if _, err := os.Stat(filepath.Join(paths.appsDir, app.AppName)); err == nil {
			state = "created"
		}
		fmt.Printf("%-10s %s\n", state, app.AppName)
	}
	return nil
}
