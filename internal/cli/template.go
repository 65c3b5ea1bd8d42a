// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"vmapps/internal/manifest"
	"vmapps/internal/template"
)

// RegisterTemplateCommands registers the template command group commands.
func RegisterTemplateCommands(group *Group, configDir string) {
	group.AddCommand(&Command{
		Name:    "fetch",
		Summary: "Clone the base template checkout (or refresh with --force)",
		Usage:   "Usage: vmapps template fetch [--manifest <path>] [--force]",
		Run: func(args []string) error {
			var force *bool
			paths, err := resolvePaths(configDir, args, func(fs *flag.FlagSet) {
				force = fs.Bool("force", false, "discard and re-clone an existing checkout")
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			src, err := loadSource(paths)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			if *force {
				err = src.Refresh(context.Background())
			} else {
				err = src.Ensure(context.Background())
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("template ready at %s\n", src.Path())
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:    "show",
		Summary: "Print the resolved template source and payload",
		Usage:   "Usage: vmapps template show [--manifest <path>]",
		Run: func(args []string) error {
			paths, err := resolvePaths(configDir, args)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			src, err := loadSource(paths)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("url:      %s\n", src.GitURL)
			fmt.Printf("branch:   %s\n", src.Branch)
			fmt.Printf("checkout: %s\n", src.Path())

			entries, err := src.PayloadEntries()
			if err != nil {
				fmt.Printf("payload:  (not fetched)\n")
				return nil
			}
			fmt.Printf("payload:  %s\n", strings.Join(entries, ", "))
			return nil
		},
	})
}

// loadSource builds the template Source from the manifest's base section.
func loadSource(paths syncPaths) (*template.Source, error) {
	m, err := manifest.LoadFrom(paths.manifestPath)
	if err != nil {
		return nil, err
	}
	root := paths.templateRoot
	if root == "" {
		root = filepath.Dir(paths.manifestPath)
	}
	return template.NewSource(m.Base.GitURL, m.Base.GitBranch, m.Base.GitDir, root, nil), nil
}
