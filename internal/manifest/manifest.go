// pattern: Functional Core
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest declares the base template repository and the set of apps that
// should exist under the apps directory. Entries are kept in file order.
type Manifest struct {
	Base Base  `yaml:"base"`
	Apps []App `yaml:"apps"`
}

// Base describes the template repository every new app folder is seeded from.
type Base struct {
	AppType            string   `yaml:"app_type"`
	GitURL             string   `yaml:"git_url"`
	GitBranch          string   `yaml:"git_branch"`
	GitDir             string   `yaml:"git_dir"`
	VMImage            *VMImage `yaml:"vm_image"`
	UseCustomImageFile bool     `yaml:"use_custom_image_file"`
}

// App is one desired application. AppName doubles as the folder name.
type App struct {
	AppName            string   `yaml:"app_name"`
	Title              string   `yaml:"title"`
	Name               string   `yaml:"name"`
	CPU                Resource `yaml:"cpu"`
	Memory             Resource `yaml:"memory"`
	VMImage            *VMImage `yaml:"vm_image"`
	UseCustomImageFile *bool    `yaml:"use_custom_image_file"`
}

// Resource is a numeric form field: a fixed value, or a user-selectable
// range when Select is true. Value is a pointer so an absent key can be
// told apart from an explicit zero.
type Resource struct {
	Value  *int `yaml:"value"`
	Select bool `yaml:"select"`
	Min    int  `yaml:"min"`
	Max    int  `yaml:"max"`
}

// VMImage selects the VM base image, or lets the user pick when Select is true.
type VMImage struct {
	Select    bool   `yaml:"select"`
	BaseImage string `yaml:"base_image"`
}

// ParseError is a fatal manifest error. The caller must not touch the
// filesystem after receiving one.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("manifest %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("manifest %s: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads the manifest from the default location (apps.yaml in dir).
func Load(dir string) (*Manifest, error) {
	return LoadFrom(filepath.Join(dir, "apps.yaml"))
}

// LoadFrom reads and validates a manifest file. Any syntax error, missing
// required field, or duplicate app_name is fatal.
func LoadFrom(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "reading manifest", Err: err}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ParseError{Path: path, Reason: "parsing YAML", Err: err}
	}

	if err := m.validate(); err != nil {
		return nil, &ParseError{Path: path, Reason: err.Error()}
	}

	return &m, nil
}

// validate checks required fields and uniqueness. App name syntax is not
// checked here: a bad name fails that entry at sync time, not the whole run.
func (m *Manifest) validate() error {
	if m.Base.GitURL == "" {
		return fmt.Errorf("base is missing required attribute: git_url")
	}
	if m.Base.GitBranch == "" {
		return fmt.Errorf("base is missing required attribute: git_branch")
	}
	if m.Base.GitDir == "" {
		return fmt.Errorf("base is missing required attribute: git_dir")
	}

	seen := make(map[string]int, len(m.Apps))
	for i, app := range m.Apps {
		if app.AppName == "" {
			return fmt.Errorf("app %d is missing required attribute: app_name", i)
		}
		if app.Title == "" {
			return fmt.Errorf("app %q is missing required attribute: title", app.AppName)
		}
		if app.Name == "" {
			return fmt.Errorf("app %q is missing required attribute: name", app.AppName)
		}
		if app.CPU.Value == nil {
			return fmt.Errorf("app %q is missing required attribute: cpu.value", app.AppName)
		}
		if app.Memory.Value == nil {
			return fmt.Errorf("app %q is missing required attribute: memory.value", app.AppName)
		}
		if prev, ok := seen[app.AppName]; ok {
			return fmt.Errorf("duplicate app_name %q (apps %d and %d)", app.AppName, prev, i)
		}
		seen[app.AppName] = i
	}

	return nil
}

// EffectiveVMImage resolves the per-app vm_image override against the base.
func (m *Manifest) EffectiveVMImage(app App) *VMImage {
	if app.VMImage != nil {
		return app.VMImage
	}
	return m.Base.VMImage
}

// EffectiveCustomImageFile resolves the per-app use_custom_image_file
// override against the base.
func (m *Manifest) EffectiveCustomImageFile(app App) bool {
	if app.UseCustomImageFile != nil {
		return *app.UseCustomImageFile
	}
	return m.Base.UseCustomImageFile
}
