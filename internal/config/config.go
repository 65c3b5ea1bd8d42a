package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the tool configuration, distinct from the apps manifest: it
// says where things live and how the tool behaves, never which apps exist.
type Config struct {
	Theme        string `yaml:"theme"`
	ManifestPath string `yaml:"manifest_path"`
	AppsDir      string `yaml:"apps_dir"`
	TemplateRoot string `yaml:"template_root"`
	LogLevel     string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Theme:        "mocha",
		ManifestPath: "apps.yaml",
		AppsDir:      "apps",
	}
}

func Load() (Config, error) {
	return LoadFrom(getConfigPath())
}

func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}

	if cfg.Theme == "" {
		cfg.Theme = "mocha"
	}
	if cfg.ManifestPath == "" {
		cfg.ManifestPath = "apps.yaml"
	}
	if cfg.AppsDir == "" {
		cfg.AppsDir = "apps"
	}

	return cfg, nil
}

// ResolveTemplateRoot returns the directory template checkouts live under.
// Defaults to the manifest's directory so a repo checkout is self-contained.
func (c *Config) ResolveTemplateRoot() string {
	if c.TemplateRoot != "" {
		return c.TemplateRoot
	}
	return filepath.Dir(c.ManifestPath)
}

func getConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "vmapps", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "vmapps", "config.yaml")
	}

	return filepath.Join(home, ".config", "vmapps", "config.yaml")
}
