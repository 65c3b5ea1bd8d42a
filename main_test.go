package main

import (
	"os"
	"path/filepath"
	"testing"

	"vmapps/internal/logging"
)

func TestLogManagerInitialization(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	lm, err := logging.NewManager(logging.Config{
		FilePath:   logPath,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
		Level:      "debug",
	})
	if err != nil {
		t.Fatalf("failed to create LogManager: %v", err)
	}
	defer lm.Close()

	logger := lm.For("app")
	logger.Info("test message")
	lm.Sync()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestLoadConfigFromDir(t *testing.T) {
	configDir := t.TempDir()
	content := "theme: latte\napps_dir: /srv/vmapps/apps\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Theme != "latte" {
		t.Errorf("Theme: got %q", cfg.Theme)
	}
	if cfg.AppsDir != "/srv/vmapps/apps" {
		t.Errorf("AppsDir: got %q", cfg.AppsDir)
	}
}
