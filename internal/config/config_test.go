package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if settings.Prompt != "$ " {
		t.Errorf("Prompt = %q, want default", settings.Prompt)
	}
	if settings.HistorySize != 10000 {
		t.Errorf("HistorySize = %d, want 10000", settings.HistorySize)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("defaults not written to %s: %v", path, err)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := Save(path, Settings{Prompt: "> ", HistorySize: 50}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if settings.Prompt != "> " {
		t.Errorf("Prompt = %q, want '> '", settings.Prompt)
	}
	if settings.HistorySize != 50 {
		t.Errorf("HistorySize = %d, want 50", settings.HistorySize)
	}
	if settings.Colors.Error != "red" {
		t.Errorf("Colors.Error = %q, want default red", settings.Colors.Error)
	}
}
