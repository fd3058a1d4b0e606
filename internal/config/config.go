// Package config loads rush's tunables (prompt, history_size,
// completion_timeout_ms, suggestion_delay_ms) from a per-user TOML file,
// using the same Settings/defaultSettings/applySettingsDefaults/loadSettings
// shape as the rest of the CLI tooling this shell was built alongside,
// narrowed to the handful of fields a shell actually needs.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Colors names the ANSI color used for each styled surface. Values are
// plain names ("red", "cyan", ...). They are loaded and saved only:
// internal/style uses fixed ANSI codes and does not read them.
type Colors struct {
	Hint   string `toml:"hint,omitempty"`
	Error  string `toml:"error,omitempty"`
	Prompt string `toml:"prompt,omitempty"`
}

// Settings is rush's full tunable set, loaded from ~/.rush/config.toml.
type Settings struct {
	SchemaVersion       int    `toml:"schema_version"`
	Prompt              string `toml:"prompt,omitempty"`
	HistorySize         int    `toml:"history_size,omitempty"`
	HistoryFile         string `toml:"history_file,omitempty"`
	CompletionTimeoutMS int    `toml:"completion_timeout_ms,omitempty"`
	SuggestionDelayMS   int    `toml:"suggestion_delay_ms,omitempty"`
	Colors              Colors `toml:"colors,omitempty"`
}

// Default returns rush's compiled-in defaults.
func Default() Settings {
	return Settings{
		SchemaVersion:       1,
		Prompt:              "$ ",
		HistorySize:         10000,
		HistoryFile:         "~/.rush/history",
		CompletionTimeoutMS: 100,
		SuggestionDelayMS:   0,
		Colors: Colors{
			Hint:   "bright_black",
			Error:  "red",
			Prompt: "green",
		},
	}
}

// applyDefaults fills in zero-valued fields left unset by a loaded file.
func applyDefaults(s *Settings) {
	if s.SchemaVersion == 0 {
		s.SchemaVersion = 1
	}
	if s.Prompt == "" {
		s.Prompt = "$ "
	}
	if s.HistorySize <= 0 {
		s.HistorySize = 10000
	}
	if s.HistoryFile == "" {
		s.HistoryFile = "~/.rush/history"
	}
	if s.CompletionTimeoutMS <= 0 {
		s.CompletionTimeoutMS = 100
	}
	if s.Colors.Hint == "" {
		s.Colors.Hint = "bright_black"
	}
	if s.Colors.Error == "" {
		s.Colors.Error = "red"
	}
	if s.Colors.Prompt == "" {
		s.Colors.Prompt = "green"
	}
}

// DefaultPath returns ~/.rush/config.toml, expanding $HOME.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rush/config.toml"
	}
	return filepath.Join(home, ".rush", "config.toml")
}

// Load reads path (DefaultPath() when empty) and merges it over Default().
// When the file is absent, the defaults are written to path; an existing
// file is never rewritten, even if some fields are missing from it. A
// missing file is not an error.
func Load(path string) (Settings, error) {
	if path == "" {
		path = DefaultPath()
	}
	settings := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if uerr := toml.Unmarshal(data, &settings); uerr != nil {
			fallback := Default()
			applyDefaults(&fallback)
			return fallback, uerr
		}
		applyDefaults(&settings)
		return settings, nil
	case os.IsNotExist(err):
		applyDefaults(&settings)
		_ = Save(path, settings)
		return settings, nil
	default:
		fallback := Default()
		applyDefaults(&fallback)
		return fallback, err
	}
}

// Save writes settings to path as TOML, creating parent directories as
// needed.
func Save(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
