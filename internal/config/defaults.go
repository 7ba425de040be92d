package config

import (
	"os"
	"path/filepath"
	"time"
)

// Preference keys persisted across restarts.
const (
	PrefDarkMode      = "darkMode"
	PrefSelectedModel = "selectedModel"
)

// Preference store drivers.
const (
	PrefsDriverSQLite = "sqlite"
	PrefsDriverJSON   = "json"
)

// appDir returns ~/.context, or ./.context when the home directory is unknown.
func appDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".context")
}

// DefaultSettings returns baseline configuration for first launch.
func DefaultSettings() Settings {
	dir := appDir()
	return Settings{
		Backend: BackendSettings{
			BaseURL: "http://localhost:5002",
			Timeout: 60 * time.Second,
		},
		Registry: RegistrySettings{
			BaseURL: "http://localhost:11434",
		},
		Model: ModelSettings{
			Fallback: "gemma:7b",
		},
		Languages: LanguageSettings{
			Source: "ru",
			Target: "en",
		},
		Prefs: PrefsSettings{
			Driver: PrefsDriverSQLite,
			Path:   filepath.Join(dir, "prefs.db"),
		},
		Log: LogSettings{
			Dir:   filepath.Join(dir, "logs"),
			Level: "info",
		},
		Notifications: NotificationSettings{
			Enabled: true,
		},
		UI: UISettings{
			CopiedInterval: 2 * time.Second,
		},
	}
}
