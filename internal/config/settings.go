package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings holds application configuration.
type Settings struct {
	Backend       BackendSettings
	Registry      RegistrySettings
	Model         ModelSettings
	Languages     LanguageSettings
	Prefs         PrefsSettings
	Log           LogSettings
	Telemetry     TelemetrySettings
	Notifications NotificationSettings
	UI            UISettings
}

// BackendSettings locates the translation service.
type BackendSettings struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RegistrySettings locates the local model registry.
type RegistrySettings struct {
	BaseURL string `mapstructure:"base_url"`
}

// ModelSettings holds the model used before the first catalog fetch.
type ModelSettings struct {
	Fallback string `mapstructure:"fallback"`
}

// LanguageSettings holds the startup language pair.
type LanguageSettings struct {
	Source string `mapstructure:"source"`
	Target string `mapstructure:"target"`
}

// PrefsSettings selects the preference store backend.
type PrefsSettings struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// LogSettings controls the rotating log file.
type LogSettings struct {
	Dir   string `mapstructure:"dir"`
	Level string `mapstructure:"level"`
}

// TelemetrySettings toggles trace and metric export.
type TelemetrySettings struct {
	Enabled bool `mapstructure:"enabled"`
}

// NotificationSettings toggles desktop notifications.
type NotificationSettings struct {
	Enabled bool `mapstructure:"enabled"`
}

// UISettings holds presentation timings owned by the core.
type UISettings struct {
	CopiedInterval time.Duration `mapstructure:"copied_interval"`
}

// Load reads configuration from file and env. Env var overrides use prefix CONTEXT_.
func Load() (Settings, error) {
	return LoadFile(os.Getenv("CONTEXT_CONFIG"))
}

// LoadFile reads configuration from path, or from the default config
// location when path is empty. A missing file is not an error.
func LoadFile(path string) (Settings, error) {
	defaults := DefaultSettings()
	v := viper.New()

	v.SetDefault("backend.base_url", defaults.Backend.BaseURL)
	v.SetDefault("backend.timeout", defaults.Backend.Timeout)
	v.SetDefault("registry.base_url", defaults.Registry.BaseURL)
	v.SetDefault("model.fallback", defaults.Model.Fallback)
	v.SetDefault("languages.source", defaults.Languages.Source)
	v.SetDefault("languages.target", defaults.Languages.Target)
	v.SetDefault("prefs.driver", defaults.Prefs.Driver)
	v.SetDefault("prefs.path", defaults.Prefs.Path)
	v.SetDefault("log.dir", defaults.Log.Dir)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("telemetry.enabled", defaults.Telemetry.Enabled)
	v.SetDefault("notifications.enabled", defaults.Notifications.Enabled)
	v.SetDefault("ui.copied_interval", defaults.UI.CopiedInterval)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "context"))
		}
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CONTEXT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !isNotFound(err) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return normalize(s), nil
}

// isNotFound treats both viper's search miss and a missing explicit file as absent config.
func isNotFound(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	return os.IsNotExist(err)
}

// normalize trims user inputs and restores defaults for unusable values.
func normalize(s Settings) Settings {
	defaults := DefaultSettings()
	s.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(s.Backend.BaseURL), "/")
	if s.Backend.BaseURL == "" {
		s.Backend.BaseURL = defaults.Backend.BaseURL
	}
	s.Registry.BaseURL = strings.TrimRight(strings.TrimSpace(s.Registry.BaseURL), "/")
	if s.Registry.BaseURL == "" {
		s.Registry.BaseURL = defaults.Registry.BaseURL
	}
	if s.Backend.Timeout <= 0 {
		s.Backend.Timeout = defaults.Backend.Timeout
	}
	s.Model.Fallback = strings.TrimSpace(s.Model.Fallback)
	if s.Model.Fallback == "" {
		s.Model.Fallback = defaults.Model.Fallback
	}
	s.Prefs.Driver = strings.ToLower(strings.TrimSpace(s.Prefs.Driver))
	if s.Prefs.Driver != PrefsDriverJSON {
		s.Prefs.Driver = PrefsDriverSQLite
	}
	if s.UI.CopiedInterval <= 0 {
		s.UI.CopiedInterval = defaults.UI.CopiedInterval
	}
	return s
}
