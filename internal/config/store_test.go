package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.Backend.BaseURL != "http://localhost:5002" {
		t.Fatalf("backend = %q", cfg.Backend.BaseURL)
	}
	if cfg.Registry.BaseURL != "http://localhost:11434" {
		t.Fatalf("registry = %q", cfg.Registry.BaseURL)
	}
	if cfg.Languages.Source != "ru" || cfg.Languages.Target != "en" {
		t.Fatalf("languages = %+v, want ru -> en", cfg.Languages)
	}
	if cfg.Prefs.Path == "" {
		t.Fatal("expected non-empty prefs path")
	}
}

// TestLoadFileMissingReturnsDefaults checks first-run behavior.
func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	got, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got.Model.Fallback != "gemma:7b" {
		t.Fatalf("fallback = %q, want gemma:7b", got.Model.Fallback)
	}
	if got.UI.CopiedInterval != 2*time.Second {
		t.Fatalf("copied interval = %s", got.UI.CopiedInterval)
	}
}

// TestLoadFileOverrides checks file values and normalization.
func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backend]
base_url = "http://127.0.0.1:9000/"
timeout = "5s"

[prefs]
driver = "JSON"
path = "/tmp/prefs.json"

[languages]
source = "de"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got.Backend.BaseURL != "http://127.0.0.1:9000" {
		t.Fatalf("base url = %q", got.Backend.BaseURL)
	}
	if got.Backend.Timeout != 5*time.Second {
		t.Fatalf("timeout = %s", got.Backend.Timeout)
	}
	if got.Prefs.Driver != PrefsDriverJSON {
		t.Fatalf("driver = %q, want json", got.Prefs.Driver)
	}
	if got.Languages.Source != "de" || got.Languages.Target != "en" {
		t.Fatalf("languages = %+v", got.Languages)
	}
}

// TestLoadFileEnvOverride checks CONTEXT_* variables win over defaults.
func TestLoadFileEnvOverride(t *testing.T) {
	t.Setenv("CONTEXT_MODEL_FALLBACK", "llama3:latest")
	got, err := LoadFile(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got.Model.Fallback != "llama3:latest" {
		t.Fatalf("fallback = %q", got.Model.Fallback)
	}
}

// TestPrefStores runs the same contract against both backends.
func TestPrefStores(t *testing.T) {
	dir := t.TempDir()
	sqliteStore, err := OpenSQLiteStore(filepath.Join(dir, "prefs.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	stores := map[string]PrefStore{
		"json":   NewJSONStore(filepath.Join(dir, "nested", "prefs.json")),
		"sqlite": sqliteStore,
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			if _, ok := store.Get(PrefDarkMode); ok {
				t.Fatal("expected absent key on fresh store")
			}
			if err := store.Set(PrefDarkMode, "true"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := store.Set(PrefSelectedModel, "llama3:8b"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := store.Set(PrefDarkMode, "false"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			if got, ok := store.Get(PrefDarkMode); !ok || got != "false" {
				t.Fatalf("darkMode = %q, %v; want false", got, ok)
			}
			if got, ok := store.Get(PrefSelectedModel); !ok || got != "llama3:8b" {
				t.Fatalf("selectedModel = %q, %v", got, ok)
			}
		})
	}
}

// TestJSONStoreSurvivesReopen checks durability across instances.
func TestJSONStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := NewJSONStore(path).Set(PrefSelectedModel, "gemma:2b"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, ok := NewJSONStore(path).Get(PrefSelectedModel); !ok || got != "gemma:2b" {
		t.Fatalf("reopened value = %q, %v", got, ok)
	}
}

// TestJSONStoreCorruptFileReadsAbsent checks read failures are not errors.
func TestJSONStoreCorruptFileReadsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, ok := store.Get(PrefDarkMode); ok {
		t.Fatal("expected absent value for corrupt store")
	}
	if err := store.Set(PrefDarkMode, "true"); err != nil {
		t.Fatalf("Set() on corrupt store error = %v", err)
	}
	if got, _ := store.Get(PrefDarkMode); got != "true" {
		t.Fatalf("darkMode = %q after rewrite", got)
	}
}
