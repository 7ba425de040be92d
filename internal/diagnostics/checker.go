package diagnostics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KazKozDev/ConText/internal/config"
	"github.com/KazKozDev/ConText/internal/domain"
	"github.com/KazKozDev/ConText/internal/gateway"
)

// Probe is the backend surface the checker exercises.
type Probe interface {
	Health(ctx context.Context) (string, error)
	ListModels(ctx context.Context) ([]domain.Model, error)
	BackendURL() string
	RegistryURL() string
}

// Checker validates that the backend services and local paths are usable.
type Checker struct {
	probe      Probe
	now        func() time.Time
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker(probe Probe) *Checker {
	return &Checker{
		probe:      probe,
		now:        time.Now,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all checks and returns a combined report.
func (c *Checker) Run(ctx context.Context, settings config.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkBackend(ctx),
		c.checkRegistry(ctx),
		c.checkWritableDir("log_dir", "Log directory", settings.Log.Dir),
	}
	if settings.Prefs.Path != "" {
		items = append(items, c.checkWritableDir("prefs_dir", "Preferences directory", filepath.Dir(settings.Prefs.Path)))
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: c.now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkBackend verifies the translation service answers its health probe.
func (c *Checker) checkBackend(ctx context.Context) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:       "backend",
		Name:     "Translation service",
		Endpoint: c.probe.BackendURL(),
	}

	started := c.now()
	status, err := c.probe.Health(ctx)
	item.LatencyMS = c.now().Sub(started).Milliseconds()
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = gateway.Message(err)
		item.Hint = "Start the backend service and check backend.base_url in the config file."
		return item
	}

	status = strings.TrimSpace(status)
	if status != "healthy" && status != "ok" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Service reported status %q", status)
		item.Hint = "Check the backend logs for startup errors."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Service is %s", status)
	return item
}

// checkRegistry verifies the model registry is reachable and lists models.
func (c *Checker) checkRegistry(ctx context.Context) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:       "registry",
		Name:     "Model registry",
		Endpoint: c.probe.RegistryURL(),
	}

	started := c.now()
	models, err := c.probe.ListModels(ctx)
	item.LatencyMS = c.now().Sub(started).Milliseconds()
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = gateway.Message(err)
		item.Hint = "Start the model registry and check registry.base_url in the config file."
		return item
	}

	if len(models) == 0 {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Registry is reachable but has no models."
		item.Hint = "Pull at least one model, for example the configured fallback model."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("%d models available", len(models))
	return item
}

// checkWritableDir validates directory existence and write access.
func (c *Checker) checkWritableDir(id, name, dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:       id,
		Name:     name,
		Endpoint: dir,
	}

	if strings.TrimSpace(dir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("%s is empty.", name)
		item.Hint = "Set a writable location in the config file."
		return item
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create directory: %s", dir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Directory is not writable: %s", dir)
		item.Hint = "Adjust filesystem permissions for this directory."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}
