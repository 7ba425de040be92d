package bootstrap

import (
	"fmt"

	"github.com/KazKozDev/ConText/internal/domain"
)

// ModelOption is one entry of the model picker.
type ModelOption struct {
	Name      string `json:"name"`
	SizeLabel string `json:"sizeLabel"`
	Digest    string `json:"digest"`
	Selected  bool   `json:"selected"`
}

// GetModels returns the loaded model catalog with the current selection marked.
// Before the first successful refresh the configured fallback is listed alone.
func (a *App) GetModels() []ModelOption {
	return modelOptions(a.Session.Snapshot())
}

// GetLanguages returns the supported language catalog.
func (a *App) GetLanguages() []domain.Language {
	return domain.Languages()
}

// SetModel selects a model from the loaded catalog.
func (a *App) SetModel(name string) error {
	return a.Session.SetModel(name)
}

// RefreshModels reloads the catalog from the model registry.
func (a *App) RefreshModels() error {
	return a.Session.RefreshModels()
}

func modelOptions(snap domain.Snapshot) []ModelOption {
	if !snap.ModelsLoaded {
		if snap.SelectedModel == "" {
			return []ModelOption{}
		}
		return []ModelOption{{Name: snap.SelectedModel, Selected: true}}
	}

	options := make([]ModelOption, 0, len(snap.Models))
	for _, model := range snap.Models {
		options = append(options, ModelOption{
			Name:      model.Name,
			SizeLabel: formatModelSize(model.SizeBytes),
			Digest:    shortDigest(model.ContentHash),
			Selected:  model.Name == snap.SelectedModel,
		})
	}
	return options
}

// formatModelSize renders a byte count the way model registries display it.
func formatModelSize(size int64) string {
	const unit = 1000
	if size <= 0 {
		return ""
	}
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit && exp < 3; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGT"[exp])
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
