package ports

import (
	"context"

	"excelops/domain/preset"
)

// PresetStore defines the interface for preset persistence
type PresetStore interface {
	Save(ctx context.Context, name string, p *preset.Preset) error
	Load(ctx context.Context, name string) (*preset.Preset, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}
