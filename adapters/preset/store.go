// Package preset persists presets as JSON files, one file per preset name,
// in a configured directory.
package preset

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"excelops/domain/core"
	domainpreset "excelops/domain/preset"
	"excelops/ports"
)

// FileStore keeps each preset as <dir>/<name>.json
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns the store
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create preset directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

var _ ports.PresetStore = (*FileStore)(nil)

// Save writes the preset, replacing any previous version of the same name
func (s *FileStore) Save(_ context.Context, name string, p *domainpreset.Preset) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("preset name is empty")
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preset %q: %w", name, err)
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write preset %q: %w", name, err)
	}
	log.Printf("[PresetStore] saved %q (%d sheets)", name, len(p.Sheets))
	return nil
}

// Load reads a preset by name. Unknown JSON fields are ignored so presets
// written by newer versions still load.
func (s *FileStore) Load(_ context.Context, name string) (*domainpreset.Preset, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %q", core.ErrPresetNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preset %q: %w", name, err)
	}
	var p domainpreset.Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode preset %q: %w", name, err)
	}
	return &p, nil
}

// List returns saved preset names, sorted
func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a preset by name
func (s *FileStore) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %q", core.ErrPresetNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to delete preset %q: %w", name, err)
	}
	return nil
}

func (s *FileStore) path(name string) string {
	// Flatten path separators so a name can never escape the directory
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(name))
	return filepath.Join(s.dir, safe+".json")
}
