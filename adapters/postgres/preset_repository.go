// Package postgres stores presets as JSON blobs keyed by name.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"excelops/domain/core"
	"excelops/domain/preset"
	"excelops/ports"
)

// PresetRepository implements ports.PresetStore on PostgreSQL
type PresetRepository struct {
	db *sqlx.DB
}

// Connect opens the database and ensures the presets table exists
func Connect(databaseURL string) (*PresetRepository, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	repo := &PresetRepository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewPresetRepository wraps an existing connection
func NewPresetRepository(db *sqlx.DB) *PresetRepository {
	return &PresetRepository{db: db}
}

var _ ports.PresetStore = (*PresetRepository)(nil)

func (r *PresetRepository) migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS presets (
			name       TEXT PRIMARY KEY,
			config     JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create presets table: %w", err)
	}
	return nil
}

// Save upserts a preset under its name
func (r *PresetRepository) Save(ctx context.Context, name string, p *preset.Preset) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preset %q: %w", name, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO presets (name, config, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET config = EXCLUDED.config, updated_at = NOW()
	`, name, data)
	if err != nil {
		return fmt.Errorf("failed to save preset %q: %w", name, err)
	}
	return nil
}

// Load retrieves a preset by name
func (r *PresetRepository) Load(ctx context.Context, name string) (*preset.Preset, error) {
	var data []byte
	err := r.db.GetContext(ctx, &data, `
		SELECT config FROM presets WHERE name = $1
	`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", core.ErrPresetNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preset %q: %w", name, err)
	}
	var p preset.Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode preset %q: %w", name, err)
	}
	return &p, nil
}

// List returns all preset names, sorted
func (r *PresetRepository) List(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names, `
		SELECT name FROM presets ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	return names, nil
}

// Delete removes a preset by name
func (r *PresetRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM presets WHERE name = $1
	`, name)
	if err != nil {
		return fmt.Errorf("failed to delete preset %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %q", core.ErrPresetNotFound, name)
	}
	return nil
}

// Close releases the underlying connection pool
func (r *PresetRepository) Close() error {
	return r.db.Close()
}
