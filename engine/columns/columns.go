// Package columns reorders and hides columns and deduplicates rows by a key
// column. The config's Order list is the authoritative column universe.
package columns

import (
	"excelops/domain/preset"
	"excelops/domain/table"
)

// Apply runs, in fixed order: dedupe (keep first occurrence), then
// projection onto the columns of cfg.Order that are visible and present.
// Applying twice with the same config yields the same dataset as once.
func Apply(d *table.Dataset, cfg preset.ColumnConfig) *table.Dataset {
	if d.IsEmpty() {
		return d
	}

	out := d
	if cfg.Dedupe.Enabled && cfg.Dedupe.Column != "" && d.HasColumn(cfg.Dedupe.Column) {
		out = dedupe(out, cfg.Dedupe.Column)
	}

	var visible []string
	for _, c := range cfg.Order {
		if cfg.IsVisible(c) && out.HasColumn(c) {
			visible = append(visible, c)
		}
	}
	if len(visible) == 0 {
		return out
	}
	return out.Project(visible)
}

func dedupe(d *table.Dataset, col string) *table.Dataset {
	seen := make(map[string]bool, d.NumRows())
	var keep []int
	for i, row := range d.Rows {
		k := row.Get(col).String()
		if seen[k] {
			continue
		}
		seen[k] = true
		keep = append(keep, i)
	}
	return d.Select(keep)
}

// Reconcile self-heals the config against the dataset's current column set:
// new columns are appended to Order as visible-by-default, stale Order and
// Visible entries are removed, and a stale dedupe column is cleared. Schema
// drift never errors.
func Reconcile(cfg *preset.ColumnConfig, d *table.Dataset) {
	if d == nil {
		return
	}
	present := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		present[c] = true
	}

	inOrder := make(map[string]bool, len(cfg.Order))
	var order []string
	for _, c := range cfg.Order {
		if present[c] {
			order = append(order, c)
			inOrder[c] = true
		}
	}
	if cfg.Visible == nil {
		cfg.Visible = make(map[string]bool)
	}
	for _, c := range d.Columns {
		if !inOrder[c] {
			order = append(order, c)
			cfg.Visible[c] = true
		}
	}
	cfg.Order = order

	for c := range cfg.Visible {
		if !present[c] {
			delete(cfg.Visible, c)
		}
	}
	if cfg.Dedupe.Column != "" && !present[cfg.Dedupe.Column] {
		cfg.Dedupe.Column = ""
	}
}
