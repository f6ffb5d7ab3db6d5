package app

import (
	"excelops/domain/preset"
	"excelops/domain/table"
	"excelops/engine/columns"
	"excelops/engine/filter"
	"excelops/engine/pivot"
	"excelops/engine/sorts"
)

// Base runs the row-then-shape half of the pipeline: filters, sorts, then
// column projection. Engines tolerate empty inputs and empty outputs; an
// all-rows-filtered result is still a valid dataset.
func Base(d *table.Dataset, cfg *preset.SheetConfig) *table.Dataset {
	out := filter.Apply(d, cfg.Filters.Filters)
	out = sorts.Apply(out, cfg.Sorts.Sorts)
	out = columns.Apply(out, cfg.Columns)
	return out
}

// Derive produces what a sheet actually displays: the base view, reshaped
// by the pivot when one has been generated.
func Derive(d *table.Dataset, cfg *preset.SheetConfig) (*table.Dataset, error) {
	out := Base(d, cfg)
	if cfg.Pivot.Generated {
		return pivot.Build(out, cfg.Pivot)
	}
	return out, nil
}
