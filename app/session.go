package app

import (
	"fmt"
	"log"
	"sync"

	"excelops/domain/core"
	"excelops/domain/preset"
	"excelops/domain/table"
	"excelops/engine/columns"
	"excelops/engine/pivot"
	"excelops/engine/vlookup"
	"excelops/ports"
)

// Sheet is a point-in-time snapshot of one sheet: its identity plus a deep
// copy of the config. Mutable state never leaves the session's mutex.
type Sheet struct {
	ID     core.SheetID
	Config preset.SheetConfig
}

// sheetState is the live, mutex-guarded record behind a Sheet snapshot
type sheetState struct {
	id     core.SheetID
	config preset.SheetConfig
}

func (st *sheetState) snapshot() Sheet {
	return Sheet{ID: st.id, Config: cloneConfig(st.config)}
}

// Session owns the working dataset and its sheets. Every sheet reads the
// same dataset; configs differ per sheet. A mutex serializes actions so a
// mutation never interleaves with a recomputation.
type Session struct {
	mu      sync.Mutex
	dataset *table.Dataset
	sheets  []*sheetState
	writer  ports.TabularWriter
}

// NewSession creates a session with a single default sheet and no dataset
func NewSession(writer ports.TabularWriter) *Session {
	s := &Session{writer: writer}
	s.sheets = append(s.sheets, newSheet("Sheet1"))
	return s
}

func newSheet(name string) *sheetState {
	return &sheetState{
		id:     core.SheetID(core.NewID()),
		config: preset.SheetConfig{Name: name},
	}
}

// LoadDataset replaces the working dataset wholesale and reconciles every
// sheet's column config against the new columns. Filters, sorts and pivots
// are kept as-is; rows referencing columns the new dataset lacks are
// skipped at apply time.
func (s *Session) LoadDataset(d *table.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceDataset(d)
	log.Printf("[Session] dataset loaded: %d columns, %d rows", len(d.Columns), d.NumRows())
}

// replaceDataset swaps the dataset and reconciles all sheets. Caller holds mu.
func (s *Session) replaceDataset(d *table.Dataset) {
	s.dataset = d
	for _, sh := range s.sheets {
		columns.Reconcile(&sh.config.Columns, d)
	}
}

// Dataset returns the raw working dataset, unfiltered
func (s *Session) Dataset() (*table.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return nil, core.ErrNoDataset
	}
	return s.dataset, nil
}

// Sheets returns point-in-time snapshots of the ordered sheet list
func (s *Session) Sheets() []Sheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sheet, 0, len(s.sheets))
	for _, sh := range s.sheets {
		out = append(out, sh.snapshot())
	}
	return out
}

// AddSheet appends a new sheet with a fresh config reconciled against the
// current dataset.
func (s *Session) AddSheet(name string) Sheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh := newSheet(s.uniqueName(name, ""))
	if s.dataset != nil {
		columns.Reconcile(&sh.config.Columns, s.dataset)
	}
	s.sheets = append(s.sheets, sh)
	return sh.snapshot()
}

// DuplicateSheet copies a sheet's whole config under a new identity
func (s *Session) DuplicateSheet(id core.SheetID) (Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, err := s.find(id)
	if err != nil {
		return Sheet{}, err
	}
	dup := &sheetState{
		id:     core.SheetID(core.NewID()),
		config: cloneConfig(src.config),
	}
	dup.config.Name = s.uniqueName(src.config.Name+" copy", "")
	s.sheets = append(s.sheets, dup)
	return dup.snapshot(), nil
}

// RenameSheet changes a sheet's display name
func (s *Session) RenameSheet(id core.SheetID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, err := s.find(id)
	if err != nil {
		return err
	}
	sh.config.Name = s.uniqueName(name, id)
	return nil
}

// CloseSheet removes a sheet. The last sheet cannot be closed.
func (s *Session) CloseSheet(id core.SheetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sheets) == 1 {
		return fmt.Errorf("cannot close the last sheet")
	}
	for i, sh := range s.sheets {
		if sh.id == id {
			s.sheets = append(s.sheets[:i], s.sheets[i+1:]...)
			return nil
		}
	}
	return core.ErrSheetNotFound
}

// SetFilters replaces a sheet's filter rows
func (s *Session) SetFilters(id core.SheetID, cfg preset.FilterConfig) error {
	return s.updateConfig(id, func(c *preset.SheetConfig) { c.Filters = cfg })
}

// SetSorts replaces a sheet's sort rows
func (s *Session) SetSorts(id core.SheetID, cfg preset.SortConfig) error {
	return s.updateConfig(id, func(c *preset.SheetConfig) { c.Sorts = cfg })
}

// SetColumns replaces a sheet's column curation and reconciles it so the
// stored config never references columns the dataset lacks.
func (s *Session) SetColumns(id core.SheetID, cfg preset.ColumnConfig) error {
	return s.updateConfig(id, func(c *preset.SheetConfig) {
		c.Columns = cfg
		if s.dataset != nil {
			columns.Reconcile(&c.Columns, s.dataset)
		}
	})
}

func (s *Session) updateConfig(id core.SheetID, apply func(*preset.SheetConfig)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, err := s.find(id)
	if err != nil {
		return err
	}
	apply(&sh.config)
	return nil
}

// BaseView runs filters, sorts and column projection for one sheet
func (s *Session) BaseView(id core.SheetID) (*table.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseView(id)
}

func (s *Session) baseView(id core.SheetID) (*table.Dataset, error) {
	if s.dataset == nil {
		return nil, core.ErrNoDataset
	}
	sh, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return Base(s.dataset, &sh.config), nil
}

// DerivedView is what the sheet displays: the base view, pivoted when a
// pivot has been generated.
func (s *Session) DerivedView(id core.SheetID) (*table.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return nil, core.ErrNoDataset
	}
	sh, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return Derive(s.dataset, &sh.config)
}

// PreviewPivot builds a pivot from the sheet's base view without marking
// the spec as generated.
func (s *Session) PreviewPivot(id core.SheetID, spec preset.PivotSpec) (*table.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base, err := s.baseView(id)
	if err != nil {
		return nil, err
	}
	return pivot.Build(base, spec)
}

// GeneratePivot stores the spec and marks it generated so the sheet's
// derived view and export become the pivot table. The spec must build
// cleanly against the current base view first.
func (s *Session) GeneratePivot(id core.SheetID, spec preset.PivotSpec) (*table.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base, err := s.baseView(id)
	if err != nil {
		return nil, err
	}
	out, err := pivot.Build(base, spec)
	if err != nil {
		return nil, err
	}
	sh, _ := s.find(id)
	spec.Generated = true
	sh.config.Pivot = spec
	return out, nil
}

// ClearPivot reverts the sheet to its base view
func (s *Session) ClearPivot(id core.SheetID) error {
	return s.updateConfig(id, func(c *preset.SheetConfig) {
		c.Pivot = preset.PivotSpec{}
	})
}

// ApplyVlookup joins lookup into the focused sheet's base view, then the
// merged result becomes the working dataset for every sheet. On failure
// the dataset and all configs are untouched.
func (s *Session) ApplyVlookup(id core.SheetID, lookup *table.Dataset, spec preset.JoinSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	base, err := s.baseView(id)
	if err != nil {
		return err
	}
	merged, err := vlookup.Join(base, lookup, spec)
	if err != nil {
		return err
	}
	sh, _ := s.find(id)
	sh.config.Vlookup = spec
	s.replaceDataset(merged)
	log.Printf("[Session] vlookup merged: %d columns, %d rows", len(merged.Columns), merged.NumRows())
	return nil
}

// DeleteRows removes rows from the working dataset by index in dataset
// row order, then reconciles every sheet.
func (s *Session) DeleteRows(id core.SheetID, indices []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return core.ErrNoDataset
	}
	if _, err := s.find(id); err != nil {
		return err
	}
	s.replaceDataset(s.dataset.Drop(indices))
	return nil
}

// ApplyPreset replaces every sheet with the preset's sheet configs,
// reconciled against the current dataset.
func (s *Session) ApplyPreset(p *preset.Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(p.Sheets) == 0 {
		return fmt.Errorf("preset has no sheets")
	}
	sheets := make([]*sheetState, 0, len(p.Sheets))
	for _, cfg := range p.Sheets {
		sh := newSheet(cfg.Name)
		sh.config = cloneConfig(cfg)
		if s.dataset != nil {
			columns.Reconcile(&sh.config.Columns, s.dataset)
		}
		sheets = append(sheets, sh)
	}
	s.sheets = sheets
	return nil
}

// Snapshot captures every sheet's config as a persistable preset
func (s *Session) Snapshot() *preset.Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &preset.Preset{Sheets: make([]preset.SheetConfig, 0, len(s.sheets))}
	for _, sh := range s.sheets {
		p.Sheets = append(p.Sheets, cloneConfig(sh.config))
	}
	return p
}

// ExportSheets writes every sheet's derived view to one workbook
func (s *Session) ExportSheets(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return core.ErrNoDataset
	}
	out := make([]ports.NamedDataset, 0, len(s.sheets))
	for _, sh := range s.sheets {
		d, err := Derive(s.dataset, &sh.config)
		if err != nil {
			return fmt.Errorf("sheet %q: %w", sh.config.Name, err)
		}
		out = append(out, ports.NamedDataset{Name: sh.config.Name, Dataset: d})
	}
	if err := s.writer.Write(path, out); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	log.Printf("[Session] exported %d sheets to %s", len(out), path)
	return nil
}

// find locates a sheet by ID. Caller holds mu.
func (s *Session) find(id core.SheetID) (*sheetState, error) {
	for _, sh := range s.sheets {
		if sh.id == id {
			return sh, nil
		}
	}
	return nil, core.ErrSheetNotFound
}

// uniqueName suffixes (2), (3), ... until the name collides with no other
// sheet. The sheet identified by exclude keeps its own name on rename.
// Caller holds mu.
func (s *Session) uniqueName(name string, exclude core.SheetID) string {
	if name == "" {
		name = "Sheet"
	}
	taken := make(map[string]bool, len(s.sheets))
	for _, sh := range s.sheets {
		if sh.id != exclude {
			taken[sh.config.Name] = true
		}
	}
	if !taken[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)", name, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

func cloneConfig(c preset.SheetConfig) preset.SheetConfig {
	out := c
	out.Filters.Filters = append([]preset.FilterRow(nil), c.Filters.Filters...)
	out.Sorts.Sorts = append([]preset.SortRow(nil), c.Sorts.Sorts...)
	out.Columns.Order = append([]string(nil), c.Columns.Order...)
	if c.Columns.Visible != nil {
		out.Columns.Visible = make(map[string]bool, len(c.Columns.Visible))
		for k, v := range c.Columns.Visible {
			out.Columns.Visible[k] = v
		}
	}
	out.Pivot.Rows = append([]string(nil), c.Pivot.Rows...)
	out.Pivot.Columns = append([]string(nil), c.Pivot.Columns...)
	out.Pivot.Values = append([]string(nil), c.Pivot.Values...)
	out.Vlookup.MainKeys = append([]string(nil), c.Vlookup.MainKeys...)
	out.Vlookup.LookupKeys = append([]string(nil), c.Vlookup.LookupKeys...)
	out.Vlookup.Values = append([]string(nil), c.Vlookup.Values...)
	return out
}
