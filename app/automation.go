package app

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"excelops/domain/core"
	"excelops/domain/preset"
	"excelops/domain/table"
	"excelops/engine/columns"
	"excelops/engine/filter"
	"excelops/engine/sorts"
	"excelops/ports"
)

// Automation replays a saved preset against an input file for a list of
// identifiers, producing one output sheet per identifier.
type Automation struct {
	reader  ports.TabularReader
	presets ports.PresetStore
	writer  ports.TabularWriter
}

// NewAutomation wires the batch runner to its storage and I/O ports
func NewAutomation(reader ports.TabularReader, presets ports.PresetStore, writer ports.TabularWriter) *Automation {
	return &Automation{reader: reader, presets: presets, writer: writer}
}

// BatchJob describes one automation run
type BatchJob struct {
	Input      string   // input workbook or CSV path
	Output     string   // output workbook path
	PresetName string   // preset to replay; sheet[0]'s config is used
	UserColumn string   // identifier column in the dataset
	Users      []string // identifiers, one output sheet each
}

// Run loads the job's dataset and preset and writes one sheet per
// identifier: preset filters first, then an equality filter on the
// identifier column, then sorts and column projection. Identifiers whose
// slice comes out empty are omitted from the workbook.
func (a *Automation) Run(ctx context.Context, job BatchJob) error {
	dataset, err := a.reader.Read(job.Input)
	if err != nil {
		return fmt.Errorf("read %s: %w", job.Input, err)
	}
	p, err := a.presets.Load(ctx, job.PresetName)
	if err != nil {
		return fmt.Errorf("load preset %q: %w", job.PresetName, err)
	}
	if len(p.Sheets) == 0 {
		return fmt.Errorf("preset %q has no sheets", job.PresetName)
	}
	if !dataset.HasColumn(job.UserColumn) {
		return core.NewUnknownColumnError("input", job.UserColumn)
	}

	cfg := p.Sheets[0]
	columns.Reconcile(&cfg.Columns, dataset)

	var sheets []ports.NamedDataset
	for _, user := range job.Users {
		user = strings.TrimSpace(user)
		if user == "" {
			continue
		}
		slice := sliceForUser(dataset, cfg, job.UserColumn, user)
		if slice.IsEmpty() {
			log.Printf("[Automation] %s: no rows for %q, skipping", job.Input, user)
			continue
		}
		sheets = append(sheets, ports.NamedDataset{Name: user, Dataset: slice})
	}
	if len(sheets) == 0 {
		return fmt.Errorf("no identifiers matched any rows in %s", job.Input)
	}

	if err := a.writer.Write(job.Output, sheets); err != nil {
		return fmt.Errorf("write %s: %w", job.Output, err)
	}
	log.Printf("[Automation] %s: wrote %d sheets to %s", job.Input, len(sheets), job.Output)
	return nil
}

func sliceForUser(d *table.Dataset, cfg preset.SheetConfig, userCol, user string) *table.Dataset {
	out := filter.Apply(d, cfg.Filters.Filters)
	out = filter.Apply(out, []preset.FilterRow{{Col: userCol, Op: preset.OpEq, Val: user}})
	out = sorts.Apply(out, cfg.Sorts.Sorts)
	return columns.Apply(out, cfg.Columns)
}

// RunBatch runs jobs concurrently. Jobs touching the same input or output
// path are serialized with a per-path lock so workbook writes never race.
func (a *Automation) RunBatch(ctx context.Context, jobs []BatchJob) error {
	locks := newPathLocks()
	g, ctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			unlock := locks.lock(job.Input, job.Output)
			defer unlock()
			return a.Run(ctx, job)
		})
	}
	return g.Wait()
}

// pathLocks hands out one mutex per file path
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutexes for the given paths in sorted order to avoid
// two jobs deadlocking on each other's paths.
func (p *pathLocks) lock(paths ...string) func() {
	unique := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		if path != "" && !seen[path] {
			seen[path] = true
			unique = append(unique, path)
		}
	}
	sort.Strings(unique)

	held := make([]*sync.Mutex, 0, len(unique))
	for _, path := range unique {
		held = append(held, p.forPath(path))
	}
	for _, m := range held {
		m.Lock()
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (p *pathLocks) forPath(path string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.locks[path]
	if !ok {
		m = &sync.Mutex{}
		p.locks[path] = m
	}
	return m
}
