// Package pivot builds a row/column/value cross-tabulation with selectable
// aggregation, flattening hierarchical headers into single strings.
package pivot

import (
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"excelops/domain/core"
	"excelops/domain/preset"
	"excelops/domain/table"
	"excelops/engine/numeric"
)

// HeaderSeparator joins hierarchical header segments into one flat name
const HeaderSeparator = " | "

// Build cross-tabulates the dataset. Row/column/value references absent
// from the dataset are ignored; with no usable row key it fails with
// ErrEmptyPivotSelection. Missing (row, column) combinations fill with 0.
// With no value columns the pivot counts occurrences into a "Count" column.
func Build(d *table.Dataset, spec preset.PivotSpec) (*table.Dataset, error) {
	rowKeys := presentOnly(d, spec.Rows)
	if len(rowKeys) == 0 {
		return nil, core.ErrEmptyPivotSelection
	}
	colKeys := presentOnly(d, spec.Columns)
	valueCols := presentOnly(d, spec.Values)

	agg := spec.Agg
	if !agg.Valid() {
		agg = preset.AggSum
	}

	groups := groupRows(d, rowKeys, colKeys)

	combos := columnCombos(groups)
	headers := buildHeaders(valueCols, colKeys, combos)

	out := table.New(append(append([]string{}, rowKeys...), headerNames(headers)...)...)
	for _, g := range sortedGroups(groups) {
		row := make(table.Row, len(out.Columns))
		for i, col := range rowKeys {
			row[col] = g.key[i]
		}
		for _, h := range headers {
			cells := g.cells[h.combo]
			row[h.name] = table.NewNumber(aggregate(agg, h.valueCol, cells))
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func presentOnly(d *table.Dataset, cols []string) []string {
	var out []string
	for _, c := range cols {
		if d.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// group is one output row: a row-key tuple plus the source rows bucketed by
// column-key combination.
type group struct {
	key     []table.Value
	keyStr  string
	ordinal int
	cells   map[string][]table.Row // column-combo -> source rows
}

func groupRows(d *table.Dataset, rowKeys, colKeys []string) map[string]*group {
	groups := make(map[string]*group)
	for _, row := range d.Rows {
		key := make([]table.Value, len(rowKeys))
		parts := make([]string, len(rowKeys))
		for i, c := range rowKeys {
			key[i] = row.Get(c)
			parts[i] = key[i].String()
		}
		ks := strings.Join(parts, "\x1f")

		g, ok := groups[ks]
		if !ok {
			g = &group{key: key, keyStr: ks, ordinal: len(groups), cells: make(map[string][]table.Row)}
			groups[ks] = g
		}
		combo := comboKey(row, colKeys)
		g.cells[combo] = append(g.cells[combo], row)
	}
	return groups
}

func comboKey(row table.Row, colKeys []string) string {
	if len(colKeys) == 0 {
		return ""
	}
	parts := make([]string, len(colKeys))
	for i, c := range colKeys {
		parts[i] = row.Get(c).String()
	}
	return strings.Join(parts, "\x1f")
}

// columnCombos collects the distinct column-key combinations, sorted
func columnCombos(groups map[string]*group) []string {
	seen := make(map[string]bool)
	for _, g := range groups {
		for combo := range g.cells {
			seen[combo] = true
		}
	}
	combos := make([]string, 0, len(seen))
	for c := range seen {
		combos = append(combos, c)
	}
	sort.Strings(combos)
	return combos
}

// header is one generated output column
type header struct {
	name     string
	combo    string
	valueCol string // empty means occurrence count
}

// buildHeaders flattens the (value x column-combo) hierarchy. Segments are
// joined value-first, so "Amt | widget" reads aggregation-then-slice.
func buildHeaders(valueCols, colKeys []string, combos []string) []header {
	var out []header
	if len(valueCols) == 0 {
		if len(colKeys) == 0 {
			return []header{{name: "Count", combo: ""}}
		}
		for _, combo := range combos {
			out = append(out, header{name: comboLabel(combo), combo: combo})
		}
		return out
	}

	if len(colKeys) == 0 {
		for _, v := range valueCols {
			out = append(out, header{name: v, combo: "", valueCol: v})
		}
		return out
	}

	for _, v := range valueCols {
		for _, combo := range combos {
			segments := append([]string{v}, comboSegments(combo)...)
			out = append(out, header{name: flatten(segments), combo: combo, valueCol: v})
		}
	}
	return out
}

func comboSegments(combo string) []string {
	return strings.Split(combo, "\x1f")
}

func comboLabel(combo string) string {
	return flatten(comboSegments(combo))
}

func flatten(segments []string) string {
	var kept []string
	for _, s := range segments {
		if s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return "Count"
	}
	return strings.Join(kept, HeaderSeparator)
}

func headerNames(headers []header) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = h.name
	}
	return out
}

// sortedGroups orders output rows ascending by row-key tuple
func sortedGroups(groups map[string]*group) []*group {
	out := make([]*group, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		for k := range a.key {
			c := compareKey(a.key[k], b.key[k])
			if c != 0 {
				return c < 0
			}
		}
		return a.ordinal < b.ordinal
	})
	return out
}

func compareKey(a, b table.Value) int {
	if a.Type == table.ValueTypeNumeric && b.Type == table.ValueTypeNumeric {
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
		return 0
	}
	return strings.Compare(a.String(), b.String())
}

// aggregate collapses the bucket for one output cell. Empty buckets fill 0.
func aggregate(agg preset.Aggregation, valueCol string, rows []table.Row) float64 {
	if valueCol == "" {
		return float64(len(rows)) // occurrence count
	}

	var vals []float64
	for _, row := range rows {
		if n, ok := numeric.FromValue(row.Get(valueCol)); ok {
			vals = append(vals, n)
		}
	}
	if len(vals) == 0 {
		return 0
	}

	switch agg {
	case preset.AggSum:
		return floats.Sum(vals)
	case preset.AggMean:
		m, err := stats.Mean(vals)
		if err != nil {
			return 0
		}
		return m
	case preset.AggCount:
		return float64(len(vals))
	case preset.AggMin:
		return floats.Min(vals)
	case preset.AggMax:
		return floats.Max(vals)
	}
	return 0
}
