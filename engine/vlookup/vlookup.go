// Package vlookup left-joins an external lookup table into a main dataset
// by one or more keys, reconciling ambiguous column naming, renaming added
// columns on collision and filling misses with a default.
package vlookup

import (
	"fmt"
	"strings"

	"excelops/domain/core"
	"excelops/domain/preset"
	"excelops/domain/table"
)

// Join merges lookup into main as a left outer join. Every main row is
// preserved; the first matching lookup row (in lookup source order) wins
// when keys repeat. Fails with a core sentinel error on precondition
// violations and leaves both inputs untouched.
func Join(main, lookup *table.Dataset, spec preset.JoinSpec) (*table.Dataset, error) {
	if main.IsEmpty() {
		return nil, fmt.Errorf("%w: main", core.ErrEmptySource)
	}
	if lookup.IsEmpty() {
		return nil, fmt.Errorf("%w: lookup", core.ErrEmptySource)
	}
	if dups := main.DuplicateColumns(); len(dups) > 0 {
		return nil, core.NewDuplicateColumnsError("main", dups)
	}
	if dups := lookup.DuplicateColumns(); len(dups) > 0 {
		return nil, core.NewDuplicateColumnsError("lookup", dups)
	}

	mainKeys, err := resolveAll(main, spec.MainKeys, "main")
	if err != nil {
		return nil, err
	}
	if len(mainKeys) == 0 {
		return nil, core.NewUnknownColumnError("main", "(no key columns)")
	}

	lookupKeyNames := spec.LookupKeys
	if len(lookupKeyNames) == 0 {
		// Common case: both tables share key column names
		lookupKeyNames = spec.MainKeys
	}
	lookupKeys, err := resolveAll(lookup, lookupKeyNames, "lookup")
	if err != nil {
		return nil, err
	}
	if len(mainKeys) != len(lookupKeys) {
		return nil, fmt.Errorf("%w: %d main vs %d lookup", core.ErrKeyArityMismatch, len(mainKeys), len(lookupKeys))
	}

	valueCols, err := resolveAll(lookup, spec.Values, "lookup")
	if err != nil {
		return nil, err
	}
	// Keys are already present via the join; don't bring them over again
	valueCols = exclude(valueCols, lookupKeys)

	added := renameForMerge(main.Columns, valueCols, spec.Prefix)

	index := buildIndex(lookup, lookupKeys)

	out := &table.Dataset{
		Columns: append(append([]string(nil), main.Columns...), names(added)...),
		Rows:    make([]table.Row, 0, main.NumRows()),
	}
	fill := table.Missing()
	if spec.DefaultFill != "" {
		fill = table.NewString(spec.DefaultFill)
	}

	for _, row := range main.Rows {
		merged := make(table.Row, len(out.Columns))
		for k, v := range row {
			merged[k] = v
		}

		match, found := index[keyOf(row, mainKeys)]
		for _, a := range added {
			switch {
			case found && !match.Get(a.source).IsMissing():
				merged[a.name] = match.Get(a.source)
			case fill.IsMissing():
				// leave null
			default:
				merged[a.name] = fill
			}
		}
		out.Rows = append(out.Rows, merged)
	}
	return out, nil
}

// resolveAll matches requested names against actual columns
// case-insensitively and whitespace-trimmed, returning canonical casing.
func resolveAll(d *table.Dataset, requested []string, side string) ([]string, error) {
	out := make([]string, 0, len(requested))
	for _, name := range requested {
		canonical, ok := resolve(d.Columns, name)
		if !ok {
			return nil, core.NewUnknownColumnError(side, name)
		}
		out = append(out, canonical)
	}
	return out, nil
}

func resolve(columns []string, name string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, c := range columns {
		if strings.ToLower(strings.TrimSpace(c)) == want {
			return c, true
		}
	}
	return "", false
}

func exclude(cols, keys []string) []string {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	var out []string
	for _, c := range cols {
		if !drop[c] {
			out = append(out, c)
		}
	}
	return out
}

// addedColumn maps a lookup source column to its name in the merged output
type addedColumn struct {
	source string
	name   string
}

// renameForMerge prefixes added columns and suffixes _lk1, _lk2, ... until
// the name collides with neither the main dataset nor a previous addition.
func renameForMerge(mainCols, valueCols []string, prefix string) []addedColumn {
	taken := make(map[string]bool, len(mainCols))
	for _, c := range mainCols {
		taken[c] = true
	}

	out := make([]addedColumn, 0, len(valueCols))
	for _, v := range valueCols {
		name := prefix + v
		if taken[name] {
			base := name
			for i := 1; ; i++ {
				name = fmt.Sprintf("%s_lk%d", base, i)
				if !taken[name] {
					break
				}
			}
		}
		taken[name] = true
		out = append(out, addedColumn{source: v, name: name})
	}
	return out
}

func names(added []addedColumn) []string {
	out := make([]string, len(added))
	for i, a := range added {
		out[i] = a.name
	}
	return out
}

// buildIndex keeps the first lookup row per key combination, in source
// order. First match winning is observable behavior; keep it fixed.
func buildIndex(lookup *table.Dataset, keys []string) map[string]table.Row {
	index := make(map[string]table.Row, lookup.NumRows())
	for _, row := range lookup.Rows {
		k := keyOf(row, keys)
		if _, exists := index[k]; !exists {
			index[k] = row
		}
	}
	return index
}

func keyOf(row table.Row, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = row.Get(k).String()
	}
	return strings.Join(parts, "\x1f")
}
