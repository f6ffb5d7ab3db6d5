// Package sorts applies multi-level, grouped, stable ordering. An OR row
// starts a new group; groups apply last-to-first with stable sorts, which
// leaves the first group as the outermost precedence and each OR group as a
// lower-priority tie-breaker. This grouping is intentionally different from
// the filter engine's flat fold.
package sorts

import (
	"sort"
	"strings"

	"excelops/domain/preset"
	"excelops/domain/table"
)

type key struct {
	col string
	asc bool
}

// Apply returns the dataset reordered by the sort rows. Rows naming unknown
// columns are dropped from their group; empty groups are skipped; with no
// valid groups the dataset is returned unchanged. Nulls sort last regardless
// of direction.
func Apply(d *table.Dataset, rows []preset.SortRow) *table.Dataset {
	if d.IsEmpty() {
		return d
	}

	groups := buildGroups(d, rows)
	if len(groups) == 0 {
		return d
	}

	out := d.Clone()
	for gi := len(groups) - 1; gi >= 0; gi-- {
		stableSort(out, groups[gi])
	}
	return out
}

// buildGroups partitions rows into ordered key groups split on OR
func buildGroups(d *table.Dataset, rows []preset.SortRow) [][]key {
	var groups [][]key
	var current []key
	for i, r := range rows {
		if r.Col == "" || !d.HasColumn(r.Col) {
			continue
		}
		if i > 0 && r.Join.IsOr() {
			if len(current) > 0 {
				groups = append(groups, current)
			}
			current = nil
		}
		current = append(current, key{col: r.Col, asc: !r.Order.IsDescending()})
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func stableSort(d *table.Dataset, keys []key) {
	sort.SliceStable(d.Rows, func(i, j int) bool {
		a, b := d.Rows[i], d.Rows[j]
		for _, k := range keys {
			va, vb := a.Get(k.col), b.Get(k.col)
			switch {
			case va.IsMissing() && vb.IsMissing():
				continue
			case va.IsMissing():
				return false // nulls last, both directions
			case vb.IsMissing():
				return true
			}
			c := compareValues(va, vb)
			if c == 0 {
				continue
			}
			if k.asc {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

// compareValues orders two non-missing cells: numerically when both are
// numbers, lexically otherwise.
func compareValues(a, b table.Value) int {
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
