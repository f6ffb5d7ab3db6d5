// Package filter evaluates a multi-row boolean predicate over a dataset.
// Each valid row yields one mask; masks fold left-to-right with the row's
// AND/OR join. The fold is deliberately flat (no OR grouping) - presets in
// the wild rely on that, even though the sort engine groups by OR.
package filter

import (
	"strings"

	"excelops/domain/preset"
	"excelops/domain/table"
	"excelops/engine/numeric"
)

// Apply returns the subset of rows matching the filter, order preserved.
// Rows naming unknown columns or operators are skipped; a row that cannot
// be evaluated excludes everything it touches (fail-safe, never fail-open).
// No valid rows means the dataset is returned unchanged.
func Apply(d *table.Dataset, rows []preset.FilterRow) *table.Dataset {
	if d.IsEmpty() {
		return d
	}

	var (
		masks []mask
		joins []preset.JoinMode
	)
	for _, fr := range rows {
		if fr.Col == "" || !d.HasColumn(fr.Col) || !fr.Op.Valid() {
			continue
		}
		if fr.Op.ColumnComparison() && !d.HasColumn(fr.Cmp) {
			continue
		}
		masks = append(masks, rowMask(d, fr))
		joins = append(joins, fr.Join)
	}

	if len(masks) == 0 {
		return d
	}

	final := masks[0]
	for i := 1; i < len(masks); i++ {
		if joins[i].IsOr() {
			final = final.or(masks[i])
		} else {
			final = final.and(masks[i])
		}
	}

	var keep []int
	for i, ok := range final {
		if ok {
			keep = append(keep, i)
		}
	}
	return d.Select(keep)
}

type mask []bool

func (m mask) and(o mask) mask {
	out := make(mask, len(m))
	for i := range m {
		out[i] = m[i] && o[i]
	}
	return out
}

func (m mask) or(o mask) mask {
	out := make(mask, len(m))
	for i := range m {
		out[i] = m[i] || o[i]
	}
	return out
}

// rowMask builds the boolean mask for one filter row. Missing cells never
// match any operator.
func rowMask(d *table.Dataset, fr preset.FilterRow) mask {
	m := make(mask, d.NumRows())

	switch {
	case fr.Op.ColumnComparison():
		want := fr.Op == preset.OpColumnEquals
		for i, row := range d.Rows {
			a, b := row.Get(fr.Col), row.Get(fr.Cmp)
			if a.IsMissing() || b.IsMissing() {
				continue
			}
			m[i] = (a.String() == b.String()) == want
		}

	case fr.Op == preset.OpContains:
		needle := strings.ToLower(fr.Val)
		for i, row := range d.Rows {
			v := row.Get(fr.Col)
			if v.IsMissing() {
				continue
			}
			m[i] = strings.Contains(strings.ToLower(v.String()), needle)
		}

	case fr.Op == preset.OpIn:
		set := make(map[string]bool)
		for _, part := range strings.Split(fr.Val, ",") {
			if p := strings.TrimSpace(part); p != "" {
				set[p] = true
			}
		}
		for i, row := range d.Rows {
			v := row.Get(fr.Col)
			if v.IsMissing() {
				continue
			}
			m[i] = set[v.String()]
		}

	case preset.IsColumnAverage(fr.Val):
		series := numeric.Series(d, fr.Col)
		avg, ok := numeric.Mean(series)
		if !ok {
			return m // undefined mean: all-false
		}
		for i, p := range series {
			if p != nil {
				m[i] = compare(fr.Op, *p, avg)
			}
		}

	default:
		if lit, ok := numeric.Parse(fr.Val); ok {
			series := numeric.Series(d, fr.Col)
			for i, p := range series {
				if p != nil {
					m[i] = compare(fr.Op, *p, lit)
				}
			}
			return m
		}
		// Non-numeric literal: only string equality makes sense; other
		// relational operators leave the mask all-false.
		if fr.Op != preset.OpEq && fr.Op != preset.OpNe {
			return m
		}
		want := fr.Op == preset.OpEq
		for i, row := range d.Rows {
			v := row.Get(fr.Col)
			if v.IsMissing() {
				continue
			}
			m[i] = (v.String() == fr.Val) == want
		}
	}

	return m
}

func compare(op preset.Operator, a, b float64) bool {
	switch op {
	case preset.OpEq:
		return a == b
	case preset.OpNe:
		return a != b
	case preset.OpGt:
		return a > b
	case preset.OpLt:
		return a < b
	case preset.OpGe:
		return a >= b
	case preset.OpLe:
		return a <= b
	}
	return false
}
